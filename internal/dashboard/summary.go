package dashboard

import (
	"time"

	"github.com/2beens/fitportal/internal/portal"
)

// Summary is the home screen of a user.
type Summary struct {
	Name           string           `json:"name"`
	Plan           portal.Plan      `json:"plan"`
	MemberSince    string           `json:"memberSince"`
	CheckinsLast30 int              `json:"checkinsLast30"`
	CheckedInToday bool             `json:"checkedInToday"`
	WorkoutCount   int              `json:"workoutCount"`
	LatestWeight   *float64         `json:"latestWeight,omitempty"`
	TodaysWorkout  *portal.Workout  `json:"todaysWorkout,omitempty"`
	NextEvent      *portal.Event    `json:"nextEvent,omitempty"`
	RecentCheckins []portal.Checkin `json:"recentCheckins"`
	UpcomingEvents []portal.Event   `json:"upcomingEvents"`
	WeightSeries   Series           `json:"weightSeries"`
}

func Build(user *portal.User, now time.Time) Summary {
	summary := Summary{
		Name:           user.Name,
		Plan:           user.Plan,
		MemberSince:    user.MemberSince,
		CheckinsLast30: RecentCheckinCount(user, DefaultCheckinWindowDays, now),
		CheckedInToday: CheckedInOn(user, now),
		WorkoutCount:   len(user.Workouts),
		RecentCheckins: RecentCheckins(user, RecentCheckinsLimit),
		UpcomingEvents: UpcomingEvents(user, now, UpcomingEventsLimit),
		WeightSeries:   ReduceSeries(user.Measurements, DefaultMaxPoints),
	}
	if m, ok := LatestMeasurement(user); ok {
		weight := m.Weight
		summary.LatestWeight = &weight
	}
	if w, ok := TodaysWorkout(user, now); ok {
		summary.TodaysWorkout = &w
	}
	if len(summary.UpcomingEvents) > 0 {
		next := summary.UpcomingEvents[0]
		summary.NextEvent = &next
	}
	return summary
}
