package dashboard

import (
	"sort"
	"strings"
	"time"

	"github.com/2beens/fitportal/internal/portal"
)

const (
	DefaultCheckinWindowDays = 30
	RecentCheckinsLimit      = 5
	UpcomingEventsLimit      = 4

	momentLayout = portal.DateLayout + " " + portal.TimeLayout
)

// RecentCheckinCount counts check-ins dated within the last windowDays days,
// today included. A non-positive window uses DefaultCheckinWindowDays.
func RecentCheckinCount(user *portal.User, windowDays int, now time.Time) int {
	if windowDays <= 0 {
		windowDays = DefaultCheckinWindowDays
	}
	today := startOfDay(now)
	from := today.AddDate(0, 0, -windowDays)

	count := 0
	for _, c := range user.Checkins {
		day, err := time.ParseInLocation(portal.DateLayout, c.Date, now.Location())
		if err != nil {
			continue
		}
		if !day.Before(from) && !day.After(today) {
			count++
		}
	}
	return count
}

// CheckedInOn reports whether the user has a check-in on the day of now.
func CheckedInOn(user *portal.User, now time.Time) bool {
	today := now.Format(portal.DateLayout)
	for _, c := range user.Checkins {
		if c.Date == today {
			return true
		}
	}
	return false
}

// RecentCheckins returns up to limit check-ins, newest first.
func RecentCheckins(user *portal.User, limit int) []portal.Checkin {
	checkins := append([]portal.Checkin(nil), user.Checkins...)
	sort.SliceStable(checkins, func(i, j int) bool {
		return checkins[i].Date > checkins[j].Date
	})
	if limit > 0 && len(checkins) > limit {
		checkins = checkins[:limit]
	}
	return checkins
}

// LatestMeasurement returns the measurement with the greatest date. Among
// entries sharing that date the one stored last wins.
func LatestMeasurement(user *portal.User) (portal.Measurement, bool) {
	latest := -1
	for i, m := range user.Measurements {
		if latest < 0 || m.Date >= user.Measurements[latest].Date {
			latest = i
		}
	}
	if latest < 0 {
		return portal.Measurement{}, false
	}
	return user.Measurements[latest], true
}

// MeasurementHistory returns all measurements, newest first.
func MeasurementHistory(user *portal.User) []portal.Measurement {
	history := append([]portal.Measurement(nil), user.Measurements...)
	// reverse first so equal dates keep "stored last comes first"
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date > history[j].Date
	})
	return history
}

// UpcomingEvents returns up to limit events at or after now, earliest first.
// An event without a time stays upcoming for its whole day.
func UpcomingEvents(user *portal.User, now time.Time, limit int) []portal.Event {
	nowMoment := now.Format(momentLayout)
	today := now.Format(portal.DateLayout)

	var upcoming []portal.Event
	for _, e := range user.Events {
		if e.Time == "" {
			if e.Date >= today {
				upcoming = append(upcoming, e)
			}
			continue
		}
		if e.Date+" "+e.Time >= nowMoment {
			upcoming = append(upcoming, e)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].SortKey() < upcoming[j].SortKey()
	})
	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming
}

// NextUpcomingEvent returns the earliest event at or after now.
func NextUpcomingEvent(user *portal.User, now time.Time) (portal.Event, bool) {
	upcoming := UpcomingEvents(user, now, 1)
	if len(upcoming) == 0 {
		return portal.Event{}, false
	}
	return upcoming[0], true
}

// TodaysWorkout picks the first workout scheduled for the weekday of now,
// falling back to the first workout.
func TodaysWorkout(user *portal.User, now time.Time) (portal.Workout, bool) {
	if len(user.Workouts) == 0 {
		return portal.Workout{}, false
	}
	for _, w := range user.Workouts {
		if w.Weekday == now.Weekday() {
			return w, true
		}
	}
	return user.Workouts[0], true
}

// SearchWorkouts filters by a case-insensitive substring of the title or the
// weekday name and orders the result Monday to Sunday, then by title.
func SearchWorkouts(user *portal.User, query string) []portal.Workout {
	query = strings.ToLower(strings.TrimSpace(query))

	var found []portal.Workout
	for _, w := range user.Workouts {
		haystack := strings.ToLower(w.Title + " " + w.Weekday.String())
		if strings.Contains(haystack, query) {
			found = append(found, w)
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		di, dj := mondayFirst(found[i].Weekday), mondayFirst(found[j].Weekday)
		if di != dj {
			return di < dj
		}
		return found[i].Title < found[j].Title
	})
	return found
}

func mondayFirst(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
