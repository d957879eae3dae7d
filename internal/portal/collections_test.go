package portal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/2beens/fitportal/internal/portal"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireValidationFields(t *testing.T, err error, fields ...string) {
	t.Helper()
	var verr *portal.ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	for _, field := range fields {
		assert.True(t, verr.HasField(field), "field %s not reported in %v", field, verr)
	}
}

func TestCheckins(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()
	user, _ := env.register(t)

	first, err := env.portal.Checkins.CheckIn(ctx, user, testNow, "legs day")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "2024-05-01", first.Date)

	_, err = env.portal.Checkins.CheckIn(ctx, user, testNow.Add(5*time.Hour), "")
	assert.ErrorIs(t, err, portal.ErrDuplicateCheckin)
	assert.Len(t, user.Checkins, 1)

	_, err = env.portal.Checkins.Add(ctx, user, portal.Checkin{Date: "2024-04-20"})
	require.NoError(t, err)
	_, err = env.portal.Checkins.Add(ctx, user, portal.Checkin{Date: "2024-04-25"})
	require.NoError(t, err)

	dates := make([]string, 0, len(user.Checkins))
	for _, c := range user.Checkins {
		dates = append(dates, c.Date)
	}
	assert.Equal(t, []string{"2024-04-20", "2024-04-25", "2024-05-01"}, dates)
	assert.Equal(t, float64(3), testutil.ToFloat64(env.metrics.CounterCheckins))

	_, err = env.portal.Checkins.Update(ctx, user, first.ID, portal.Checkin{Date: "2024-04-20"})
	assert.ErrorIs(t, err, portal.ErrDuplicateCheckin)
	updated, err := env.portal.Checkins.Update(ctx, user, first.ID, portal.Checkin{Date: "2024-05-01", Note: "legs and core"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, updated.ID)

	_, err = env.portal.Checkins.Add(ctx, user, portal.Checkin{Date: "01/05/2024"})
	requireValidationFields(t, err, "date")

	require.NoError(t, env.portal.Checkins.Remove(ctx, user, first.ID))
	assert.ErrorIs(t, env.portal.Checkins.Remove(ctx, user, first.ID), portal.ErrNotFound)
	assert.Len(t, user.Checkins, 2)

	stored, err := env.portal.Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, stored)
}

func TestWorkouts(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()
	user, _ := env.register(t)

	added, err := env.portal.Workouts.Add(ctx, user, portal.Workout{
		Title:   "  D - Core ",
		Weekday: time.Sunday,
		Exercises: []portal.Exercise{
			{Name: "Plank", Sets: 3, Reps: "1", Rest: "1m30s"},
			{Name: "Crunch", Sets: 4, Reps: "15-20", Rest: "45s"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "D - Core", added.Title)
	require.Len(t, user.Workouts, 4)
	// insertion order is kept
	assert.Equal(t, added.ID, user.Workouts[3].ID)

	_, err = env.portal.Workouts.Add(ctx, user, portal.Workout{
		Title:   "",
		Weekday: 7,
		Exercises: []portal.Exercise{
			{Name: "", Sets: 0, Reps: "abc", Rest: "60"},
			{Name: "Row", Sets: 3, Reps: "12-8", Rest: "60s"},
		},
	})
	requireValidationFields(t, err,
		"title", "weekday",
		"exercises[0].name", "exercises[0].sets", "exercises[0].reps", "exercises[0].rest",
		"exercises[1].reps",
	)

	_, err = env.portal.Workouts.Add(ctx, user, portal.Workout{Title: "Empty", Weekday: time.Monday})
	requireValidationFields(t, err, "exercises")
	assert.Len(t, user.Workouts, 4)

	added.Title = "D - Core & Abs"
	updated, err := env.portal.Workouts.Update(ctx, user, added.ID, added)
	require.NoError(t, err)
	assert.Equal(t, "D - Core & Abs", updated.Title)
	assert.Equal(t, "D - Core & Abs", user.Workouts[3].Title)

	_, err = env.portal.Workouts.Update(ctx, user, "missing", added)
	assert.ErrorIs(t, err, portal.ErrNotFound)

	firstID := user.Workouts[0].ID
	require.NoError(t, env.portal.Workouts.Remove(ctx, user, firstID))
	assert.ErrorIs(t, env.portal.Workouts.Remove(ctx, user, firstID), portal.ErrNotFound)
	require.Len(t, user.Workouts, 3)

	stored, err := env.portal.Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, stored)
}

func TestMeasurements(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()
	user, _ := env.register(t)

	waist := 84.0
	for _, m := range []portal.Measurement{
		{Date: "2024-03-01", Weight: 78, Waist: &waist},
		{Date: "2024-01-15", Weight: 80},
		{Date: "2024-02-10", Weight: 79},
	} {
		_, err := env.portal.Measurements.Add(ctx, user, m)
		require.NoError(t, err)
	}

	require.Len(t, user.Measurements, 3)
	assert.Equal(t, "2024-01-15", user.Measurements[0].Date)
	assert.Equal(t, "2024-02-10", user.Measurements[1].Date)
	assert.Equal(t, "2024-03-01", user.Measurements[2].Date)
	require.NotNil(t, user.Measurements[2].Waist)
	assert.Equal(t, 84.0, *user.Measurements[2].Waist)

	// the stored copy does not alias the caller's value
	waist = 1
	assert.Equal(t, 84.0, *user.Measurements[2].Waist)

	negative := -3.0
	_, err := env.portal.Measurements.Add(ctx, user, portal.Measurement{Date: "2024-03-02", Weight: 0, Arm: &negative})
	requireValidationFields(t, err, "weight", "arm")

	moved, err := env.portal.Measurements.Update(ctx, user, user.Measurements[0].ID, portal.Measurement{Date: "2024-04-01", Weight: 77.5})
	require.NoError(t, err)
	assert.Equal(t, moved.ID, user.Measurements[2].ID)

	_, err = env.portal.Measurements.Update(ctx, user, "missing", moved)
	assert.ErrorIs(t, err, portal.ErrNotFound)

	require.NoError(t, env.portal.Measurements.Remove(ctx, user, moved.ID))
	assert.Len(t, user.Measurements, 2)

	stored, err := env.portal.Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, stored)
}

func TestEvents(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()
	user, _ := env.register(t)

	for _, e := range []portal.Event{
		{Date: "2024-05-01", Time: "18:00", Title: "Spinning"},
		{Date: "2024-05-01", Time: "09:00", Title: "Physio"},
		{Date: "2024-04-30", Title: "Rest day"},
		{Date: "2024-05-01", Title: "Hydration reminder"},
	} {
		_, err := env.portal.Events.Add(ctx, user, e)
		require.NoError(t, err)
	}

	titles := make([]string, 0, len(user.Events))
	for _, e := range user.Events {
		titles = append(titles, e.Title)
	}
	assert.Equal(t, []string{"Rest day", "Hydration reminder", "Physio", "Spinning"}, titles)

	_, err := env.portal.Events.Add(ctx, user, portal.Event{Date: "2024-13-01", Time: "25:00", Title: " "})
	requireValidationFields(t, err, "date", "time", "title")

	spinning := user.Events[3]
	spinning.Time = "07:30"
	_, err = env.portal.Events.Update(ctx, user, spinning.ID, spinning)
	require.NoError(t, err)
	assert.Equal(t, "Spinning", user.Events[2].Title)

	require.NoError(t, env.portal.Events.Remove(ctx, user, spinning.ID))
	assert.ErrorIs(t, env.portal.Events.Remove(ctx, user, spinning.ID), portal.ErrNotFound)
	assert.Len(t, user.Events, 3)
}

func TestPlans(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()
	user, _ := env.register(t)

	require.NoError(t, env.portal.Plans.Cancel(ctx, user))
	assert.Equal(t, portal.PlanStatusCancelled, user.Plan.Status)

	require.NoError(t, env.portal.Plans.Reactivate(ctx, user))
	assert.Equal(t, portal.PlanStatusActive, user.Plan.Status)

	require.NoError(t, env.portal.Plans.Cancel(ctx, user))
	require.NoError(t, env.portal.Plans.Change(ctx, user, "yearly"))
	assert.Equal(t, "Yearly", user.Plan.Name)
	assert.Equal(t, 1199.90, user.Plan.Price)
	assert.Equal(t, portal.PlanStatusActive, user.Plan.Status)

	err := env.portal.Plans.Change(ctx, user, "Weekly")
	requireValidationFields(t, err, "plan")
	assert.Equal(t, "Yearly", user.Plan.Name)

	stored, err := env.portal.Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Plan, stored.Plan)

	assert.Len(t, portal.Catalog(), 3)
}

func TestProfiles(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()
	user, params := env.register(t)
	other, _ := env.register(t)

	err := env.portal.Profiles.Update(ctx, user, portal.ProfileUpdate{Name: "Changed", Email: other.Email})
	assert.ErrorIs(t, err, portal.ErrDuplicateEmail)
	assert.Equal(t, params.Name, user.Name)

	err = env.portal.Profiles.Update(ctx, user, portal.ProfileUpdate{
		Name:  " Changed ",
		Email: "CHANGED-" + params.Email,
		Goal:  portal.GoalConditioning,
		Level: portal.LevelAdvanced,
	})
	require.NoError(t, err)
	assert.Equal(t, "Changed", user.Name)
	assert.Equal(t, portal.LevelAdvanced, user.Level)

	// a case change of the own email is allowed
	err = env.portal.Profiles.Update(ctx, user, portal.ProfileUpdate{Name: "Changed", Email: "changed-" + params.Email})
	require.NoError(t, err)

	err = env.portal.Profiles.Update(ctx, user, portal.ProfileUpdate{Name: "", Email: "nope", Level: "pro"})
	requireValidationFields(t, err, "name", "email", "level")

	stored, err := env.portal.Users.FindByEmail(ctx, "changed-"+params.Email)
	require.NoError(t, err)
	assert.Equal(t, user, stored)
}
