package portal

import (
	"context"
	"strings"
	"time"

	"github.com/2beens/fitportal/internal/telemetry/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// SeedWorkouts returns the starter routine every new user gets.
func SeedWorkouts() []Workout {
	seed := func(title string, day time.Weekday, names ...string) Workout {
		exercises := make([]Exercise, 0, len(names))
		for _, name := range names {
			exercises = append(exercises, Exercise{Name: name, Sets: 3, Reps: "10-12", Rest: "60s"})
		}
		return Workout{ID: uuid.NewString(), Title: title, Weekday: day, Exercises: exercises}
	}
	return []Workout{
		seed("A - Chest & Triceps", time.Monday,
			"Bench press", "Incline bench press", "Chest fly", "Triceps rope pushdown"),
		seed("B - Back & Biceps", time.Wednesday,
			"Lat pulldown", "Seated row", "Straight-arm pulldown", "Barbell curl"),
		seed("C - Legs & Shoulders", time.Friday,
			"Squat", "Leg press", "Lateral raise", "Shoulder press"),
	}
}

// Workouts keep insertion order.
type Workouts struct {
	users *UserRepo
}

func NewWorkouts(users *UserRepo) *Workouts {
	return &Workouts{users: users}
}

func (w *Workouts) Add(ctx context.Context, user *User, workout Workout) (_ Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	workout = normalizeWorkout(workout)
	if err := validateStruct(workout); err != nil {
		return Workout{}, err
	}
	if workout.ID == "" {
		workout.ID = uuid.NewString()
	}
	span.SetAttributes(attribute.String("workout.id", workout.ID))

	if err := w.users.update(ctx, user, func(next *User) error {
		next.Workouts = append(next.Workouts, workout)
		return nil
	}); err != nil {
		return Workout{}, err
	}
	return workout, nil
}

// Update replaces the workout with the given id, keeping the id.
func (w *Workouts) Update(ctx context.Context, user *User, id string, workout Workout) (_ Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	workout = normalizeWorkout(workout)
	if err := validateStruct(workout); err != nil {
		return Workout{}, err
	}
	workout.ID = id

	if err := w.users.update(ctx, user, func(next *User) error {
		i := indexOf(next.Workouts, func(w Workout) bool { return w.ID == id })
		if i < 0 {
			return &NotFoundError{Kind: "workout", ID: id}
		}
		next.Workouts[i] = workout
		return nil
	}); err != nil {
		return Workout{}, err
	}
	return workout, nil
}

func (w *Workouts) Remove(ctx context.Context, user *User, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.remove")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return w.users.update(ctx, user, func(next *User) error {
		i := indexOf(next.Workouts, func(w Workout) bool { return w.ID == id })
		if i < 0 {
			return &NotFoundError{Kind: "workout", ID: id}
		}
		next.Workouts = append(next.Workouts[:i], next.Workouts[i+1:]...)
		return nil
	})
}

func normalizeWorkout(w Workout) Workout {
	w.Title = strings.TrimSpace(w.Title)
	w = w.clone()
	for i := range w.Exercises {
		w.Exercises[i].Name = strings.TrimSpace(w.Exercises[i].Name)
		w.Exercises[i].Reps = strings.TrimSpace(w.Exercises[i].Reps)
		w.Exercises[i].Rest = strings.TrimSpace(w.Exercises[i].Rest)
	}
	return w
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i := range items {
		if match(items[i]) {
			return i
		}
	}
	return -1
}
