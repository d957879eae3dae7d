package portal

import (
	"context"
	"sort"

	"github.com/2beens/fitportal/internal/telemetry/tracing"

	"github.com/google/uuid"
)

// Measurements are kept sorted by date, oldest first. Entries sharing a date
// keep their insertion order.
type Measurements struct {
	users *UserRepo
}

func NewMeasurements(users *UserRepo) *Measurements {
	return &Measurements{users: users}
}

func (m *Measurements) Add(ctx context.Context, user *User, measurement Measurement) (_ Measurement, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.measurements.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := validateStruct(measurement); err != nil {
		return Measurement{}, err
	}
	measurement = measurement.clone()
	if measurement.ID == "" {
		measurement.ID = uuid.NewString()
	}

	if err := m.users.update(ctx, user, func(next *User) error {
		next.Measurements = append(next.Measurements, measurement)
		sortMeasurements(next.Measurements)
		return nil
	}); err != nil {
		return Measurement{}, err
	}
	return measurement, nil
}

func (m *Measurements) Update(ctx context.Context, user *User, id string, measurement Measurement) (_ Measurement, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.measurements.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := validateStruct(measurement); err != nil {
		return Measurement{}, err
	}
	measurement = measurement.clone()
	measurement.ID = id

	if err := m.users.update(ctx, user, func(next *User) error {
		i := indexOf(next.Measurements, func(x Measurement) bool { return x.ID == id })
		if i < 0 {
			return &NotFoundError{Kind: "measurement", ID: id}
		}
		next.Measurements[i] = measurement
		sortMeasurements(next.Measurements)
		return nil
	}); err != nil {
		return Measurement{}, err
	}
	return measurement, nil
}

func (m *Measurements) Remove(ctx context.Context, user *User, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.measurements.remove")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return m.users.update(ctx, user, func(next *User) error {
		i := indexOf(next.Measurements, func(x Measurement) bool { return x.ID == id })
		if i < 0 {
			return &NotFoundError{Kind: "measurement", ID: id}
		}
		next.Measurements = append(next.Measurements[:i], next.Measurements[i+1:]...)
		return nil
	})
}

func sortMeasurements(measurements []Measurement) {
	sort.SliceStable(measurements, func(i, j int) bool {
		return measurements[i].Date < measurements[j].Date
	})
}
