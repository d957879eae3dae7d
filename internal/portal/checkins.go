package portal

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/2beens/fitportal/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Checkins are kept sorted by date with at most one entry per date.
type Checkins struct {
	users *UserRepo
}

func NewCheckins(users *UserRepo) *Checkins {
	return &Checkins{users: users}
}

// CheckIn records a check-in for the calendar day of now.
func (c *Checkins) CheckIn(ctx context.Context, user *User, now time.Time, note string) (Checkin, error) {
	return c.Add(ctx, user, Checkin{
		Date: now.Format(DateLayout),
		Note: note,
	})
}

func (c *Checkins) Add(ctx context.Context, user *User, checkin Checkin) (_ Checkin, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.checkins.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	checkin.Note = strings.TrimSpace(checkin.Note)
	if err := validateStruct(checkin); err != nil {
		return Checkin{}, err
	}
	if checkin.ID == "" {
		checkin.ID = uuid.NewString()
	}

	if err := c.users.update(ctx, user, func(next *User) error {
		if hasCheckinOn(next.Checkins, checkin.Date, "") {
			return ErrDuplicateCheckin
		}
		next.Checkins = append(next.Checkins, checkin)
		sortCheckins(next.Checkins)
		return nil
	}); err != nil {
		return Checkin{}, err
	}

	c.users.metrics.CounterCheckins.Inc()
	log.Debugf("user %s checked in on %s", user.ID, checkin.Date)
	return checkin, nil
}

func (c *Checkins) Update(ctx context.Context, user *User, id string, checkin Checkin) (_ Checkin, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.checkins.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	checkin.Note = strings.TrimSpace(checkin.Note)
	if err := validateStruct(checkin); err != nil {
		return Checkin{}, err
	}
	checkin.ID = id

	if err := c.users.update(ctx, user, func(next *User) error {
		i := indexOf(next.Checkins, func(x Checkin) bool { return x.ID == id })
		if i < 0 {
			return &NotFoundError{Kind: "checkin", ID: id}
		}
		if hasCheckinOn(next.Checkins, checkin.Date, id) {
			return ErrDuplicateCheckin
		}
		next.Checkins[i] = checkin
		sortCheckins(next.Checkins)
		return nil
	}); err != nil {
		return Checkin{}, err
	}
	return checkin, nil
}

func (c *Checkins) Remove(ctx context.Context, user *User, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.checkins.remove")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return c.users.update(ctx, user, func(next *User) error {
		i := indexOf(next.Checkins, func(x Checkin) bool { return x.ID == id })
		if i < 0 {
			return &NotFoundError{Kind: "checkin", ID: id}
		}
		next.Checkins = append(next.Checkins[:i], next.Checkins[i+1:]...)
		return nil
	})
}

func hasCheckinOn(checkins []Checkin, date, exceptID string) bool {
	for _, c := range checkins {
		if c.Date == date && c.ID != exceptID {
			return true
		}
	}
	return false
}

func sortCheckins(checkins []Checkin) {
	sort.SliceStable(checkins, func(i, j int) bool {
		return checkins[i].Date < checkins[j].Date
	})
}
