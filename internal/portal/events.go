package portal

import (
	"context"
	"sort"
	"strings"

	"github.com/2beens/fitportal/internal/telemetry/tracing"

	"github.com/google/uuid"
)

// Events are kept sorted by date and time.
type Events struct {
	users *UserRepo
}

func NewEvents(users *UserRepo) *Events {
	return &Events{users: users}
}

func (e *Events) Add(ctx context.Context, user *User, event Event) (_ Event, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.events.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	event = normalizeEvent(event)
	if err := validateStruct(event); err != nil {
		return Event{}, err
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	if err := e.users.update(ctx, user, func(next *User) error {
		next.Events = append(next.Events, event)
		sortEvents(next.Events)
		return nil
	}); err != nil {
		return Event{}, err
	}
	return event, nil
}

func (e *Events) Update(ctx context.Context, user *User, id string, event Event) (_ Event, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.events.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	event = normalizeEvent(event)
	if err := validateStruct(event); err != nil {
		return Event{}, err
	}
	event.ID = id

	if err := e.users.update(ctx, user, func(next *User) error {
		i := indexOf(next.Events, func(x Event) bool { return x.ID == id })
		if i < 0 {
			return &NotFoundError{Kind: "event", ID: id}
		}
		next.Events[i] = event
		sortEvents(next.Events)
		return nil
	}); err != nil {
		return Event{}, err
	}
	return event, nil
}

func (e *Events) Remove(ctx context.Context, user *User, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.events.remove")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return e.users.update(ctx, user, func(next *User) error {
		i := indexOf(next.Events, func(x Event) bool { return x.ID == id })
		if i < 0 {
			return &NotFoundError{Kind: "event", ID: id}
		}
		next.Events = append(next.Events[:i], next.Events[i+1:]...)
		return nil
	})
}

func normalizeEvent(event Event) Event {
	event.Title = strings.TrimSpace(event.Title)
	event.Note = strings.TrimSpace(event.Note)
	event.Time = strings.TrimSpace(event.Time)
	return event
}

func sortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].SortKey() < events[j].SortKey()
	})
}
