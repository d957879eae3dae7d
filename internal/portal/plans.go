package portal

import (
	"context"
	"strings"

	"github.com/2beens/fitportal/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

var planCatalog = []Plan{
	{Name: "Monthly", Price: 129.90, Description: "Full access, billed every month"},
	{Name: "Quarterly", Price: 349.90, Description: "Full access, billed every three months"},
	{Name: "Yearly", Price: 1199.90, Description: "Full access, billed once a year"},
}

// Catalog returns the plans a user can subscribe to.
func Catalog() []Plan {
	return append([]Plan(nil), planCatalog...)
}

func DefaultPlan() Plan {
	return planCatalog[0]
}

// FindPlan looks a plan up by name, ignoring case.
func FindPlan(name string) (Plan, bool) {
	name = strings.TrimSpace(name)
	for _, p := range planCatalog {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Plan{}, false
}

// Plans manages the subscription plan of a user.
type Plans struct {
	users *UserRepo
}

func NewPlans(users *UserRepo) *Plans {
	return &Plans{users: users}
}

// Change switches to another catalog plan and activates it.
func (p *Plans) Change(ctx context.Context, user *User, name string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.plans.change")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	plan, ok := FindPlan(name)
	if !ok {
		return invalidField("plan", "plan", "")
	}
	plan.Status = PlanStatusActive

	if err := p.users.update(ctx, user, func(next *User) error {
		next.Plan = plan
		return nil
	}); err != nil {
		return err
	}
	log.Debugf("user %s changed plan to %s", user.ID, plan.Name)
	return nil
}

func (p *Plans) Cancel(ctx context.Context, user *User) error {
	return p.setStatus(ctx, user, PlanStatusCancelled)
}

func (p *Plans) Reactivate(ctx context.Context, user *User) error {
	return p.setStatus(ctx, user, PlanStatusActive)
}

func (p *Plans) setStatus(ctx context.Context, user *User, status PlanStatus) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.plans.status")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if user.Plan.Status == status {
		return nil
	}
	if err := p.users.update(ctx, user, func(next *User) error {
		next.Plan.Status = status
		return nil
	}); err != nil {
		return err
	}
	log.Debugf("user %s plan %s is now %s", user.ID, user.Plan.Name, status)
	return nil
}
