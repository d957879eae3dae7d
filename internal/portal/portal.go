package portal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/fitportal/internal/storage"
	"github.com/2beens/fitportal/internal/telemetry/metrics"
	"github.com/2beens/fitportal/internal/telemetry/tracing"
	"github.com/2beens/fitportal/pkg"

	log "github.com/sirupsen/logrus"
)

// Portal bundles the repositories and services that operate on one store.
type Portal struct {
	Users         *UserRepo
	Sessions      *Sessions
	SelectedPlans *SelectedPlans
	Workouts      *Workouts
	Measurements  *Measurements
	Checkins      *Checkins
	Events        *Events
	Plans         *Plans
	Profiles      *Profiles

	store   *storage.Store
	keys    storage.Keys
	metrics *metrics.Manager
}

func New(
	store *storage.Store,
	keys storage.Keys,
	metricsManager *metrics.Manager,
	passwordHashCost int,
) *Portal {
	users := NewUserRepo(store, keys.Users, metricsManager, passwordHashCost)
	return &Portal{
		Users:         users,
		Sessions:      NewSessions(store, keys.Session),
		SelectedPlans: NewSelectedPlans(store, keys.SelectedPlan),
		Workouts:      NewWorkouts(users),
		Measurements:  NewMeasurements(users),
		Checkins:      NewCheckins(users),
		Events:        NewEvents(users),
		Plans:         NewPlans(users),
		Profiles:      NewProfiles(users),
		store:         store,
		keys:          keys,
		metrics:       metricsManager,
	}
}

// Register creates an account. A plan selected before registration is used
// when params.Plan is empty, and is consumed only once the account exists.
func (p *Portal) Register(ctx context.Context, params CreateUserParams, now time.Time) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.portal.register")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	selected, ok, err := p.SelectedPlans.Peek(ctx)
	if err != nil {
		return nil, fmt.Errorf("selected plan: %w", err)
	}
	if ok && strings.TrimSpace(params.Plan) == "" {
		params.Plan = selected.Name
	}

	user, err := p.Users.Create(ctx, params, now)
	if err != nil {
		return nil, err
	}

	if _, _, err := p.SelectedPlans.Consume(ctx); err != nil {
		log.Errorf("consume selected plan after registering %s: %s", user.ID, err)
	}
	return user, nil
}

// Login checks the credentials and starts a session. Unknown email and wrong
// password fail the same way.
func (p *Portal) Login(ctx context.Context, email, password string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.portal.login")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	user, err := p.Users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if user == nil || !pkg.CheckPasswordHash(password, user.PasswordHash) {
		p.metrics.CounterLoginFailures.Inc()
		log.Debugf("failed login for %q", email)
		return nil, ErrInvalidCredentials
	}

	if err := p.Sessions.Login(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	log.Infof("user %s logged in", user.ID)
	return user, nil
}

func (p *Portal) Logout(ctx context.Context) error {
	return p.Sessions.Logout(ctx)
}

// CurrentUser resolves the session to a user, or returns ErrNotLoggedIn.
func (p *Portal) CurrentUser(ctx context.Context) (*User, error) {
	return p.Sessions.ResolveCurrentUser(ctx, p.Users)
}

// ResetAll deletes every user and the session.
func (p *Portal) ResetAll(ctx context.Context) error {
	if err := p.store.RemoveAll(ctx, p.keys.Users, p.keys.Session); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	p.metrics.GaugeUsers.Set(0)
	log.Info("all portal data removed")
	return nil
}
