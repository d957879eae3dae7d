package portal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/fitportal/internal/storage"
	"github.com/2beens/fitportal/internal/telemetry/metrics"
	"github.com/2beens/fitportal/internal/telemetry/tracing"
	"github.com/2beens/fitportal/pkg"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type CreateUserParams struct {
	Name     string `json:"name" validate:"required,max=80"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72,bcryptlen"`
	Goal     Goal   `json:"goal" validate:"omitempty,oneof=lose_weight gain_muscle conditioning health"`
	Level    Level  `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	// Plan is a catalog plan name; empty selects the default plan.
	Plan string `json:"plan" validate:"omitempty,plan"`
}

// UserRepo keeps the whole user collection under a single store key.
type UserRepo struct {
	store    *storage.Store
	key      string
	metrics  *metrics.Manager
	hashCost int
}

func NewUserRepo(
	store *storage.Store,
	key string,
	metricsManager *metrics.Manager,
	hashCost int,
) *UserRepo {
	return &UserRepo{
		store:    store,
		key:      key,
		metrics:  metricsManager,
		hashCost: hashCost,
	}
}

// List returns all users in registration order.
func (r *UserRepo) List(ctx context.Context) ([]User, error) {
	users, err := storage.Get(ctx, r.store, r.key, []User{})
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return users, nil
}

// FindByEmail matches the email case-insensitively.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.findbyemail")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexByEmail(users, email, ""); i >= 0 {
		return &users[i], nil
	}
	return nil, &NotFoundError{Kind: "user", ID: email}
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.findbyid")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", id))

	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexByID(users, id); i >= 0 {
		return &users[i], nil
	}
	return nil, &NotFoundError{Kind: "user", ID: id}
}

// Create registers a new user with the seed workouts and an active plan.
func (r *UserRepo) Create(ctx context.Context, params CreateUserParams, now time.Time) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	params.Name = strings.TrimSpace(params.Name)
	params.Email = strings.TrimSpace(params.Email)
	if err := validateStruct(params); err != nil {
		return nil, err
	}

	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if indexByEmail(users, params.Email, "") >= 0 {
		return nil, ErrDuplicateEmail
	}

	passwordHash, err := pkg.HashPassword(params.Password, r.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	plan := DefaultPlan()
	if params.Plan != "" {
		plan, _ = FindPlan(params.Plan)
	}
	plan.Status = PlanStatusActive

	user := User{
		ID:           uuid.NewString(),
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: passwordHash,
		Goal:         params.Goal,
		Level:        params.Level,
		Plan:         plan,
		MemberSince:  now.Format(DateLayout),
		Checkins:     []Checkin{},
		Workouts:     SeedWorkouts(),
		Measurements: []Measurement{},
		Events:       []Event{},
	}
	span.SetAttributes(attribute.String("user.id", user.ID))

	users = append(users, user)
	if err := r.store.Set(ctx, r.key, users); err != nil {
		return nil, fmt.Errorf("save users: %w", err)
	}

	r.metrics.CounterRegistrations.Inc()
	r.metrics.GaugeUsers.Set(float64(len(users)))
	log.Debugf("user %s registered, plan %s", user.ID, user.Plan.Name)

	return &user, nil
}

// Save replaces the stored user with the same id, or appends it.
func (r *UserRepo) Save(ctx context.Context, user *User) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", user.ID))

	users, err := r.List(ctx)
	if err != nil {
		return err
	}
	if i := indexByID(users, user.ID); i >= 0 {
		users[i] = *user
	} else {
		users = append(users, *user)
	}

	if err := r.store.Set(ctx, r.key, users); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	r.metrics.GaugeUsers.Set(float64(len(users)))
	return nil
}

// DeleteAll drops the whole user collection.
func (r *UserRepo) DeleteAll(ctx context.Context) error {
	if err := r.store.Remove(ctx, r.key); err != nil {
		return err
	}
	r.metrics.GaugeUsers.Set(0)
	return nil
}

// update applies fn to a copy of user and persists it. user is only modified
// when the save succeeds.
func (r *UserRepo) update(ctx context.Context, user *User, fn func(next *User) error) error {
	next := user.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := r.Save(ctx, next); err != nil {
		return err
	}
	*user = *next
	return nil
}

func indexByID(users []User, id string) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}

// indexByEmail ignores the user with id exceptID.
func indexByEmail(users []User, email, exceptID string) int {
	email = strings.TrimSpace(email)
	for i := range users {
		if users[i].ID == exceptID {
			continue
		}
		if strings.EqualFold(users[i].Email, email) {
			return i
		}
	}
	return -1
}
