package portal

import (
	"context"
	"strings"

	"github.com/2beens/fitportal/internal/telemetry/tracing"
)

type ProfileUpdate struct {
	Name  string `json:"name" validate:"required,max=80"`
	Email string `json:"email" validate:"required,email,max=254"`
	Goal  Goal   `json:"goal" validate:"omitempty,oneof=lose_weight gain_muscle conditioning health"`
	Level Level  `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
}

// Profiles edits the personal data of a user.
type Profiles struct {
	users *UserRepo
}

func NewProfiles(users *UserRepo) *Profiles {
	return &Profiles{users: users}
}

// Update changes name, email, goal and level. The email must not belong to
// another user.
func (p *Profiles) Update(ctx context.Context, user *User, update ProfileUpdate) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.profiles.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	update.Name = strings.TrimSpace(update.Name)
	update.Email = strings.TrimSpace(update.Email)
	if err := validateStruct(update); err != nil {
		return err
	}

	users, err := p.users.List(ctx)
	if err != nil {
		return err
	}
	if indexByEmail(users, update.Email, user.ID) >= 0 {
		return ErrDuplicateEmail
	}

	return p.users.update(ctx, user, func(next *User) error {
		next.Name = update.Name
		next.Email = update.Email
		next.Goal = update.Goal
		next.Level = update.Level
		return nil
	})
}
