package portal

import (
	"context"
	"errors"

	"github.com/2beens/fitportal/internal/storage"

	log "github.com/sirupsen/logrus"
)

type Session struct {
	UserID string `json:"userId"`
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (*User, error)
}

// Sessions tracks the logged in user. There is at most one session.
type Sessions struct {
	store *storage.Store
	key   string
}

func NewSessions(store *storage.Store, key string) *Sessions {
	return &Sessions{
		store: store,
		key:   key,
	}
}

func (s *Sessions) Login(ctx context.Context, userID string) error {
	return s.store.Set(ctx, s.key, Session{UserID: userID})
}

func (s *Sessions) Logout(ctx context.Context) error {
	return s.store.Remove(ctx, s.key)
}

// Current returns the logged in user id, if any.
func (s *Sessions) Current(ctx context.Context) (string, bool, error) {
	session, err := storage.Get(ctx, s.store, s.key, Session{})
	if err != nil {
		return "", false, err
	}
	if session.UserID == "" {
		return "", false, nil
	}
	return session.UserID, true, nil
}

// ResolveCurrentUser returns the logged in user. A session pointing to a user
// that no longer exists is cleared and reported as ErrNotLoggedIn.
func (s *Sessions) ResolveCurrentUser(ctx context.Context, users userFinder) (*User, error) {
	userID, ok, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotLoggedIn
	}

	user, err := users.FindByID(ctx, userID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	log.Infof("clearing session of missing user %s", userID)
	if err := s.Logout(ctx); err != nil {
		return nil, err
	}
	return nil, ErrNotLoggedIn
}
