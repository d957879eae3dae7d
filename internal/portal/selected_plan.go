package portal

import (
	"context"
	"fmt"
	"strings"

	"github.com/2beens/fitportal/internal/storage"

	log "github.com/sirupsen/logrus"
)

// SelectedPlans carries a plan picked before registration, stored as
// "<name>|<price>".
type SelectedPlans struct {
	store *storage.Store
	key   string
}

func NewSelectedPlans(store *storage.Store, key string) *SelectedPlans {
	return &SelectedPlans{
		store: store,
		key:   key,
	}
}

// Offer remembers a plan for the next registration.
func (s *SelectedPlans) Offer(ctx context.Context, name string, price float64) error {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "|") {
		return invalidField("plan", "plan", "")
	}
	return s.store.Set(ctx, s.key, fmt.Sprintf("%s|%.2f", name, price))
}

// Peek returns the remembered plan without removing it. A value that names
// no catalog plan is reported as absent.
func (s *SelectedPlans) Peek(ctx context.Context) (Plan, bool, error) {
	raw, err := storage.Get(ctx, s.store, s.key, "")
	if err != nil {
		return Plan{}, false, err
	}
	if raw == "" {
		return Plan{}, false, nil
	}

	name, _, _ := strings.Cut(raw, "|")
	plan, ok := FindPlan(name)
	if !ok {
		log.Debugf("ignoring selected plan %q", raw)
		return Plan{}, false, nil
	}
	return plan, true, nil
}

// Consume removes the remembered plan and returns it when it names a catalog
// plan. The key is removed even when the value is unusable.
func (s *SelectedPlans) Consume(ctx context.Context) (Plan, bool, error) {
	plan, ok, err := s.Peek(ctx)
	if err != nil {
		return Plan{}, false, err
	}
	if err := s.store.Remove(ctx, s.key); err != nil {
		return Plan{}, false, err
	}
	return plan, ok, nil
}
