package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/2beens/fitportal/internal/telemetry/metrics"
	"github.com/2beens/fitportal/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
)

// Store keeps JSON encoded values in a Backend.
type Store struct {
	backend Backend
	metrics *metrics.Manager
}

func NewStore(backend Backend, metricsManager *metrics.Manager) *Store {
	return &Store{
		backend: backend,
		metrics: metricsManager,
	}
}

// Get decodes the value stored under key. A missing key or a value that
// cannot be decoded yields def; only backend failures are returned as errors.
func Get[T any](ctx context.Context, s *Store, key string, def T) (_ T, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("key", key))

	raw, found, err := s.backend.Get(ctx, key)
	if err != nil {
		s.metrics.CounterStoreOps.WithLabelValues("get", "error").Inc()
		return def, fmt.Errorf("get %s: %w", key, err)
	}
	if !found {
		s.metrics.CounterStoreOps.WithLabelValues("get", "miss").Inc()
		return def, nil
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		s.metrics.CounterStoreOps.WithLabelValues("get", "corrupted").Inc()
		s.metrics.CounterCorruptedReads.Inc()
		log.Warnf("%s [%s]: %s, using default", ErrCorruptedStorage, key, err)
		span.SetAttributes(attribute.Bool("corrupted", true))
		return def, nil
	}

	s.metrics.CounterStoreOps.WithLabelValues("get", "hit").Inc()
	return value, nil
}

// Set replaces the value stored under key.
func (s *Store) Set(ctx context.Context, key string, value any) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.set")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("key", key))

	raw, err := json.Marshal(value)
	if err != nil {
		s.metrics.CounterStoreOps.WithLabelValues("set", "error").Inc()
		return fmt.Errorf("encode %s: %w", key, err)
	}
	span.SetAttributes(attribute.Int("bytes", len(raw)))

	if err := s.backend.Set(ctx, key, raw); err != nil {
		if errors.Is(err, ErrStorageQuotaExceeded) {
			s.metrics.CounterQuotaExceeded.Inc()
			s.metrics.CounterStoreOps.WithLabelValues("set", "quota").Inc()
			log.Errorf("set %s (%d bytes): %s", key, len(raw), err)
			return err
		}
		s.metrics.CounterStoreOps.WithLabelValues("set", "error").Inc()
		return fmt.Errorf("set %s: %w", key, err)
	}

	s.metrics.CounterStoreOps.WithLabelValues("set", "ok").Inc()
	s.metrics.HistStoreValueBytes.Observe(float64(len(raw)))
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.remove")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("key", key))

	if err := s.backend.Remove(ctx, key); err != nil {
		s.metrics.CounterStoreOps.WithLabelValues("remove", "error").Inc()
		return fmt.Errorf("remove %s: %w", key, err)
	}
	s.metrics.CounterStoreOps.WithLabelValues("remove", "ok").Inc()
	return nil
}

// RemoveAll tries every key even when some removals fail.
func (s *Store) RemoveAll(ctx context.Context, keys ...string) error {
	var err error
	for _, key := range keys {
		err = multierr.Append(err, s.Remove(ctx, key))
	}
	return err
}
