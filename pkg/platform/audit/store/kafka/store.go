// Package kafka streams audit events to a Kafka topic as JSON records keyed
// by actor, falling back to a local store while the broker is unhealthy.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	audit "cubemint/pkg/platform/audit"
	"cubemint/pkg/platform/circuit"
)

// Producer publishes one record and waits for the broker acknowledgement.
type Producer interface {
	Publish(ctx context.Context, key, value []byte) error
}

type Store struct {
	producer Producer
	fallback audit.Store
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

type Option func(*Store)

// WithFallback routes events to store while the circuit is open.
func WithFallback(store audit.Store) Option {
	return func(s *Store) {
		s.fallback = store
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Store) {
		s.breaker = b
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func New(producer Producer, opts ...Option) *Store {
	s := &Store{
		producer: producer,
		breaker:  circuit.New("audit-kafka"),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	if err := s.producer.Publish(ctx, []byte(event.Actor), payload); err != nil {
		useFallback, change := s.breaker.RecordFailure()
		if change.Opened {
			s.logger.Warn("audit kafka circuit opened", "breaker", s.breaker.Name(), "error", err)
		}
		if useFallback && s.fallback != nil {
			return s.fallback.Append(ctx, event)
		}
		return fmt.Errorf("publish audit event: %w", err)
	}

	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.Info("audit kafka circuit closed", "breaker", s.breaker.Name())
	}
	return nil
}
