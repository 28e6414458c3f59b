package store

import (
	"context"
	"sync"

	"cubemint/internal/sale/models"
	id "cubemint/pkg/domain"
	"cubemint/pkg/platform/sentinel"
)

// InMemoryConfigStore holds the sale configuration in process memory.
type InMemoryConfigStore struct {
	mu  sync.RWMutex
	cfg models.Config
}

func NewInMemoryConfigStore(initial models.Config) *InMemoryConfigStore {
	return &InMemoryConfigStore{cfg: initial.Clone()}
}

func (s *InMemoryConfigStore) Load(_ context.Context) (models.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone(), nil
}

func (s *InMemoryConfigStore) Save(_ context.Context, cfg models.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg.Clone()
	return nil
}

// InMemoryClaimLedger records presale claims. RecordClaim checks and
// updates under one lock, so concurrent claims never pass the limit.
type InMemoryClaimLedger struct {
	mu      sync.RWMutex
	claimed map[id.Identity]uint64
	total   uint64
}

func NewInMemoryClaimLedger() *InMemoryClaimLedger {
	return &InMemoryClaimLedger{claimed: make(map[id.Identity]uint64)}
}

func (l *InMemoryClaimLedger) HasClaimed(_ context.Context, identity id.Identity) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.claimed[identity]
	return ok, nil
}

func (l *InMemoryClaimLedger) FreeMintedTotal(_ context.Context) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.total, nil
}

func (l *InMemoryClaimLedger) RecordClaim(_ context.Context, identity id.Identity, quantity, limit uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.claimed[identity]; ok {
		return sentinel.ErrAlreadyUsed
	}
	if l.total > limit || quantity > limit-l.total {
		return sentinel.ErrExhausted
	}
	l.claimed[identity] = quantity
	l.total += quantity
	return nil
}
