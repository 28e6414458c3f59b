package store

import (
	"context"
	"slices"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"cubemint/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	records map[common.Hash]Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[common.Hash]Record)}
}

// Save stores rec. Roots are content addresses, so saving an existing root
// keeps the first record.
func (s *InMemoryStore) Save(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.Root]; ok {
		return nil
	}
	rec.Members = slices.Clone(rec.Members)
	s.records[rec.Root] = rec
	return nil
}

func (s *InMemoryStore) FindByRoot(_ context.Context, root common.Hash) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[root]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	rec.Members = slices.Clone(rec.Members)
	return &rec, nil
}
