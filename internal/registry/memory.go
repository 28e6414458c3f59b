// Package registry is the token ownership ledger the sale issues into.
// Token ids are sequential from zero and bounded by a fixed maximum supply.
package registry

import (
	"context"
	"sync"

	id "cubemint/pkg/domain"
	"cubemint/pkg/platform/sentinel"
)

type InMemoryRegistry struct {
	mu        sync.RWMutex
	maxSupply uint64
	owners    []id.Identity
	balances  map[id.Identity]uint64
}

func NewInMemoryRegistry(maxSupply uint64) *InMemoryRegistry {
	return &InMemoryRegistry{
		maxSupply: maxSupply,
		balances:  make(map[id.Identity]uint64),
	}
}

// Issue mints quantity tokens to to, all or none.
func (r *InMemoryRegistry) Issue(_ context.Context, to id.Identity, quantity uint64) ([]id.TokenID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	issued := uint64(len(r.owners))
	if quantity > r.maxSupply-issued {
		return nil, sentinel.ErrExhausted
	}
	tokens := make([]id.TokenID, quantity)
	for i := range tokens {
		tokens[i] = id.TokenID(issued + uint64(i))
		r.owners = append(r.owners, to)
	}
	r.balances[to] += quantity
	return tokens, nil
}

func (r *InMemoryRegistry) BalanceOf(_ context.Context, owner id.Identity) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.balances[owner], nil
}

func (r *InMemoryRegistry) Exists(_ context.Context, token id.TokenID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return uint64(token) < uint64(len(r.owners)), nil
}

// OwnerOf returns sentinel.ErrNotFound for tokens not yet issued.
func (r *InMemoryRegistry) OwnerOf(_ context.Context, token id.TokenID) (id.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if uint64(token) >= uint64(len(r.owners)) {
		return id.Identity{}, sentinel.ErrNotFound
	}
	return r.owners[token], nil
}

func (r *InMemoryRegistry) TotalSupply(_ context.Context) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return uint64(len(r.owners)), nil
}

func (r *InMemoryRegistry) MaxSupply() uint64 {
	return r.maxSupply
}
