package service

import (
	"context"
	"sync"
	"time"

	"cubemint/internal/sale/models"
	"cubemint/internal/sale/ports"
	id "cubemint/pkg/domain"
	dErrors "cubemint/pkg/domain-errors"
	"cubemint/pkg/platform/sentinel"
)

// defaultSaleTxTimeout is the maximum duration for a sale transaction.
const defaultSaleTxTimeout = 5 * time.Second

// memorySaleTx serializes every sale call behind one mutex and stages config
// and ledger writes in an overlay. The overlay is written through to the
// underlying stores only when the callback succeeds, so a rejected mint, or
// a registry failure after the claim was staged, leaves no trace.
//
// The registry is not staged: callers issue tokens as the last mutation, so
// a failing Issue discards the overlay and a successful one is final.
type memorySaleTx struct {
	mu      sync.Mutex
	stores  ports.Stores
	timeout time.Duration
}

// NewMemoryTx returns a SaleTx for single-process deployments and tests.
func NewMemoryTx(stores ports.Stores) ports.SaleTx {
	return &memorySaleTx{stores: stores}
}

func (t *memorySaleTx) RunInTx(ctx context.Context, fn func(ctx context.Context, stores ports.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultSaleTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	cfg := &stagedConfig{base: t.stores.Config}
	ledger := &stagedLedger{base: t.stores.Ledger, claims: map[id.Identity]stagedClaim{}}
	if err := fn(ctx, ports.Stores{Config: cfg, Ledger: ledger, Registry: t.stores.Registry}); err != nil {
		return err
	}

	if cfg.dirty {
		if err := t.stores.Config.Save(ctx, cfg.cfg); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "commit sale config")
		}
	}
	for _, identity := range ledger.order {
		claim := ledger.claims[identity]
		if err := t.stores.Ledger.RecordClaim(ctx, identity, claim.quantity, claim.limit); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "commit claim")
		}
	}
	return nil
}

type stagedConfig struct {
	base  ports.ConfigStore
	cfg   models.Config
	dirty bool
}

func (c *stagedConfig) Load(ctx context.Context) (models.Config, error) {
	if c.dirty {
		return c.cfg.Clone(), nil
	}
	return c.base.Load(ctx)
}

func (c *stagedConfig) Save(_ context.Context, cfg models.Config) error {
	c.cfg = cfg.Clone()
	c.dirty = true
	return nil
}

type stagedClaim struct {
	quantity uint64
	limit    uint64
}

type stagedLedger struct {
	base   ports.ClaimLedger
	claims map[id.Identity]stagedClaim
	order  []id.Identity
	added  uint64
}

func (l *stagedLedger) HasClaimed(ctx context.Context, identity id.Identity) (bool, error) {
	if _, ok := l.claims[identity]; ok {
		return true, nil
	}
	return l.base.HasClaimed(ctx, identity)
}

func (l *stagedLedger) FreeMintedTotal(ctx context.Context) (uint64, error) {
	total, err := l.base.FreeMintedTotal(ctx)
	if err != nil {
		return 0, err
	}
	return total + l.added, nil
}

func (l *stagedLedger) RecordClaim(ctx context.Context, identity id.Identity, quantity, limit uint64) error {
	claimed, err := l.HasClaimed(ctx, identity)
	if err != nil {
		return err
	}
	if claimed {
		return sentinel.ErrAlreadyUsed
	}
	total, err := l.FreeMintedTotal(ctx)
	if err != nil {
		return err
	}
	if total > limit || quantity > limit-total {
		return sentinel.ErrExhausted
	}
	l.claims[identity] = stagedClaim{quantity: quantity, limit: limit}
	l.order = append(l.order, identity)
	l.added += quantity
	return nil
}
