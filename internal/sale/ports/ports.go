// Package ports defines the collaborators the sale service depends on.
package ports

import (
	"context"
	"log/slog"

	"cubemint/internal/sale/models"
	id "cubemint/pkg/domain"
	audit "cubemint/pkg/platform/audit"
	"cubemint/pkg/requestcontext"
)

// ConfigStore holds the single sale configuration record.
type ConfigStore interface {
	Load(ctx context.Context) (models.Config, error)
	Save(ctx context.Context, cfg models.Config) error
}

// ClaimLedger tracks presale claims.
type ClaimLedger interface {
	HasClaimed(ctx context.Context, identity id.Identity) (bool, error)
	FreeMintedTotal(ctx context.Context) (uint64, error)
	// RecordClaim marks identity as claimed and adds quantity to the free
	// counter as one compare-and-update. It returns sentinel.ErrAlreadyUsed
	// when identity has claimed and sentinel.ErrExhausted when the counter
	// would pass limit; neither case changes state.
	RecordClaim(ctx context.Context, identity id.Identity, quantity, limit uint64) error
}

// Registry owns token ownership and the total supply ceiling.
type Registry interface {
	// Issue creates quantity sequential tokens owned by to, or returns
	// sentinel.ErrExhausted without issuing any.
	Issue(ctx context.Context, to id.Identity, quantity uint64) ([]id.TokenID, error)
	BalanceOf(ctx context.Context, owner id.Identity) (uint64, error)
	Exists(ctx context.Context, token id.TokenID) (bool, error)
	TotalSupply(ctx context.Context) (uint64, error)
}

// Stores groups the stores visible inside one transaction.
type Stores struct {
	Config   ConfigStore
	Ledger   ClaimLedger
	Registry Registry
}

// SaleTx is the transactional boundary for every sale mutation. fn sees one
// consistent snapshot; its effects commit together only when it returns nil.
// Implementations may wrap a database transaction or, in memory, a lock and
// a staged overlay.
type SaleTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}

// AuditPublisher emits audit events to the configured sink.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// LogAudit logs an audit line and forwards the event to the publisher.
// Publisher failures are logged; they never fail the calling operation.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, event audit.Event, attrs ...any) {
	event.RequestID = requestcontext.RequestID(ctx)
	event.ClientIP = requestcontext.ClientIP(ctx)
	event.Device = requestcontext.Device(ctx)
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}

	if event.RequestID != "" {
		attrs = append(attrs, "request_id", event.RequestID)
	}
	args := append(attrs, "event", event.Action, "actor", event.Actor, "log_type", "audit")
	if event.Reason != "" {
		args = append(args, "reason", event.Reason)
	}

	if logger != nil {
		logger.InfoContext(ctx, event.Action, args...)
	}

	if publisher == nil {
		return
	}
	if err := publisher.Emit(ctx, event); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", event.Action, "error", err)
	}
}
