package main

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"cubemint/internal/sale/ports"
	dErrors "cubemint/pkg/domain-errors"
	platformtx "cubemint/pkg/platform/tx"
)

const defaultSaleTxTimeout = 5 * time.Second

// salePostgresTx runs sale mutations in one serialized database transaction.
// The config row is locked FOR UPDATE on first load, so concurrent mints
// queue behind each other instead of racing on the free counter.
type salePostgresTx struct {
	db      *sql.DB
	stores  ports.Stores
	timeout time.Duration
}

func newSalePostgresTx(db *sql.DB, stores ports.Stores) *salePostgresTx {
	return &salePostgresTx{db: db, stores: stores}
}

func (t *salePostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context, stores ports.Stores) error) error {
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

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapTxErr(err, "begin sale transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(platformtx.WithTx(ctx, tx), t.stores); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return wrapTxErr(err, "commit sale transaction")
	}
	return nil
}

func wrapTxErr(err error, msg string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
