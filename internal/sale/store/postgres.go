package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"cubemint/internal/sale/models"
	id "cubemint/pkg/domain"
	"cubemint/pkg/platform/sentinel"
	platformtx "cubemint/pkg/platform/tx"
	"cubemint/pkg/requestcontext"
)

// PostgresConfigStore persists the single sale_config row. Inside a
// transaction Load takes a row lock, which serializes concurrent mints and
// setters on the same snapshot.
type PostgresConfigStore struct {
	db *sql.DB
}

func NewPostgresConfigStore(db *sql.DB) *PostgresConfigStore {
	return &PostgresConfigStore{db: db}
}

// Seed writes the deployment configuration unless a row already exists.
// An existing row wins so administrator changes survive restarts.
func (s *PostgresConfigStore) Seed(ctx context.Context, cfg models.Config) error {
	query := `
		INSERT INTO sale_config (id, administrator, public_phase_start, unit_price, whitelist_root, metadata_base, free_supply_cap)
		VALUES (1, $1, $2, $3::numeric, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := platformtx.Conn(ctx, s.db).ExecContext(ctx, query,
		cfg.Administrator.Bytes(),
		cfg.PublicPhaseStart.UTC(),
		priceText(cfg.UnitPrice),
		cfg.WhitelistRoot.Bytes(),
		cfg.MetadataBase,
		int64(cfg.FreeSupplyCap),
	)
	if err != nil {
		return fmt.Errorf("seed sale config: %w", err)
	}
	return nil
}

func (s *PostgresConfigStore) Load(ctx context.Context) (models.Config, error) {
	query := `
		SELECT administrator, public_phase_start, unit_price::text, whitelist_root, metadata_base, free_supply_cap
		FROM sale_config
		WHERE id = 1
	`
	if _, inTx := platformtx.From(ctx); inTx {
		query += " FOR UPDATE"
	}

	var (
		admin, root []byte
		start       time.Time
		price       string
		base        string
		freeCap     int64
	)
	err := platformtx.Conn(ctx, s.db).QueryRowContext(ctx, query).Scan(&admin, &start, &price, &root, &base, &freeCap)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Config{}, sentinel.ErrNotFound
		}
		return models.Config{}, fmt.Errorf("load sale config: %w", err)
	}

	unitPrice, ok := new(big.Int).SetString(price, 10)
	if !ok {
		return models.Config{}, fmt.Errorf("load sale config: malformed unit price %q", price)
	}
	return models.Config{
		Administrator:    id.Identity(common.BytesToAddress(admin)),
		PublicPhaseStart: start.UTC(),
		UnitPrice:        unitPrice,
		WhitelistRoot:    common.BytesToHash(root),
		MetadataBase:     base,
		FreeSupplyCap:    uint64(freeCap),
	}, nil
}

// Save overwrites the administrator-settable fields. The administrator and
// free supply cap are fixed at deployment.
func (s *PostgresConfigStore) Save(ctx context.Context, cfg models.Config) error {
	query := `
		UPDATE sale_config
		SET public_phase_start = $1,
			unit_price = $2::numeric,
			whitelist_root = $3,
			metadata_base = $4,
			updated_at = now()
		WHERE id = 1
	`
	res, err := platformtx.Conn(ctx, s.db).ExecContext(ctx, query,
		cfg.PublicPhaseStart.UTC(),
		priceText(cfg.UnitPrice),
		cfg.WhitelistRoot.Bytes(),
		cfg.MetadataBase,
	)
	if err != nil {
		return fmt.Errorf("save sale config: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// PostgresClaimLedger keeps claims in sale_claims and the free counter on
// the sale_config row.
type PostgresClaimLedger struct {
	db *sql.DB
}

func NewPostgresClaimLedger(db *sql.DB) *PostgresClaimLedger {
	return &PostgresClaimLedger{db: db}
}

func (l *PostgresClaimLedger) HasClaimed(ctx context.Context, identity id.Identity) (bool, error) {
	var exists bool
	err := platformtx.Conn(ctx, l.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM sale_claims WHERE identity = $1)`,
		identity.Bytes(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check claim: %w", err)
	}
	return exists, nil
}

func (l *PostgresClaimLedger) FreeMintedTotal(ctx context.Context) (uint64, error) {
	var total int64
	err := platformtx.Conn(ctx, l.db).QueryRowContext(ctx,
		`SELECT free_minted_total FROM sale_config WHERE id = 1`,
	).Scan(&total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, sentinel.ErrNotFound
		}
		return 0, fmt.Errorf("read free minted total: %w", err)
	}
	return uint64(total), nil
}

// RecordClaim inserts the claim and bumps the counter with a conditional
// UPDATE. Both statements share the ambient transaction, or a private one
// when called outside RunInTx, so a failed bump never leaves a claim behind.
func (l *PostgresClaimLedger) RecordClaim(ctx context.Context, identity id.Identity, quantity, limit uint64) error {
	return platformtx.Within(ctx, l.db, func(q platformtx.Querier) error {
		res, err := q.ExecContext(ctx, `
			INSERT INTO sale_claims (identity, quantity, claimed_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (identity) DO NOTHING
		`, identity.Bytes(), int64(quantity), requestcontext.Now(ctx).UTC())
		if err != nil {
			return fmt.Errorf("insert claim: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("insert claim: %w", err)
		} else if n == 0 {
			return sentinel.ErrAlreadyUsed
		}

		res, err = q.ExecContext(ctx, `
			UPDATE sale_config
			SET free_minted_total = free_minted_total + $1
			WHERE id = 1 AND free_minted_total + $1 <= $2
		`, int64(quantity), int64(limit))
		if err != nil {
			return fmt.Errorf("bump free minted total: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("bump free minted total: %w", err)
		} else if n == 0 {
			return sentinel.ErrExhausted
		}
		return nil
	})
}

func priceText(p *big.Int) string {
	if p == nil {
		return "0"
	}
	return p.String()
}
