package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/common"

	id "cubemint/pkg/domain"
	"cubemint/pkg/platform/sentinel"
	platformtx "cubemint/pkg/platform/tx"
	"cubemint/pkg/requestcontext"
)

// PostgresRegistry stores ownership in registry_tokens. Token ids come from
// the registry_supply counter row, advanced with a conditional UPDATE so
// concurrent issuers can never pass max_supply or reuse an id.
type PostgresRegistry struct {
	db *sql.DB
}

func NewPostgresRegistry(db *sql.DB) *PostgresRegistry {
	return &PostgresRegistry{db: db}
}

// Init creates the counter row for maxSupply if it does not exist.
func (r *PostgresRegistry) Init(ctx context.Context, maxSupply uint64) error {
	if maxSupply > math.MaxInt64 {
		return fmt.Errorf("max supply %d exceeds %d", maxSupply, int64(math.MaxInt64))
	}
	_, err := platformtx.Conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO registry_supply (id, next_token_id, max_supply) VALUES (1, 0, $1) ON CONFLICT (id) DO NOTHING`,
		int64(maxSupply),
	)
	if err != nil {
		return fmt.Errorf("init registry supply: %w", err)
	}
	return nil
}

func (r *PostgresRegistry) Issue(ctx context.Context, to id.Identity, quantity uint64) ([]id.TokenID, error) {
	if quantity == 0 {
		return nil, nil
	}
	// BIGINT columns cannot hold more; no supply ever can either.
	if quantity > math.MaxInt64 {
		return nil, sentinel.ErrExhausted
	}
	var first int64
	err := platformtx.Within(ctx, r.db, func(q platformtx.Querier) error {
		err := q.QueryRowContext(ctx, `
			UPDATE registry_supply
			SET next_token_id = next_token_id + $1
			WHERE id = 1 AND $1 <= max_supply - next_token_id
			RETURNING next_token_id - $1
		`, int64(quantity)).Scan(&first)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrExhausted
			}
			return fmt.Errorf("reserve token ids: %w", err)
		}

		_, err = q.ExecContext(ctx, `
			INSERT INTO registry_tokens (token_id, owner, issued_at)
			SELECT g, $1, $2 FROM generate_series($3::bigint, $4::bigint) AS g
		`, to.Bytes(), requestcontext.Now(ctx).UTC(), first, first+int64(quantity)-1)
		if err != nil {
			return fmt.Errorf("insert tokens: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	tokens := make([]id.TokenID, quantity)
	for i := range tokens {
		tokens[i] = id.TokenID(uint64(first) + uint64(i))
	}
	return tokens, nil
}

func (r *PostgresRegistry) BalanceOf(ctx context.Context, owner id.Identity) (uint64, error) {
	var n int64
	err := platformtx.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT count(*) FROM registry_tokens WHERE owner = $1`, owner.Bytes(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("balance of: %w", err)
	}
	return uint64(n), nil
}

func (r *PostgresRegistry) Exists(ctx context.Context, token id.TokenID) (bool, error) {
	var exists bool
	err := platformtx.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM registry_tokens WHERE token_id = $1)`, int64(token),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("token exists: %w", err)
	}
	return exists, nil
}

func (r *PostgresRegistry) OwnerOf(ctx context.Context, token id.TokenID) (id.Identity, error) {
	var owner []byte
	err := platformtx.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT owner FROM registry_tokens WHERE token_id = $1`, int64(token),
	).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return id.Identity{}, sentinel.ErrNotFound
		}
		return id.Identity{}, fmt.Errorf("owner of: %w", err)
	}
	return id.Identity(common.BytesToAddress(owner)), nil
}

func (r *PostgresRegistry) TotalSupply(ctx context.Context) (uint64, error) {
	var next int64
	err := platformtx.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT next_token_id FROM registry_supply WHERE id = 1`,
	).Scan(&next)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("total supply: %w", err)
	}
	return uint64(next), nil
}
