package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	id "cubemint/pkg/domain"
	"cubemint/pkg/platform/sentinel"
	platformtx "cubemint/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Save writes the commitment header and its members in one transaction.
// A root that already exists is left untouched.
func (s *PostgresStore) Save(ctx context.Context, rec Record) error {
	members := make([][]byte, len(rec.Members))
	for i, m := range rec.Members {
		members[i] = m.Bytes()
	}

	return platformtx.Within(ctx, s.db, func(q platformtx.Querier) error {
		res, err := q.ExecContext(ctx, `
			INSERT INTO whitelist_commitments (root, hasher, leaf_count, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (root) DO NOTHING
		`, rec.Root.Bytes(), rec.Hasher, len(rec.Members), rec.PublishedAt)
		if err != nil {
			return fmt.Errorf("insert whitelist commitment: %w", err)
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("insert whitelist commitment: %w", err)
		}
		if inserted == 0 {
			return nil
		}

		_, err = q.ExecContext(ctx, `
			INSERT INTO whitelist_members (root, position, identity)
			SELECT $1, m.ord - 1, m.identity
			FROM unnest($2::bytea[]) WITH ORDINALITY AS m(identity, ord)
		`, rec.Root.Bytes(), members)
		if err != nil {
			return fmt.Errorf("insert whitelist members: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) FindByRoot(ctx context.Context, root common.Hash) (*Record, error) {
	q := platformtx.Conn(ctx, s.db)

	rec := Record{Root: root}
	var leafCount int
	err := q.QueryRowContext(ctx, `
		SELECT hasher, leaf_count, created_at
		FROM whitelist_commitments
		WHERE root = $1
	`, root.Bytes()).Scan(&rec.Hasher, &leafCount, &rec.PublishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find whitelist commitment: %w", err)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT identity FROM whitelist_members
		WHERE root = $1
		ORDER BY position
	`, root.Bytes())
	if err != nil {
		return nil, fmt.Errorf("list whitelist members: %w", err)
	}
	defer rows.Close()

	rec.Members = make([]id.Identity, 0, leafCount)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan whitelist member: %w", err)
		}
		rec.Members = append(rec.Members, id.Identity(common.BytesToAddress(raw)))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list whitelist members: %w", err)
	}
	if len(rec.Members) != leafCount {
		return nil, fmt.Errorf("whitelist %s: stored %d members, header says %d", root.Hex(), len(rec.Members), leafCount)
	}
	return &rec, nil
}
