package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"wxrmessenger/internal/types"
)

// SuppressionSchema creates the table SuppressionRepository expects.
const SuppressionSchema = `
CREATE TABLE IF NOT EXISTS suppressions (
    email      TEXT PRIMARY KEY,
    until      TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// SuppressionRepository stores suppression records in Postgres. Writes are
// unconditional upserts, so the last writer for an address wins.
type SuppressionRepository struct {
	db DBTX
}

// NewSuppressionRepository creates a repository over db.
func NewSuppressionRepository(db DBTX) *SuppressionRepository {
	return &SuppressionRepository{db: db}
}

// EnsureSchema creates the suppressions table if needed.
func (r *SuppressionRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, SuppressionSchema); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create suppressions table", err)
	}
	return nil
}

// Get returns the record for email, or nil when none exists.
func (r *SuppressionRepository) Get(ctx context.Context, email string) (*types.SuppressionRecord, error) {
	rec := types.SuppressionRecord{EmailAddress: email}
	err := r.db.QueryRow(ctx,
		`SELECT until FROM suppressions WHERE email = $1`, email,
	).Scan(&rec.Until)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB,
			fmt.Sprintf("failed to read suppression for %s", email), err)
	}
	return &rec, nil
}

// Put inserts or replaces the record.
func (r *SuppressionRepository) Put(ctx context.Context, rec types.SuppressionRecord) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO suppressions (email, until, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE
		SET until = EXCLUDED.until, updated_at = EXCLUDED.updated_at`,
		rec.EmailAddress, rec.Until.UTC(), time.Now().UTC(),
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB,
			fmt.Sprintf("failed to write suppression for %s", rec.EmailAddress), err)
	}
	return nil
}
