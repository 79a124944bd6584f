package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"asi_schedules/pkg/core/schedule"
)

// PgStore persists schedules to Postgres, one row per (run, block).
//
// Schema assumption:
//
//	CREATE TABLE IF NOT EXISTS schedules (
//	  run_id   TEXT NOT NULL,
//	  block_id TEXT NOT NULL,
//	  doc      TEXT NOT NULL,
//	  updated_at TIMESTAMPTZ,
//	  PRIMARY KEY (run_id, block_id)
//	);
//
// The document column is TEXT, not JSONB: JSONB normalizes key order and
// would break the byte-stable round-trip contract.
type PgStore struct{}

// NewPgStore creates a Postgres-backed schedule store. InitDB must have
// been called first.
func NewPgStore() *PgStore {
	return &PgStore{}
}

// Save upserts one block's document for a run.
func (r *PgStore) Save(ctx context.Context, runID, block string, s *schedule.Schedule) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("store: database pool not initialized")
	}

	doc, err := s.Encode()
	if err != nil {
		return fmt.Errorf("store: failed to encode schedule: %w", err)
	}

	query := `
		INSERT INTO schedules (run_id, block_id, doc, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (run_id, block_id)
		DO UPDATE SET
			doc = EXCLUDED.doc,
			updated_at = EXCLUDED.updated_at;
	`
	if _, err := pool.Exec(ctx, query, runID, block, string(doc), time.Now()); err != nil {
		return fmt.Errorf("store: failed to save block %s: %w", block, err)
	}
	return nil
}

// Load retrieves one block's document for a run.
func (r *PgStore) Load(ctx context.Context, runID, block string) (*schedule.Schedule, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("store: database pool not initialized")
	}

	query := `SELECT doc FROM schedules WHERE run_id = $1 AND block_id = $2`
	var doc string
	err := pool.QueryRow(ctx, query, runID, block).Scan(&doc)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("store: no schedule for run %s block %s", runID, block)
		}
		return nil, fmt.Errorf("store: failed to load block %s: %w", block, err)
	}
	return schedule.Decode([]byte(doc))
}
