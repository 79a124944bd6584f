// Package store persists schedule documents between pipeline stages. The
// persisted form is the schedule's own order-preserving serialization; every
// implementation must return a byte-identical document on Load for fields
// the engines did not touch.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"asi_schedules/pkg/core/schedule"
)

// ScheduleStore is the persistence boundary between pipeline stages.
type ScheduleStore interface {
	Save(ctx context.Context, runID, block string, s *schedule.Schedule) error
	Load(ctx context.Context, runID, block string) (*schedule.Schedule, error)
}

var (
	pool *pgxpool.Pool
	once sync.Once
)

// InitDB initializes the shared connection pool from an explicit DSN. The
// DSN travels in the config object; nothing in this package reads the
// environment.
func InitDB(ctx context.Context, dsn string) error {
	var err error
	once.Do(func() {
		if dsn == "" {
			err = fmt.Errorf("store: database DSN is empty")
			return
		}
		config, parseErr := pgxpool.ParseConfig(dsn)
		if parseErr != nil {
			err = fmt.Errorf("store: failed to parse database config: %w", parseErr)
			return
		}
		pool, err = pgxpool.NewWithConfig(ctx, config)
	})
	return err
}

// GetPool returns the shared connection pool.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close closes the shared connection pool.
func Close() {
	if pool != nil {
		pool.Close()
	}
}
