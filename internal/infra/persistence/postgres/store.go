// Package postgres persists the state slot in a Postgres table with a JSONB payload.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"nutritrack/pkg/domain"
)

var _ domain.StateSlot = (*Slot)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/nutritrack?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Slot stores payloads in `state(bucket, payload)`. Payloads must be JSON documents,
// which both plain and sealed snapshots are.
type Slot struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSlot opens the database behind dsn (falls back to defaultDSN), pings it and
// ensures the state table exists.
func NewSlot(ctx context.Context, dsn string) (*Slot, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := ensureStateTable(ctx, db); err != nil {
		return nil, err
	}
	return &Slot{db: db}, nil
}

func ensureStateTable(ctx context.Context, db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure state table: %w", err)
	}
	return nil
}

// Read returns the payload stored under key.
func (s *Slot) Read(ctx context.Context, key string) ([]byte, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM state WHERE bucket = $1`, key)
	if err != nil {
		return nil, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var found []byte
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return nil, fmt.Errorf("scan state: %w", err)
		}
		if bucket == key {
			found = payload
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate state: %w", err)
	}
	if found == nil {
		return nil, domain.ErrSlotEmpty
	}
	return found, nil
}

// Write upserts the payload in its own transaction.
func (s *Slot) Write(ctx context.Context, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=EXCLUDED.payload`, key, payload); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// Close releases the database handle.
func (s *Slot) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Slot) DB() *sql.DB { return s.db }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
