// Package sqlite persists the state slot in a single SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"nutritrack/pkg/domain"
)

var _ domain.StateSlot = (*Slot)(nil)

// DefaultPath is used when no database path is configured.
const DefaultPath = "nutritrack.db"

// Slot stores payloads in `state(bucket, payload)`, one row per key.
type Slot struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewSlot opens (creating if needed) the database at path.
func NewSlot(path string) (*Slot, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Slot{db: db, path: path}, nil
}

// Read returns the payload stored under key.
func (s *Slot) Read(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("select state: %w", err)
	}
	return payload, nil
}

// Write upserts the payload in its own transaction.
func (s *Slot) Write(ctx context.Context, key string, payload []byte) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, key, payload); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return tx.Commit()
}

// Close releases the database handle.
func (s *Slot) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Slot) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Slot) Path() string { return s.path }
