// Package sqlite provides a SQLite-backed usage counter store, so daily
// counts survive a restart of the dashboard.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/001_initial_schema.up.sql
var migrationSQL string

// Store is a SQLite-backed storage for usage counters.
type Store struct {
	db *sql.DB
}

// Config holds SQLite store configuration.
type Config struct {
	DBPath      string
	BusyTimeout time.Duration
}

// DefaultConfig returns default SQLite configuration.
func DefaultConfig(dbPath string) Config {
	return Config{
		DBPath:      dbPath,
		BusyTimeout: 5 * time.Second,
	}
}

// New creates a new SQLite store with the given configuration.
func New(cfg Config) (*Store, error) {
	// Open database
	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A single connection serializes writers and keeps ":memory:" databases
	// from being split across connections.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", cfg.BusyTimeout.Milliseconds()),
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma: %w", err)
		}
	}

	// Run migrations
	if _, err := db.Exec(migrationSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Increment adds one to the counter for key on date and returns the new value.
func (s *Store) Increment(ctx context.Context, date, key string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO usage_counters (day, key, count, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(day, key) DO UPDATE SET
			count = count + 1,
			updated_at = excluded.updated_at
	`, date, key, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("incrementing counter: %w", err)
	}

	var count int64
	if err := tx.QueryRowContext(ctx,
		`SELECT count FROM usage_counters WHERE day = ? AND key = ?`, date, key,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("reading counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return count, nil
}

// Counts returns all counters recorded for date.
func (s *Store) Counts(ctx context.Context, date string) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, count FROM usage_counters WHERE day = ?`, date)
	if err != nil {
		return nil, fmt.Errorf("querying counters: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("scanning counter: %w", err)
		}
		counts[key] = count
	}
	return counts, rows.Err()
}

// Purge deletes every counter whose date differs from keepDate.
func (s *Store) Purge(ctx context.Context, keepDate string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM usage_counters WHERE day <> ?`, keepDate); err != nil {
		return fmt.Errorf("purging counters: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
