package storage

import (
	"fmt"
	"log/slog"

	"github.com/fidde/cisco_log_triage/internal/storage/memory"
	"github.com/fidde/cisco_log_triage/internal/storage/sqlite"
)

// Config holds storage configuration.
type Config struct {
	// Backend selects the storage backend: "memory" or "sqlite"
	Backend string

	// SQLitePath is the database file used by the sqlite backend
	SQLitePath string
}

// DefaultConfig returns default storage configuration.
func DefaultConfig() Config {
	return Config{
		Backend:    "memory",
		SQLitePath: "data/usage.db",
	}
}

// NewUsageStore creates a usage store based on configuration.
func NewUsageStore(cfg Config) (UsageStore, error) {
	switch cfg.Backend {
	case "", "memory":
		slog.Info("using in-memory usage store")
		return memory.New(), nil

	case "sqlite":
		slog.Info("using SQLite usage store", "path", cfg.SQLitePath)
		store, err := sqlite.New(sqlite.DefaultConfig(cfg.SQLitePath))
		if err != nil {
			return nil, fmt.Errorf("creating SQLite store: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: memory, sqlite)", cfg.Backend)
	}
}
