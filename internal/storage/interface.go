// Package storage defines the storage interface for the daily AI usage counters.
package storage

import "context"

// UsageStore keeps per-day counters keyed by "<feature>_<tier>".
// Implementations must be safe for concurrent use.
type UsageStore interface {
	// Increment adds one to the counter for key on date and returns the new value.
	Increment(ctx context.Context, date, key string) (int64, error)

	// Counts returns all counters recorded for date.
	Counts(ctx context.Context, date string) (map[string]int64, error)

	// Purge deletes every counter whose date differs from keepDate.
	Purge(ctx context.Context, keepDate string) error

	// Close the storage (for cleanup, e.g., DB connections)
	Close() error
}
