// Package memory provides an in-memory usage counter store.
package memory

import (
	"context"
	"sync"
)

// Store is an in-memory storage for usage counters.
type Store struct {
	// counts maps date -> key -> count
	counts map[string]map[string]int64
	mu     sync.RWMutex
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		counts: make(map[string]map[string]int64),
	}
}

// Increment adds one to the counter for key on date.
func (s *Store) Increment(ctx context.Context, date, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day, ok := s.counts[date]
	if !ok {
		day = make(map[string]int64)
		s.counts[date] = day
	}
	day[key]++
	return day[key], nil
}

// Counts returns a copy of the counters for date.
func (s *Store) Counts(ctx context.Context, date string) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int64, len(s.counts[date]))
	for k, v := range s.counts[date] {
		out[k] = v
	}
	return out, nil
}

// Purge drops every date except keepDate.
func (s *Store) Purge(ctx context.Context, keepDate string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for date := range s.counts {
		if date != keepDate {
			delete(s.counts, date)
		}
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
