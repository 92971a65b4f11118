// Package usage counts successful AI calls per feature and model tier for the
// current calendar day.
package usage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fidde/cisco_log_triage/internal/storage"
	"github.com/fidde/cisco_log_triage/pkg/models"
)

// Features that call the AI service.
const (
	FeatureLog  = "log"
	FeatureSpec = "spec"
	FeatureOS   = "os"
)

// Model tiers.
const (
	TierLite  = "lite"
	TierFlash = "flash"
	TierPro   = "pro"
)

// Features lists every feature in display order.
var Features = []string{FeatureLog, FeatureSpec, FeatureOS}

// Tiers lists every model tier in display order.
var Tiers = []string{TierLite, TierFlash, TierPro}

const dateLayout = "2006-01-02"

// Key returns the counter key for a feature and tier.
func Key(feature, tier string) string {
	return feature + "_" + tier
}

// Keys returns all valid counter keys.
func Keys() []string {
	keys := make([]string, 0, len(Features)*len(Tiers))
	for _, f := range Features {
		for _, t := range Tiers {
			keys = append(keys, Key(f, t))
		}
	}
	return keys
}

// ValidFeature reports whether f is a known feature.
func ValidFeature(f string) bool {
	return contains(Features, f)
}

// ValidTier reports whether t is a known model tier.
func ValidTier(t string) bool {
	return contains(Tiers, t)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Option configures a Counter.
type Option func(*Counter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Counter) {
		c.now = now
	}
}

// Counter tracks daily usage on top of a UsageStore. Counters from previous
// days are purged the first time the counter is touched on a new date.
type Counter struct {
	store storage.UsageStore
	now   func() time.Time

	mu      sync.Mutex
	date    string
	resetAt time.Time
}

// NewCounter creates a usage counter backed by store.
func NewCounter(store storage.UsageStore, opts ...Option) *Counter {
	c := &Counter{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Record increments the counter for feature and tier and returns the new value.
func (c *Counter) Record(ctx context.Context, feature, tier string) (int64, error) {
	if !ValidFeature(feature) || !ValidTier(tier) {
		return 0, fmt.Errorf("unknown usage key %q", Key(feature, tier))
	}

	date, err := c.rollover(ctx)
	if err != nil {
		return 0, err
	}

	n, err := c.store.Increment(ctx, date, Key(feature, tier))
	if err != nil {
		return 0, fmt.Errorf("incrementing %s: %w", Key(feature, tier), err)
	}
	return n, nil
}

// Snapshot returns today's counters with every key present.
func (c *Counter) Snapshot(ctx context.Context) (models.UsageSnapshot, error) {
	date, err := c.rollover(ctx)
	if err != nil {
		return models.UsageSnapshot{}, err
	}

	stored, err := c.store.Counts(ctx, date)
	if err != nil {
		return models.UsageSnapshot{}, fmt.Errorf("reading usage counts: %w", err)
	}

	snap := models.UsageSnapshot{
		Date:   date,
		Counts: make(map[string]int64, len(Features)*len(Tiers)),
	}
	for _, k := range Keys() {
		snap.Counts[k] = stored[k]
		snap.Total += stored[k]
	}

	c.mu.Lock()
	snap.ResetAt = c.resetAt
	c.mu.Unlock()

	return snap, nil
}

// rollover returns today's date, purging older counters when the date changed.
func (c *Counter) rollover(ctx context.Context) (string, error) {
	now := c.now()
	today := now.Format(dateLayout)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.date == today {
		return today, nil
	}

	if err := c.store.Purge(ctx, today); err != nil {
		return "", fmt.Errorf("resetting usage counters: %w", err)
	}
	c.date = today
	c.resetAt = now
	return today, nil
}
