package models

import "time"

// UsageSnapshot is a point-in-time copy of the daily AI usage counters.
type UsageSnapshot struct {
	// Date is the calendar day (YYYY-MM-DD) the counters belong to
	Date string `json:"date"`

	// Counts maps "<feature>_<tier>" keys to successful call counts
	Counts map[string]int64 `json:"counts"`

	// Total is the sum of all counts
	Total int64 `json:"total"`

	// ResetAt is when the counters were last reset
	ResetAt time.Time `json:"reset_at"`
}
