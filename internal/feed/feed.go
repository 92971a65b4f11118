// Package feed keeps a running classification of log lines pushed by devices.
package feed

import (
	"sync"
	"time"

	"github.com/fidde/cisco_log_triage/internal/classifier"
	"github.com/fidde/cisco_log_triage/pkg/models"
)

// Snapshot is the live report at a point in time.
type Snapshot struct {
	Report     models.Report `json:"report"`
	Since      time.Time     `json:"since"`
	LastIngest *time.Time    `json:"last_ingest,omitempty"`
	Batches    int64         `json:"batches"`
	// Sources is the approximate number of distinct devices seen since Since.
	Sources    uint64        `json:"sources"`
}

// Feed wraps a classifier.Accumulator for concurrent ingestion.
type Feed struct {
	mu         sync.Mutex
	acc        *classifier.Accumulator
	now        func() time.Time
	since      time.Time
	lastIngest time.Time
	batches    int64
	sources    *sourceSketch
}

// New creates a live feed classifying with c.
func New(c *classifier.Classifier) *Feed {
	return newWithClock(c, time.Now)
}

func newWithClock(c *classifier.Classifier, now func() time.Time) *Feed {
	return &Feed{
		acc:     c.NewAccumulator(),
		now:     now,
		since:   now(),
		sources: newSourceSketch(),
	}
}

// Ingest classifies a batch of lines sent by source and returns how many
// landed in a tier. An empty source is not counted as a device.
func (f *Feed) Ingest(source string, lines []string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	if source != "" {
		f.sources.add(source)
	}

	classified := 0
	for _, line := range lines {
		if _, ok := f.acc.Add(line); ok {
			classified++
		}
	}
	f.batches++
	f.lastIngest = f.now()
	return classified
}

// Snapshot returns a copy of the current report.
func (f *Feed) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := Snapshot{
		Report:  f.acc.Report(),
		Since:   f.since,
		Batches: f.batches,
		Sources: f.sources.estimate(),
	}
	if !f.lastIngest.IsZero() {
		last := f.lastIngest
		s.LastIngest = &last
	}
	return s
}

// Reset clears all groups and counters.
func (f *Feed) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.acc.Reset()
	f.sources.reset()
	f.batches = 0
	f.lastIngest = time.Time{}
	f.since = f.now()
}
