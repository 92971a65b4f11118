package classifier

import (
	"sort"
	"strings"

	"github.com/fidde/cisco_log_triage/internal/patterns"
	"github.com/fidde/cisco_log_triage/internal/rules"
	"github.com/fidde/cisco_log_triage/pkg/models"
)

// tierState holds the groups of one tier in first-seen order.
type tierState struct {
	name   string
	groups map[string]*models.IssueGroup
	order  []*models.IssueGroup
	total  int
}

// Accumulator classifies lines one at a time and keeps per-tier group counts.
// It is not safe for concurrent use; callers that share one (the live feed)
// must serialize access.
type Accumulator struct {
	rules    *rules.RuleSet
	patterns []patterns.CompiledPattern
	key      keyFunc

	tiers    []*tierState // parallel to rules.Tiers
	catchAll *tierState   // nil unless unmatched lines are bucketed
	extra    *tierState   // catch-all tier not present in rules.Tiers

	totalLines int
	processed  int
	ignored    int
	unmatched  int
	classified int
}

// NewAccumulator creates an accumulator using the default template patterns.
// rs must already be normalized; it is not copied.
func NewAccumulator(rs *rules.RuleSet) *Accumulator {
	return NewAccumulatorWithPatterns(rs, nil)
}

// NewAccumulatorWithPatterns creates an accumulator with custom patterns for
// the template dedup strategy.
func NewAccumulatorWithPatterns(rs *rules.RuleSet, pats []patterns.CompiledPattern) *Accumulator {
	a := &Accumulator{
		rules:    rs,
		patterns: pats,
	}
	a.Reset()
	return a
}

// Reset discards all counts.
func (a *Accumulator) Reset() {
	a.key = newKeyFunc(a.rules.Dedup, a.patterns)
	a.tiers = make([]*tierState, len(a.rules.Tiers))
	a.catchAll, a.extra = nil, nil
	for i, t := range a.rules.Tiers {
		a.tiers[i] = newTierState(t.Name)
	}

	if a.rules.Unmatched == rules.UnmatchedBucket {
		for _, ts := range a.tiers {
			if strings.EqualFold(ts.name, a.rules.CatchAllTier) {
				a.catchAll = ts
				break
			}
		}
		if a.catchAll == nil {
			a.extra = newTierState(a.rules.CatchAllTier)
			a.catchAll = a.extra
		}
	}

	a.totalLines, a.processed, a.ignored, a.unmatched, a.classified = 0, 0, 0, 0, 0
}

func newTierState(name string) *tierState {
	return &tierState{name: name, groups: make(map[string]*models.IssueGroup)}
}

// Add classifies one raw line. It returns the tier the line was counted in,
// or false when the line was blank, ignored or unmatched.
func (a *Accumulator) Add(line string) (string, bool) {
	a.totalLines++

	stripped := strings.TrimSpace(line)
	if stripped == "" {
		return "", false
	}
	a.processed++

	lower := strings.ToLower(stripped)
	if containsAny(lower, a.rules.Ignore) {
		a.ignored++
		return "", false
	}

	for i, t := range a.rules.Tiers {
		if containsAny(lower, t.Triggers) {
			a.record(a.tiers[i], stripped)
			return t.Name, true
		}
	}

	if a.catchAll != nil {
		a.record(a.catchAll, stripped)
		return a.catchAll.name, true
	}

	a.unmatched++
	return "", false
}

func (a *Accumulator) record(ts *tierState, line string) {
	a.classified++
	ts.total++

	key, msg := a.key(line)
	if g, ok := ts.groups[key]; ok {
		g.Count++
		g.Message = msg
		return
	}

	g := &models.IssueGroup{
		Message:   msg,
		Count:     1,
		Example:   line,
		FirstLine: a.totalLines,
	}
	ts.groups[key] = g
	ts.order = append(ts.order, g)
}

// Report builds a report from the current counts. The accumulator can keep
// receiving lines afterwards.
func (a *Accumulator) Report() models.Report {
	states := a.tiers
	if a.extra != nil {
		states = append(states[:len(states):len(states)], a.extra)
	}

	report := models.Report{
		Tiers:          make([]models.TierReport, 0, len(states)),
		TotalLines:     a.totalLines,
		LinesProcessed: a.processed,
		IssuesFound:    a.classified,
		Ignored:        a.ignored,
		Unmatched:      a.unmatched,
	}

	for _, ts := range states {
		groups := make([]models.IssueGroup, len(ts.order))
		for i, g := range ts.order {
			groups[i] = *g
		}

		// Stable sort keeps first-seen order among equal counts.
		sort.SliceStable(groups, func(i, j int) bool {
			return groups[i].Count > groups[j].Count
		})

		report.Tiers = append(report.Tiers, models.TierReport{
			Name:   ts.name,
			Groups: groups,
			Total:  ts.total,
		})
	}

	switch {
	case a.classified > 0:
		report.Status = models.StatusIssuesFound
	case !a.rules.HasTriggers() && a.catchAll == nil:
		report.Status = models.StatusUnconfigured
	default:
		report.Status = models.StatusNoIssues
	}

	return report
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
