// Package models defines the data structures shared between the classifier,
// the API and the usage counter.
package models

// ReportStatus distinguishes a successful report with findings from one
// without findings and from a report produced by an unusable rule set.
type ReportStatus string

const (
	// StatusIssuesFound means at least one issue group was produced.
	StatusIssuesFound ReportStatus = "issues_found"
	// StatusNoIssues means the input was processed and nothing was actionable.
	StatusNoIssues ReportStatus = "no_issues"
	// StatusUnconfigured means the rule set has no triggers, so nothing could match.
	StatusUnconfigured ReportStatus = "unconfigured"
)

// IssueGroup is one canonical message and its occurrence count within a tier.
type IssueGroup struct {
	// Message is the canonical message used as the dedup key
	Message string `json:"message"`

	// Count is the number of lines that collapsed into this group
	Count int `json:"count"`

	// Example is the first original line seen for this group
	Example string `json:"example"`

	// FirstLine is the 1-based input line number of the first occurrence
	FirstLine int `json:"first_line"`
}

// TierReport holds the issue groups of one severity tier, most frequent first.
type TierReport struct {
	Name   string       `json:"name"`
	Groups []IssueGroup `json:"groups"`

	// Total is the number of lines classified into this tier.
	// It always equals the sum of the group counts.
	Total int `json:"total"`
}

// Report is the result of one classification pass.
type Report struct {
	Status ReportStatus `json:"status"`

	// Tiers are listed in rule priority order, including empty tiers.
	Tiers []TierReport `json:"tiers"`

	// TotalLines counts every input line, blank ones included.
	TotalLines int `json:"total_lines"`

	// LinesProcessed counts non-empty lines after whitespace stripping.
	LinesProcessed int `json:"lines_processed"`

	// IssuesFound counts lines classified into any tier.
	IssuesFound int `json:"issues_found"`

	// Ignored counts lines suppressed by an ignore substring.
	Ignored int `json:"ignored"`

	// Unmatched counts lines that matched no tier and were dropped.
	Unmatched int `json:"unmatched"`
}

// Tier returns the tier report with the given name, or nil.
func (r Report) Tier(name string) *TierReport {
	for i := range r.Tiers {
		if r.Tiers[i].Name == name {
			return &r.Tiers[i]
		}
	}
	return nil
}

// UniqueIssues returns the number of issue groups across all tiers.
func (r Report) UniqueIssues() int {
	n := 0
	for _, t := range r.Tiers {
		n += len(t.Groups)
	}
	return n
}

// HasIssues reports whether any line was classified.
func (r Report) HasIssues() bool {
	return r.IssuesFound > 0
}
