// Package classifier implements the rule-based log line classification and
// deduplication engine: it scans raw device log text, drops noise matched by
// the ignore list, sorts the remaining lines into severity tiers (first
// matching tier wins) and collapses repeated events into counted groups.
//
// Classification is a pure function of the text and the rule set. It never
// fails on log content; only a missing or invalid rule set is an error.
package classifier

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fidde/cisco_log_triage/internal/patterns"
	"github.com/fidde/cisco_log_triage/internal/rules"
	"github.com/fidde/cisco_log_triage/pkg/models"
)

// Classifier applies one immutable rule set.
type Classifier struct {
	rules    *rules.RuleSet
	patterns []patterns.CompiledPattern
	warnings []string
}

// New creates a classifier for rs using the default template patterns.
func New(rs *rules.RuleSet) (*Classifier, error) {
	return NewWithPatterns(rs, nil)
}

// NewWithPatterns creates a classifier with custom template patterns.
// The rule set is copied and normalized; later changes to rs have no effect.
func NewWithPatterns(rs *rules.RuleSet, pats []patterns.CompiledPattern) (*Classifier, error) {
	if rs == nil {
		return nil, models.ErrNilRules
	}

	own := rs.Clone()
	own.Normalize()
	warnings, err := own.Validate()
	if err != nil {
		return nil, err
	}

	if pats == nil {
		pats = patterns.DefaultPatterns()
	}

	return &Classifier{
		rules:    own,
		patterns: pats,
		warnings: warnings,
	}, nil
}

// Rules returns a copy of the rule set in use.
func (c *Classifier) Rules() *rules.RuleSet {
	return c.rules.Clone()
}

// Warnings returns the configuration warnings found when the classifier was built.
func (c *Classifier) Warnings() []string {
	return append([]string(nil), c.warnings...)
}

// NewAccumulator returns an empty accumulator sharing this classifier's rules.
func (c *Classifier) NewAccumulator() *Accumulator {
	return NewAccumulatorWithPatterns(c.rules, c.patterns)
}

// Classify classifies multi-line text. Empty text yields an empty report.
func (c *Classifier) Classify(text string) models.Report {
	acc := c.NewAccumulator()
	for _, line := range splitLines(text) {
		acc.Add(line)
	}
	return acc.Report()
}

// ClassifyReader classifies text streamed from r, splitting lines exactly as
// Classify does. Lines of any length are accepted; errors come only from r.
func (c *Classifier) ClassifyReader(r io.Reader) (models.Report, error) {
	acc := c.NewAccumulator()

	br := bufio.NewReader(r)
	for {
		chunk, err := br.ReadString('\n')
		for _, line := range splitLines(chunk) {
			acc.Add(line)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.Report{}, fmt.Errorf("reading log input: %w", err)
		}
	}

	return acc.Report(), nil
}

// Classify is a convenience wrapper building a one-off classifier.
func Classify(text string, rs *rules.RuleSet) (models.Report, error) {
	c, err := New(rs)
	if err != nil {
		return models.Report{}, err
	}
	return c.Classify(text), nil
}

// splitLines splits on \n, \r\n and \r. A trailing line break does not
// produce an extra empty line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
