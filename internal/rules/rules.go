// Package rules defines the classification rule sets: an ignore list that
// suppresses noise and an ordered list of severity tiers with trigger
// substrings. Rule sets are data; tuning them never touches the classifier.
package rules

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Policies for lines that survive the ignore list but match no tier.
const (
	UnmatchedDrop   = "drop"
	UnmatchedBucket = "bucket"
)

// Dedup strategies select how the canonical message of a line is derived.
const (
	DedupMnemonic = "mnemonic"
	DedupLine     = "line"
	DedupTemplate = "template"
	DedupDrain    = "drain"
)

// DefaultCatchAllTier is the tier unmatched lines go to in bucket mode.
const DefaultCatchAllTier = "Info"

// Tier is one severity bucket and the substrings that select it.
type Tier struct {
	Name     string   `yaml:"name" json:"name"`
	Triggers []string `yaml:"triggers" json:"triggers"`
}

// RuleSet is a complete classification configuration.
// Tiers are evaluated in slice order; the first matching tier wins.
type RuleSet struct {
	Name         string   `yaml:"name" json:"name"`
	Ignore       []string `yaml:"ignore" json:"ignore"`
	Tiers        []Tier   `yaml:"tiers" json:"tiers"`
	Unmatched    string   `yaml:"unmatched" json:"unmatched"`
	CatchAllTier string   `yaml:"catch_all_tier,omitempty" json:"catch_all_tier,omitempty"`
	Dedup        string   `yaml:"dedup" json:"dedup"`
}

// ErrInvalidRules is wrapped by every hard validation failure.
var ErrInvalidRules = errors.New("invalid rule set")

// Load reads and normalizes a rule set from a YAML file.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	return Parse(data)
}

// Parse decodes, normalizes and validates a YAML rule set.
func Parse(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parsing rules YAML: %w", err)
	}
	rs.Normalize()
	if _, err := rs.Validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// Marshal encodes the rule set as YAML.
func (rs *RuleSet) Marshal() ([]byte, error) {
	return yaml.Marshal(rs)
}

// Normalize lower-cases and trims every substring, drops blank and repeated
// entries, and fills in defaults for the policy fields.
func (rs *RuleSet) Normalize() {
	rs.Ignore = normalizeSubstrings(rs.Ignore)
	for i := range rs.Tiers {
		rs.Tiers[i].Name = strings.TrimSpace(rs.Tiers[i].Name)
		rs.Tiers[i].Triggers = normalizeSubstrings(rs.Tiers[i].Triggers)
	}

	rs.Unmatched = strings.ToLower(strings.TrimSpace(rs.Unmatched))
	if rs.Unmatched == "" {
		rs.Unmatched = UnmatchedDrop
	}
	rs.Dedup = strings.ToLower(strings.TrimSpace(rs.Dedup))
	if rs.Dedup == "" {
		rs.Dedup = DedupMnemonic
	}
	rs.CatchAllTier = strings.TrimSpace(rs.CatchAllTier)
	if rs.Unmatched == UnmatchedBucket && rs.CatchAllTier == "" {
		rs.CatchAllTier = DefaultCatchAllTier
	}
}

// Validate checks the rule set. Hard errors wrap ErrInvalidRules; conditions
// that still allow classification (no triggers, empty tiers) are returned as
// warnings.
func (rs *RuleSet) Validate() ([]string, error) {
	switch rs.Unmatched {
	case UnmatchedDrop, UnmatchedBucket:
	default:
		return nil, fmt.Errorf("%w: unknown unmatched policy %q", ErrInvalidRules, rs.Unmatched)
	}

	switch rs.Dedup {
	case DedupMnemonic, DedupLine, DedupTemplate, DedupDrain:
	default:
		return nil, fmt.Errorf("%w: unknown dedup strategy %q", ErrInvalidRules, rs.Dedup)
	}

	var warnings []string
	seen := make(map[string]bool, len(rs.Tiers))
	for i, t := range rs.Tiers {
		if t.Name == "" {
			return nil, fmt.Errorf("%w: tier %d has no name", ErrInvalidRules, i)
		}
		key := strings.ToLower(t.Name)
		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate tier %q", ErrInvalidRules, t.Name)
		}
		seen[key] = true
		if len(t.Triggers) == 0 {
			warnings = append(warnings, fmt.Sprintf("tier %q has no trigger substrings", t.Name))
		}
	}

	if !rs.HasTriggers() {
		warnings = append(warnings, "no tier defines a trigger substring; every line will be unclassified")
	}
	return warnings, nil
}

// HasTriggers reports whether at least one tier has a trigger substring.
func (rs *RuleSet) HasTriggers() bool {
	for _, t := range rs.Tiers {
		if len(t.Triggers) > 0 {
			return true
		}
	}
	return false
}

// TierNames returns the names of the tiers a report built from this rule set
// contains, in priority order. In bucket mode the catch-all tier is appended
// unless a configured tier already has that name.
func (rs *RuleSet) TierNames() []string {
	names := make([]string, 0, len(rs.Tiers)+1)
	hasCatchAll := false
	for _, t := range rs.Tiers {
		names = append(names, t.Name)
		if rs.CatchAllTier != "" && strings.EqualFold(t.Name, rs.CatchAllTier) {
			hasCatchAll = true
		}
	}
	if rs.Unmatched == UnmatchedBucket && !hasCatchAll {
		names = append(names, rs.CatchAllTier)
	}
	return names
}

// Clone returns a deep copy.
func (rs *RuleSet) Clone() *RuleSet {
	c := *rs
	c.Ignore = append([]string(nil), rs.Ignore...)
	c.Tiers = make([]Tier, len(rs.Tiers))
	for i, t := range rs.Tiers {
		c.Tiers[i] = Tier{Name: t.Name, Triggers: append([]string(nil), t.Triggers...)}
	}
	return &c
}

func normalizeSubstrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
