package rules

import (
	"fmt"

	"github.com/fidde/cisco_log_triage/pkg/models"
)

// Profile names accepted by Profile.
const (
	ProfileDefault   = "default"
	ProfileThreeTier = "three-tier"
)

// DefaultRules returns the two-tier Critical/Warning profile. Lines that match
// neither tier are dropped.
func DefaultRules() *RuleSet {
	rs := &RuleSet{
		Name: ProfileDefault,
		Ignore: []string{
			"transceiver absent",
			"administratively down",
			"mgmt0",
			"default policer",
			"removed",
			"inserted",
			"vty",
			"last reset",
		},
		Tiers: []Tier{
			{
				Name:     "Critical",
				Triggers: []string{"-0-", "-1-", "-2-", "traceback", "crash", "reload", "stuck", "panic"},
			},
			{
				Name:     "Warning",
				Triggers: []string{"-3-", "-4-", "error", "warning", "threshold", "exceeded", "buffer", "tahusd", "fail"},
			},
		},
		Unmatched: UnmatchedDrop,
		Dedup:     DedupMnemonic,
	}
	rs.Normalize()
	return rs
}

// ThreeTierRules returns the default profile with unmatched lines kept in an
// explicit Info tier.
func ThreeTierRules() *RuleSet {
	rs := DefaultRules()
	rs.Name = ProfileThreeTier
	rs.Unmatched = UnmatchedBucket
	rs.CatchAllTier = DefaultCatchAllTier
	rs.Normalize()
	return rs
}

// Profile returns a built-in rule set by name.
func Profile(name string) (*RuleSet, error) {
	switch name {
	case "", ProfileDefault:
		return DefaultRules(), nil
	case ProfileThreeTier:
		return ThreeTierRules(), nil
	default:
		return nil, fmt.Errorf("rule profile %q: %w (supported: %s, %s)", name, models.ErrNotFound, ProfileDefault, ProfileThreeTier)
	}
}
