package classifier

import (
	"testing"

	"github.com/fidde/cisco_log_triage/internal/rules"
)

func TestAccumulator_ResetForgetsDrainTemplates(t *testing.T) {
	rs := tierRules(nil, rules.Tier{Name: "Warning", Triggers: []string{"-3-"}})
	rs.Dedup = rules.DedupDrain
	acc := mustClassifier(t, rs).NewAccumulator()

	acc.Add("%LINK-3-UPDOWN: Interface Gi1/0/1, changed state to down")
	acc.Add("%LINK-3-UPDOWN: Interface Gi1/0/2, changed state to down")

	before := acc.Report().Tier("Warning")
	if len(before.Groups) != 1 || before.Groups[0].Count != 2 {
		t.Fatalf("Expected one group of 2 before reset, got %+v", before.Groups)
	}

	acc.Reset()
	acc.Add("%LINK-3-UPDOWN: Interface Gi1/0/9, changed state to down")

	after := acc.Report()
	if after.TotalLines != 1 {
		t.Errorf("TotalLines = %d, want 1", after.TotalLines)
	}
	warning := after.Tier("Warning")
	if len(warning.Groups) != 1 {
		t.Fatalf("Expected 1 group after reset, got %d", len(warning.Groups))
	}
	want := "%LINK-3-UPDOWN: Interface Gi1/0/9 changed state to down"
	if warning.Groups[0].Message != want {
		t.Errorf("Message = %q, want %q", warning.Groups[0].Message, want)
	}
}

func TestAccumulator_AddReportsTier(t *testing.T) {
	acc := mustClassifier(t, rules.DefaultRules()).NewAccumulator()

	tests := []struct {
		line     string
		wantTier string
		wantOK   bool
	}{
		{"%SYS-2-MALLOCFAIL: Memory allocation failed", "Critical", true},
		{"%LINK-3-UPDOWN: Interface Gi1/0/1, changed state to down", "Warning", true},
		{"%LINK-5-CHANGED: Interface Gi1/0/3, changed state to administratively down", "", false},
		{"%SYS-6-CLOCKUPDATE: clock updated", "", false},
		{"   ", "", false},
	}

	for _, tt := range tests {
		tier, ok := acc.Add(tt.line)
		if tier != tt.wantTier || ok != tt.wantOK {
			t.Errorf("Add(%q) = (%q, %v), want (%q, %v)", tt.line, tier, ok, tt.wantTier, tt.wantOK)
		}
	}

	report := acc.Report()
	if report.Ignored != 1 || report.Unmatched != 1 || report.IssuesFound != 2 {
		t.Errorf("Report counts = ignored %d unmatched %d issues %d, want 1/1/2",
			report.Ignored, report.Unmatched, report.IssuesFound)
	}
}
