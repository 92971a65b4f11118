package summarizer

import (
	"fmt"
	"strings"
)

// MaxLogChars caps how much log text is embedded into an analysis prompt.
const MaxLogChars = 50000

// OS families accepted by RecommendOS.
const (
	FamilyCatalyst = "Catalyst"
	FamilyNexus    = "Nexus"
)

// NormalizeFamily returns the canonical spelling of a device family.
func NormalizeFamily(family string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(family)) {
	case "", "catalyst":
		return FamilyCatalyst, nil
	case "nexus":
		return FamilyNexus, nil
	default:
		return "", fmt.Errorf("%w: unknown device family %q (supported: Catalyst, Nexus)", ErrInvalidOption, family)
	}
}

// RCAPrompt asks for a root-cause analysis of log text.
func RCAPrompt(log string) string {
	return fmt.Sprintf(`Analyze these Cisco device logs from the perspective of a Tier 3 engineer:
1. Root Cause
2. Impact
3. Resolution (include CLI commands)

[Logs]
%s
`, truncateRunes(log, MaxLogChars))
}

// SpecPrompt asks for a hardware spec table for a device model.
func SpecPrompt(model string) string {
	return fmt.Sprintf("Summarize the hardware specifications of the Cisco %s as a Markdown table.", model)
}

// OSPrompt asks for a recommended OS release table.
func OSPrompt(family, model, currentVersion string) string {
	prompt := fmt.Sprintf("Recommend OS releases (MD / Gold Star) for the Cisco %s %s as a Markdown table.", family, model)
	if currentVersion != "" {
		prompt += "\nCurrent version: " + currentVersion
	}
	return prompt
}

// truncateRunes cuts s to at most n characters without splitting a rune.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
