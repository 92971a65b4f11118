package classifier

import (
	"fmt"
	"strings"

	"github.com/fidde/cisco_log_triage/pkg/models"
)

// DefaultDigestChars bounds PromptDigest output when no limit is given.
const DefaultDigestChars = 50000

// Markdown renders a report the way the dashboard shows it and the download
// button saves it: a heading per tier, one bullet per issue group.
func Markdown(r models.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "### Log classification (%d lines scanned, %d issue lines in %d groups)\n",
		r.TotalLines, r.IssuesFound, r.UniqueIssues())
	if r.Status == models.StatusUnconfigured {
		b.WriteString("\n> No trigger substrings are configured; nothing could be classified.\n")
	}

	for _, t := range r.Tiers {
		fmt.Fprintf(&b, "\n#### %s (%d)\n", t.Name, t.Total)
		if len(t.Groups) == 0 {
			b.WriteString("- none found (clean)\n")
			continue
		}
		for _, g := range t.Groups {
			if g.Count > 1 {
				fmt.Fprintf(&b, "- %s (x%d)\n", codeSpan(g.Message), g.Count)
			} else {
				fmt.Fprintf(&b, "- %s\n", codeSpan(g.Message))
			}
		}
	}

	if r.Ignored > 0 || r.Unmatched > 0 {
		fmt.Fprintf(&b, "\n_%d lines ignored as known noise, %d lines matched no tier._\n", r.Ignored, r.Unmatched)
	}

	return b.String()
}

// codeSpan wraps s in a Markdown code span whose fence is longer than any
// backtick run inside s. Messages starting or ending with a backtick are
// padded with one space, which renderers strip again.
func codeSpan(s string) string {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}

	fence := strings.Repeat("`", longest+1)
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		s = " " + s + " "
	}
	return fence + s + fence
}

// PlainText renders a report without markup.
func PlainText(r models.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "lines=%d processed=%d issues=%d groups=%d ignored=%d unmatched=%d status=%s\n",
		r.TotalLines, r.LinesProcessed, r.IssuesFound, r.UniqueIssues(), r.Ignored, r.Unmatched, r.Status)
	for _, t := range r.Tiers {
		fmt.Fprintf(&b, "\n[%s] %d\n", t.Name, t.Total)
		for _, g := range t.Groups {
			fmt.Fprintf(&b, "%6d  %s\n", g.Count, g.Message)
		}
	}

	return b.String()
}

// PromptDigest renders a compact "[Tier] xN message" listing for embedding in
// an AI prompt. Output is cut at maxChars (DefaultDigestChars when <= 0) on a
// line boundary and the number of omitted groups is noted.
func PromptDigest(r models.Report, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultDigestChars
	}

	var b strings.Builder
	omitted := 0
	for _, t := range r.Tiers {
		for _, g := range t.Groups {
			if omitted > 0 {
				omitted++
				continue
			}
			line := fmt.Sprintf("[%s] x%d %s\n", t.Name, g.Count, g.Message)
			if b.Len()+len(line) > maxChars {
				omitted++
				continue
			}
			b.WriteString(line)
		}
	}

	if omitted > 0 {
		fmt.Fprintf(&b, "... (%d more groups omitted)\n", omitted)
	}
	return b.String()
}
