package classifier

import (
	"strconv"
	"strings"

	"github.com/fidde/cisco_log_triage/internal/drain"
	"github.com/fidde/cisco_log_triage/internal/patterns"
	"github.com/fidde/cisco_log_triage/internal/rules"
)

// CanonicalMessage returns the dedup key of a stripped log line: the text from
// the first '%' (the start of the FACILITY-SEVERITY-MNEMONIC marker) to the
// end of the line, or the whole line when it has no '%'. Leading timestamps,
// sequence numbers and hostnames are therefore not part of the key.
func CanonicalMessage(line string) string {
	if i := strings.IndexByte(line, '%'); i >= 0 {
		return line[i:]
	}
	return line
}

// splitMnemonic separates "%FAC-SEV-MNEMONIC: " from the free-text part of a
// canonical message. head is empty when the message has no mnemonic.
func splitMnemonic(msg string) (head, body string) {
	if !strings.HasPrefix(msg, "%") {
		return "", msg
	}
	if i := strings.Index(msg, ": "); i >= 0 {
		return msg[:i+2], msg[i+2:]
	}
	return msg, ""
}

// keyFunc derives a group key and the message shown for the group. The drain
// strategy is stateful, so a new keyFunc is built whenever counts reset.
type keyFunc func(line string) (key, message string)

func newKeyFunc(strategy string, pats []patterns.CompiledPattern) keyFunc {
	switch strategy {
	case rules.DedupLine:
		return func(line string) (string, string) { return line, line }
	case rules.DedupTemplate:
		if pats == nil {
			pats = patterns.DefaultPatterns()
		}
		return func(line string) (string, string) {
			head, body := splitMnemonic(CanonicalMessage(line))
			msg := head + patterns.Apply(pats, body)
			return msg, msg
		}
	case rules.DedupDrain:
		miner := drain.New(drain.DefaultConfig())
		return func(line string) (string, string) {
			msg := CanonicalMessage(line)
			head, body := splitMnemonic(msg)
			c, ok := miner.Add(head, body)
			if !ok {
				return msg, msg
			}
			return head + "\x00" + strconv.Itoa(c.ID), head + c.Template()
		}
	default:
		return func(line string) (string, string) {
			msg := CanonicalMessage(line)
			return msg, msg
		}
	}
}
