// Package patterns holds the regex placeholders used to turn a Cisco log
// message into a template, so messages that differ only in interface names,
// addresses or counters collapse into one issue group.
package patterns

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pattern is one placeholder rule as written in patterns.yaml.
type Pattern struct {
	Name        string `yaml:"name"`
	Regex       string `yaml:"regex"`
	Placeholder string `yaml:"placeholder"`
	Description string `yaml:"description,omitempty"`
}

type file struct {
	Patterns []Pattern `yaml:"patterns"`
}

// CompiledPattern is a Pattern ready to apply.
type CompiledPattern struct {
	Name        string
	Regex       *regexp.Regexp
	Placeholder string
	Description string
}

// LoadPatterns reads and compiles a patterns file. A missing file is
// reported with an error wrapping fs.ErrNotExist.
func LoadPatterns(path string) ([]CompiledPattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading patterns file: %w", err)
	}
	return Parse(data)
}

// Parse compiles patterns from YAML. Order is kept: earlier patterns mask
// text before later ones see it.
func Parse(data []byte) ([]CompiledPattern, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing patterns YAML: %w", err)
	}
	if len(f.Patterns) == 0 {
		return nil, errors.New("patterns file defines no patterns")
	}

	seen := make(map[string]bool, len(f.Patterns))
	compiled := make([]CompiledPattern, 0, len(f.Patterns))
	for i, p := range f.Patterns {
		switch {
		case p.Name == "":
			return nil, fmt.Errorf("pattern %d: name is required", i)
		case seen[p.Name]:
			return nil, fmt.Errorf("pattern %s: duplicate name", p.Name)
		case p.Regex == "" || p.Placeholder == "":
			return nil, fmt.Errorf("pattern %s: regex and placeholder are required", p.Name)
		}
		seen[p.Name] = true

		re, err := regexp.Compile(p.Regex)
		if err != nil {
			return nil, fmt.Errorf("compiling pattern %s: %w", p.Name, err)
		}
		compiled = append(compiled, CompiledPattern{
			Name:        p.Name,
			Regex:       re,
			Placeholder: p.Placeholder,
			Description: p.Description,
		})
	}
	return compiled, nil
}

// Apply runs every pattern over s in order and collapses runs of whitespace.
func Apply(pats []CompiledPattern, s string) string {
	for _, p := range pats {
		s = p.Regex.ReplaceAllString(s, p.Placeholder)
	}
	return strings.Join(strings.Fields(s), " ")
}

// DefaultPatterns is used when no patterns file is present. Timestamps and
// addresses come before bare numbers so their digits are not masked first.
func DefaultPatterns() []CompiledPattern {
	return []CompiledPattern{
		{
			Name:        "syslog_timestamp",
			Regex:       regexp.MustCompile(`\*?\b(?i:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)\s+\d{1,2}\s+(?:\d{4}\s+)?\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:\s+[A-Z]{3,4}\b)?`),
			Placeholder: "<TIMESTAMP>",
			Description: "Cisco syslog timestamps (service timestamps log datetime)",
		},
		{
			Name:        "iso_timestamp",
			Regex:       regexp.MustCompile(`\d{4}[-/]\d{2}[-/]\d{2}[T ]\d{2}:\d{2}:\d{2}(?:\.\d+)?Z?`),
			Placeholder: "<TIMESTAMP>",
			Description: "ISO-like timestamps",
		},
		{
			Name:        "interface",
			Regex:       regexp.MustCompile(`(?i)\b(?:(?:Ten|TwentyFive|Forty|Hundred)?Gig(?:abit)?E(?:thernet)?|FastEthernet|Ethernet|Port-channel|Loopback|Tunnel|Vlan|Gi|Te|Fa|Fo|Hu|Twe|Eth|Et|Po|Lo|Tu|Vl)\d+(?:/\d+)*(?:\.\d+)?\b`),
			Placeholder: "<INTF>",
			Description: "Interface names, long and abbreviated",
		},
		{
			Name:        "mac",
			Regex:       regexp.MustCompile(`\b[0-9a-fA-F]{4}\.[0-9a-fA-F]{4}\.[0-9a-fA-F]{4}\b|\b(?:[0-9a-fA-F]{2}:){5}[0-9a-fA-F]{2}\b`),
			Placeholder: "<MAC>",
			Description: "MAC addresses in Cisco dotted or colon notation",
		},
		{
			Name:        "ip",
			Regex:       regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}(?:/\d{1,2})?\b`),
			Placeholder: "<IP>",
			Description: "IPv4 addresses with optional prefix length",
		},
		{
			Name:        "hex",
			Regex:       regexp.MustCompile(`\b0x[0-9a-fA-F]+\b`),
			Placeholder: "<HEX>",
			Description: "Hexadecimal values such as traceback addresses",
		},
		{
			Name:        "number",
			Regex:       regexp.MustCompile(`\b\d+\b`),
			Placeholder: "<NUM>",
			Description: "Any numeric value",
		},
	}
}
