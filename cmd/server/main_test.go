package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fidde/cisco_log_triage/pkg/models"
)

const cliLog = `*Oct 19 08:00:01: %LINK-3-UPDOWN: Interface Gi1/0/1, changed state to down
*Oct 19 08:00:02: %SYS-2-MALLOCFAIL: Memory allocation of 65536 bytes failed
*Oct 19 08:00:03: %LINK-3-UPDOWN: Interface Gi1/0/1, changed state to down
*Oct 19 08:00:04: %SYS-5-CONFIG_I: Configured from console by admin
`

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--rules", filepath.Join(t.TempDir(), "missing.yaml")))
	err := cmd.Execute()
	return out.String(), err
}

func TestClassifyCmd_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "switch.log")
	if err := os.WriteFile(path, []byte(cliLog), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := runCLI(t, "", "classify", path, "--format", "text")
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	if !strings.Contains(out, "status=issues_found") || !strings.Contains(out, "[Warning] 2") {
		t.Errorf("Unexpected output:\n%s", out)
	}
}

func TestClassifyCmd_StdinJSON(t *testing.T) {
	out, err := runCLI(t, cliLog, "classify", "-", "-f", "json", "--profile", "three-tier")
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}

	var report models.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if info := report.Tier("Info"); info == nil || info.Total != 1 {
		t.Errorf("Expected one Info line, got %+v", report.Tiers)
	}
	if report.IssuesFound != 4 {
		t.Errorf("Expected 4 issue lines, got %d", report.IssuesFound)
	}
}

func TestClassifyCmd_StreamsLongAndCP949Lines(t *testing.T) {
	var in strings.Builder
	in.WriteString("*Oct 19 08:00:01: %SYS-2-MALLOCFAIL: " + strings.Repeat("x", 2<<20) + "\n")
	in.Write([]byte{0xC0, 0xE5, 0xBE, 0xD6})
	in.WriteString(" %LINK-3-UPDOWN: Interface Gi1/0/1, changed state to down\n")

	out, err := runCLI(t, in.String(), "classify", "-f", "json")
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}

	var report models.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if report.IssuesFound != 2 {
		t.Errorf("Expected 2 issue lines, got %d", report.IssuesFound)
	}
	warn := report.Tier("Warning")
	if warn == nil || len(warn.Groups) != 1 || !strings.HasPrefix(warn.Groups[0].Example, "장애 ") {
		t.Errorf("Expected the CP949 line decoded, got %+v", warn)
	}
}

func TestClassifyCmd_Errors(t *testing.T) {
	if _, err := runCLI(t, cliLog, "classify", "-f", "xml"); err == nil {
		t.Error("Expected error for unknown format")
	}
	if _, err := runCLI(t, "", "classify", filepath.Join(t.TempDir(), "nope.log")); err == nil {
		t.Error("Expected error for missing file")
	}
	if _, err := runCLI(t, "", "rules", "--profile", "five-tier"); err == nil {
		t.Error("Expected error for unknown profile")
	}
}

func TestRulesCmd(t *testing.T) {
	out, err := runCLI(t, "", "rules")
	if err != nil {
		t.Fatalf("rules failed: %v", err)
	}
	for _, want := range []string{"name: default", "tiers:", "traceback", "unmatched: drop"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}
