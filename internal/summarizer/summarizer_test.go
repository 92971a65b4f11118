package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"google.golang.org/genai"
)

func TestModelID(t *testing.T) {
	tests := []struct {
		tier    string
		want    string
		wantErr bool
	}{
		{"", "gemini-2.5-flash-lite", false},
		{"lite", "gemini-2.5-flash-lite", false},
		{"flash", "gemini-2.5-flash", false},
		{"PRO", "gemini-3-flash-preview", false},
		{"ultra", "", true},
	}
	for _, tt := range tests {
		got, err := ModelID(tt.tier)
		if (err != nil) != tt.wantErr {
			t.Errorf("ModelID(%q) error = %v, wantErr %v", tt.tier, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ModelID(%q) = %q, want %q", tt.tier, got, tt.want)
		}
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
		kind string
	}{
		{"unauthorized", genai.APIError{Code: 401, Status: "UNAUTHENTICATED"}, ErrAuth, "auth"},
		{"invalid key message", genai.APIError{Code: 400, Message: "API key not valid. Please pass a valid API key."}, ErrAuth, "auth"},
		{"quota", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}, ErrQuota, "quota"},
		{"quota pointer", &genai.APIError{Code: 429}, ErrQuota, "quota"},
		{"not found", genai.APIError{Code: 404, Status: "NOT_FOUND"}, ErrModelNotFound, "model_not_found"},
		{"wrapped quota text", fmt.Errorf("rpc: %w", errors.New("Quota exceeded for metric")), ErrQuota, "quota"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("classifyError() = %v, want %v", got, tt.want)
			}
			if Kind(got) != tt.kind {
				t.Errorf("Kind() = %q, want %q", Kind(got), tt.kind)
			}
		})
	}

	other := classifyError(errors.New("connection reset"))
	if Kind(other) != "upstream" {
		t.Errorf("Expected upstream kind, got %q", Kind(other))
	}
	if Kind(fmt.Errorf("x: %w", context.DeadlineExceeded)) != "timeout" {
		t.Error("Expected timeout kind")
	}
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: "## Root Cause\n"},
				{Text: "Power supply failure"},
			}},
		}},
	}
	if got := responseText(resp); got != "## Root Cause\nPower supply failure" {
		t.Errorf("responseText() = %q", got)
	}
	if got := responseText(&genai.GenerateContentResponse{}); got != "" {
		t.Errorf("Expected empty text, got %q", got)
	}
	if got := responseText(nil); got != "" {
		t.Errorf("Expected empty text for nil, got %q", got)
	}
}

func TestNewGemini_NoKey(t *testing.T) {
	if _, err := NewGemini(context.Background(), "", "lite"); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("Expected ErrNoAPIKey, got %v", err)
	}
}

func TestRCAPromptTruncates(t *testing.T) {
	log := strings.Repeat("장", MaxLogChars+10)
	prompt := RCAPrompt(log)
	if !utf8.ValidString(prompt) {
		t.Fatal("Prompt must stay valid UTF-8")
	}
	if n := strings.Count(prompt, "장"); n != MaxLogChars {
		t.Errorf("Expected %d log characters, got %d", MaxLogChars, n)
	}

	short := RCAPrompt("%SYS-2-MALLOCFAIL")
	if !strings.Contains(short, "Root Cause") || !strings.Contains(short, "%SYS-2-MALLOCFAIL") {
		t.Errorf("Unexpected prompt: %q", short)
	}
}

func TestNormalizeFamily(t *testing.T) {
	for in, want := range map[string]string{"": "Catalyst", "catalyst": "Catalyst", "NEXUS": "Nexus"} {
		got, err := NormalizeFamily(in)
		if err != nil || got != want {
			t.Errorf("NormalizeFamily(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := NormalizeFamily("ios-xr"); err == nil {
		t.Error("Expected error for unknown family")
	}
}
