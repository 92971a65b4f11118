// Package summarizer talks to the generative-language API used for root-cause
// analysis, hardware spec lookups and OS recommendations.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fidde/cisco_log_triage/internal/usage"
)

// Summarizer turns a prompt into model text.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// Failure kinds. Failed calls are reported, never retried.
var (
	ErrAuth          = errors.New("AI service rejected the API key")
	ErrQuota         = errors.New("AI service quota exhausted")
	ErrModelNotFound = errors.New("AI model not found")
	ErrNoAPIKey      = errors.New("no API key configured")
	ErrEmptyResponse = errors.New("AI service returned no text")
	ErrInvalidOption = errors.New("invalid option")
)

// Kind returns a short machine-readable name for err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuth), errors.Is(err, ErrNoAPIKey):
		return "auth"
	case errors.Is(err, ErrQuota):
		return "quota"
	case errors.Is(err, ErrModelNotFound):
		return "model_not_found"
	case errors.Is(err, ErrEmptyResponse):
		return "empty_response"
	case errors.Is(err, ErrInvalidOption):
		return "invalid_option"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "upstream"
	}
}

// modelIDs maps tiers to Gemini model names.
var modelIDs = map[string]string{
	usage.TierLite:  "gemini-2.5-flash-lite",
	usage.TierFlash: "gemini-2.5-flash",
	usage.TierPro:   "gemini-3-flash-preview",
}

// DefaultTier is used when a request names no tier.
const DefaultTier = usage.TierLite

// ModelID resolves a tier (or empty for the default) to a model name.
func ModelID(tier string) (string, error) {
	if tier == "" {
		tier = DefaultTier
	}
	id, ok := modelIDs[strings.ToLower(tier)]
	if !ok {
		return "", fmt.Errorf("%w: unknown model tier %q (supported: lite, flash, pro)", ErrInvalidOption, tier)
	}
	return id, nil
}

// NormalizeTier lower-cases tier and applies the default.
func NormalizeTier(tier string) string {
	if tier == "" {
		return DefaultTier
	}
	return strings.ToLower(tier)
}
