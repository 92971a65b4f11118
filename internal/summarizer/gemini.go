package summarizer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// Gemini is a Summarizer backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini client for apiKey using the model of tier.
func NewGemini(ctx context.Context, apiKey, tier string) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	model, err := ModelID(tier)
	if err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

// Model returns the model name requests are sent to.
func (g *Gemini) Model() string {
	return g.model
}

// Summarize sends prompt as a single user turn and returns the concatenated text parts.
func (g *Gemini) Summarize(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", classifyError(err)
	}

	text := responseText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String())
}

// classifyError maps API failures onto the package sentinels.
func classifyError(err error) error {
	code, status := 0, ""

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code, status = apiErr.Code, apiErr.Status
	case errors.As(err, &apiErrPtr):
		code, status = apiErrPtr.Code, apiErrPtr.Status
	}

	msg := strings.ToLower(err.Error())
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden,
		status == "PERMISSION_DENIED", status == "UNAUTHENTICATED",
		strings.Contains(msg, "api key not valid"), strings.Contains(msg, "api_key_invalid"):
		return fmt.Errorf("%w: %v", ErrAuth, err)
	case code == http.StatusTooManyRequests, status == "RESOURCE_EXHAUSTED",
		strings.Contains(msg, "quota"):
		return fmt.Errorf("%w: %v", ErrQuota, err)
	case code == http.StatusNotFound, status == "NOT_FOUND":
		return fmt.Errorf("%w: %v", ErrModelNotFound, err)
	default:
		return fmt.Errorf("calling Gemini: %w", err)
	}
}
