package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fidde/cisco_log_triage/internal/usage"
	"github.com/fidde/cisco_log_triage/pkg/models"
)

// Download names offered for each feature's result.
const (
	FileRCA  = "Root_Cause_Analysis.txt"
	FileSpec = "Hardware_Spec.txt"
	FileOS   = "OS_Recommendation.txt"
)

// Factory builds a Summarizer for an API key and model tier.
type Factory func(ctx context.Context, apiKey, tier string) (Summarizer, error)

// GeminiFactory is the production Factory.
func GeminiFactory(ctx context.Context, apiKey, tier string) (Summarizer, error) {
	return NewGemini(ctx, apiKey, tier)
}

// Keys holds one API key per feature.
type Keys struct {
	Log  string
	Spec string
	OS   string
}

func (k Keys) forFeature(feature string) string {
	switch feature {
	case usage.FeatureLog:
		return k.Log
	case usage.FeatureSpec:
		return k.Spec
	case usage.FeatureOS:
		return k.OS
	}
	return ""
}

// Result is a completed AI answer.
type Result struct {
	Feature  string        `json:"feature"`
	Tier     string        `json:"tier"`
	Model    string        `json:"model"`
	Text     string        `json:"text"`
	FileName string        `json:"file_name"`
	Duration time.Duration `json:"duration_ns"`
}

// Service runs the three AI features and records usage for successful calls.
type Service struct {
	keys    Keys
	factory Factory
	counter *usage.Counter
	timeout time.Duration

	mu      sync.Mutex
	clients map[string]Summarizer
}

// NewService creates a Service. counter may be nil to skip usage recording.
func NewService(keys Keys, factory Factory, counter *usage.Counter, timeout time.Duration) *Service {
	if factory == nil {
		factory = GeminiFactory
	}
	return &Service{
		keys:    keys,
		factory: factory,
		counter: counter,
		timeout: timeout,
		clients: make(map[string]Summarizer),
	}
}

// Configured reports which features have an API key.
func (s *Service) Configured() map[string]bool {
	out := make(map[string]bool, len(usage.Features))
	for _, f := range usage.Features {
		out[f] = s.keys.forFeature(f) != ""
	}
	return out
}

// AnalyzeLog runs a root-cause analysis of log.
func (s *Service) AnalyzeLog(ctx context.Context, log, tier string) (*Result, error) {
	if strings.TrimSpace(log) == "" {
		return nil, fmt.Errorf("log text: %w", models.ErrEmptyInput)
	}
	return s.run(ctx, usage.FeatureLog, tier, RCAPrompt(log), FileRCA)
}

// HardwareSpec looks up the hardware spec of a device model.
func (s *Service) HardwareSpec(ctx context.Context, model, tier string) (*Result, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, fmt.Errorf("model name: %w", models.ErrEmptyInput)
	}
	return s.run(ctx, usage.FeatureSpec, tier, SpecPrompt(model), FileSpec)
}

// RecommendOS asks for recommended OS releases for a device.
func (s *Service) RecommendOS(ctx context.Context, family, model, currentVersion, tier string) (*Result, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, fmt.Errorf("model name: %w", models.ErrEmptyInput)
	}
	fam, err := NormalizeFamily(family)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, usage.FeatureOS, tier, OSPrompt(fam, model, strings.TrimSpace(currentVersion)), FileOS)
}

func (s *Service) run(ctx context.Context, feature, tier, prompt, fileName string) (*Result, error) {
	tier = NormalizeTier(tier)
	model, err := ModelID(tier)
	if err != nil {
		return nil, err
	}

	client, err := s.client(ctx, feature, tier)
	if err != nil {
		return nil, err
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := client.Summarize(callCtx, prompt)
	if err != nil {
		slog.Warn("AI call failed", "feature", feature, "tier", tier, "kind", Kind(err), "error", err)
		return nil, err
	}

	if s.counter != nil {
		if _, err := s.counter.Record(ctx, feature, tier); err != nil {
			slog.Error("failed to record usage", "feature", feature, "tier", tier, "error", err)
		}
	}

	return &Result{
		Feature:  feature,
		Tier:     tier,
		Model:    model,
		Text:     text,
		FileName: fileName,
		Duration: time.Since(start),
	}, nil
}

// client returns a cached Summarizer for feature and tier.
func (s *Service) client(ctx context.Context, feature, tier string) (Summarizer, error) {
	key := s.keys.forFeature(feature)
	if key == "" {
		return nil, fmt.Errorf("%s feature: %w", feature, ErrNoAPIKey)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cacheKey := usage.Key(feature, tier)
	if c, ok := s.clients[cacheKey]; ok {
		return c, nil
	}
	c, err := s.factory(ctx, key, tier)
	if err != nil {
		return nil, err
	}
	s.clients[cacheKey] = c
	return c, nil
}
