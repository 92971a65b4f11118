package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fidde/cisco_log_triage/internal/classifier"
	"github.com/fidde/cisco_log_triage/internal/summarizer"
	"github.com/fidde/cisco_log_triage/pkg/models"
)

// AnalyzeRequest asks for a root-cause analysis. With Digest set the log is
// classified first and only the grouped issues are sent.
type AnalyzeRequest struct {
	Log    string `json:"log"`
	Model  string `json:"model"`
	Digest bool   `json:"digest"`
}

// SpecRequest asks for a hardware spec table.
type SpecRequest struct {
	ModelName string `json:"model_name"`
	Model     string `json:"model"`
}

// OSRequest asks for an OS release recommendation.
type OSRequest struct {
	Family    string `json:"family"`
	ModelName string `json:"model_name"`
	Version   string `json:"version"`
	Model     string `json:"model"`
}

// analyze runs a root-cause analysis.
// POST /api/v1/analyze
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !s.decodeAIRequest(w, r, &req) {
		return
	}

	log := req.Log
	if req.Digest && s.deps.Classifier != nil {
		report := s.deps.Classifier.Classify(req.Log)
		if report.HasIssues() {
			log = classifier.PromptDigest(report, classifier.DefaultDigestChars)
		}
	}

	s.runAI(w, r, func(ctx context.Context) (*summarizer.Result, error) {
		return s.deps.AI.AnalyzeLog(ctx, log, req.Model)
	})
}

// hardwareSpec looks up a device's hardware spec.
// POST /api/v1/spec
func (s *Server) hardwareSpec(w http.ResponseWriter, r *http.Request) {
	var req SpecRequest
	if !s.decodeAIRequest(w, r, &req) {
		return
	}
	s.runAI(w, r, func(ctx context.Context) (*summarizer.Result, error) {
		return s.deps.AI.HardwareSpec(ctx, req.ModelName, req.Model)
	})
}

// recommendOS recommends OS releases for a device.
// POST /api/v1/os
func (s *Server) recommendOS(w http.ResponseWriter, r *http.Request) {
	var req OSRequest
	if !s.decodeAIRequest(w, r, &req) {
		return
	}
	s.runAI(w, r, func(ctx context.Context) (*summarizer.Result, error) {
		return s.deps.AI.RecommendOS(ctx, req.Family, req.ModelName, req.Version, req.Model)
	})
}

func (s *Server) decodeAIRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if s.deps.AI == nil {
		s.respondError(w, http.StatusServiceUnavailable, "AI features are not configured")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.deps.MaxUploadBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (s *Server) runAI(w http.ResponseWriter, r *http.Request, call func(ctx context.Context) (*summarizer.Result, error)) {
	res, err := call(r.Context())
	if err != nil {
		s.respondJSON(w, aiErrorStatus(err), map[string]string{
			"error": err.Error(),
			"kind":  summarizer.Kind(err),
		})
		return
	}

	if wantsDownload(r) {
		s.respondText(w, "text/plain; charset=utf-8", res.FileName, res.Text)
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

// aiErrorStatus maps AI failures to HTTP status codes.
func aiErrorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrEmptyInput), errors.Is(err, summarizer.ErrInvalidOption):
		return http.StatusBadRequest
	case errors.Is(err, summarizer.ErrNoAPIKey):
		return http.StatusServiceUnavailable
	case errors.Is(err, summarizer.ErrQuota):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
