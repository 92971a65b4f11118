// Package api provides the REST API and dashboard for log triage.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fidde/cisco_log_triage/internal/classifier"
	"github.com/fidde/cisco_log_triage/internal/feed"
	"github.com/fidde/cisco_log_triage/internal/summarizer"
	"github.com/fidde/cisco_log_triage/pkg/models"
	"github.com/fidde/cisco_log_triage/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultMaxUploadBytes bounds classify request bodies.
const DefaultMaxUploadBytes = 20 << 20

// AIService runs the AI-backed features.
type AIService interface {
	AnalyzeLog(ctx context.Context, log, tier string) (*summarizer.Result, error)
	HardwareSpec(ctx context.Context, model, tier string) (*summarizer.Result, error)
	RecommendOS(ctx context.Context, family, model, currentVersion, tier string) (*summarizer.Result, error)
	Configured() map[string]bool
}

// UsageReporter exposes today's AI usage counters.
type UsageReporter interface {
	Snapshot(ctx context.Context) (models.UsageSnapshot, error)
}

// LiveFeed exposes the running classification of pushed logs.
type LiveFeed interface {
	Snapshot() feed.Snapshot
	Reset()
}

// Deps are the collaborators the server routes to. Nil AI, Usage or Live
// disables the matching endpoints.
type Deps struct {
	Classifier     *classifier.Classifier
	AI             AIService
	Usage          UsageReporter
	Live           LiveFeed
	MaxUploadBytes int64
	RequestTimeout time.Duration
	Version        string
}

// Server is the REST API server.
type Server struct {
	deps   Deps
	router *chi.Mux
	server *http.Server
}

// NewServer creates a new API server.
func NewServer(addr string, deps Deps) *Server {
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = 120 * time.Second
	}

	s := &Server{
		deps:   deps,
		router: chi.NewRouter(),
	}

	// Middleware
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(deps.RequestTimeout))

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.HandleHealth)

		r.Post("/classify", s.classify)
		r.Get("/rules", s.getRules)

		r.Post("/analyze", s.analyze)
		r.Post("/spec", s.hardwareSpec)
		r.Post("/os", s.recommendOS)
		r.Get("/usage", s.getUsage)

		r.Get("/live", s.getLive)
		r.Post("/live/reset", s.resetLive)
	})

	s.mountStatic()

	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the API server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// mountStatic serves the embedded dashboard under every non-API path.
func (s *Server) mountStatic() {
	dashboard, err := web.NewDashboard()
	if err != nil {
		slog.Warn("dashboard assets unavailable", "error", err)
		return
	}
	s.router.Method(http.MethodGet, "/*", dashboard)
}

// respondJSON writes a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondText writes a text response, as an attachment when fileName is set.
func (s *Server) respondText(w http.ResponseWriter, contentType, fileName, body string) {
	w.Header().Set("Content-Type", contentType)
	if fileName != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

// wantsDownload reports whether ?download= is truthy.
func wantsDownload(r *http.Request) bool {
	switch strings.ToLower(r.URL.Query().Get("download")) {
	case "1", "true", "yes":
		return true
	}
	return false
}
