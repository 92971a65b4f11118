package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fidde/cisco_log_triage/internal/classifier"
	"github.com/fidde/cisco_log_triage/internal/rules"
)

// RulesResponse describes the active rule set.
type RulesResponse struct {
	Rules     *rules.RuleSet `json:"rules"`
	TierNames []string       `json:"tier_names"`
	Warnings  []string       `json:"warnings,omitempty"`
	Profiles  []string       `json:"profiles"`
}

// getRules returns the active rule set, as YAML with ?format=yaml.
// GET /api/v1/rules
func (s *Server) getRules(w http.ResponseWriter, r *http.Request) {
	c := s.deps.Classifier
	if c == nil {
		s.respondError(w, http.StatusServiceUnavailable, "no rule set loaded")
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "yaml") {
		data, err := c.Rules().Marshal()
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.respondText(w, "application/yaml", "", string(data))
		return
	}

	s.respondJSON(w, http.StatusOK, RulesResponse{
		Rules:     c.Rules(),
		TierNames: c.Rules().TierNames(),
		Warnings:  c.Warnings(),
		Profiles:  []string{rules.ProfileDefault, rules.ProfileThreeTier},
	})
}

// getUsage returns today's AI usage counters.
// GET /api/v1/usage
func (s *Server) getUsage(w http.ResponseWriter, r *http.Request) {
	if s.deps.Usage == nil {
		s.respondError(w, http.StatusServiceUnavailable, "usage tracking is not configured")
		return
	}

	snap, err := s.deps.Usage.Snapshot(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "Failed to read usage counters")
		return
	}
	s.respondJSON(w, http.StatusOK, snap)
}

// getLive returns the running classification of pushed logs.
// GET /api/v1/live?format=json|markdown
func (s *Server) getLive(w http.ResponseWriter, r *http.Request) {
	if s.deps.Live == nil {
		s.respondError(w, http.StatusServiceUnavailable, "live feed is not enabled")
		return
	}

	snap := s.deps.Live.Snapshot()
	if strings.EqualFold(r.URL.Query().Get("format"), "markdown") {
		header := fmt.Sprintf("_%d batches from about %d devices since %s_\n\n",
			snap.Batches, snap.Sources, snap.Since.UTC().Format(time.RFC3339))
		s.respondText(w, "text/markdown; charset=utf-8", "", header+classifier.Markdown(snap.Report))
		return
	}
	s.respondJSON(w, http.StatusOK, snap)
}

// resetLive clears the live classification.
// POST /api/v1/live/reset
func (s *Server) resetLive(w http.ResponseWriter, r *http.Request) {
	if s.deps.Live == nil {
		s.respondError(w, http.StatusServiceUnavailable, "live feed is not enabled")
		return
	}

	s.deps.Live.Reset()
	s.respondJSON(w, http.StatusOK, map[string]string{
		"message": "Live feed cleared",
	})
}
