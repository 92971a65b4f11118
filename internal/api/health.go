package api

import (
	"net/http"
	"runtime"
	"time"
)

var startTime = time.Now()

// HealthResponse reports what the server is running with.
type HealthResponse struct {
	Status    string          `json:"status"`
	Version   string          `json:"version,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Uptime    string          `json:"uptime"`
	RuleSet   string          `json:"rule_set,omitempty"`
	Tiers     []string        `json:"tiers,omitempty"`
	AI        map[string]bool `json:"ai_configured,omitempty"`
	Live      bool            `json:"live_feed"`
	HeapMB    uint64          `json:"heap_mb"`
	NumGC     uint32          `json:"num_gc"`
}

// HandleHealth reports liveness plus the active rule set and which AI
// features have keys.
// GET /api/v1/health
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	resp := HealthResponse{
		Status:    "ok",
		Version:   s.deps.Version,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(startTime).Round(time.Second).String(),
		Live:      s.deps.Live != nil,
		HeapMB:    mem.HeapAlloc >> 20,
		NumGC:     mem.NumGC,
	}
	if s.deps.Classifier != nil {
		rs := s.deps.Classifier.Rules()
		resp.RuleSet = rs.Name
		resp.Tiers = rs.TierNames()
	}
	if s.deps.AI != nil {
		resp.AI = s.deps.AI.Configured()
	}

	s.respondJSON(w, http.StatusOK, resp)
}
