package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"vocabdrill/internal/logger"
)

// Pinger checks that storage is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports startup progress and storage reachability
type HealthHandler struct {
	db  Pinger
	log *logger.Logger

	mu      sync.RWMutex
	ready   bool
	current string
}

// NewHealthHandler creates a health handler that is not yet ready
func NewHealthHandler(db Pinger, log *logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, log: log, current: "initializing"}
}

// SetStep records the startup step in progress
func (h *HealthHandler) SetStep(step string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = step
}

// MarkReady marks the server as fully initialized
func (h *HealthHandler) MarkReady() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = true
	h.current = "ready"
}

type healthResponse struct {
	Status   string `json:"status"`
	Step     string `json:"step"`
	Database string `json:"database"`
}

// Healthz returns 200 when the server is ready and storage answers a ping
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	ready, step := h.ready, h.current
	h.mu.RUnlock()

	resp := healthResponse{Status: "ok", Step: step, Database: "ok"}
	status := http.StatusOK

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		h.log.Warn("health check ping failed", "error", err)
		resp.Database = "unavailable"
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	if !ready {
		resp.Status = "starting"
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, resp)
}
