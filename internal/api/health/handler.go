// Package health provides health check endpoints for the API.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Checker defines the interface for health checkers.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// Handler manages health check endpoints.
type Handler struct {
	mu       sync.RWMutex
	checkers []Checker
	timeout  time.Duration
}

// NewHandler creates a new health handler.
func NewHandler() *Handler {
	return &Handler{
		checkers: make([]Checker, 0),
		timeout:  5 * time.Second,
	}
}

// RegisterChecker adds a dependency checker.
func (h *Handler) RegisterChecker(c Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers = append(h.checkers, c)
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health reports that the process is running.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready returns 200 only if every registered checker passes.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.mu.RLock()
	checkers := make([]Checker, len(h.checkers))
	copy(checkers, h.checkers)
	h.mu.RUnlock()

	resp := HealthResponse{
		Status: "ready",
		Checks: make(map[string]string, len(checkers)),
	}
	status := http.StatusOK

	for _, checker := range checkers {
		if err := checker.Check(ctx); err != nil {
			resp.Checks[checker.Name()] = err.Error()
			resp.Status = "not_ready"
			status = http.StatusServiceUnavailable
		} else {
			resp.Checks[checker.Name()] = "ok"
		}
	}

	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
