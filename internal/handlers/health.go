package handlers

import (
	"net/http"

	"github.com/northwind-commerce/api/internal/platform/httpx"
)

// HealthHandlers exposes liveness and readiness probes.
type HealthHandlers struct {
	ready func() bool
}

// NewHealthHandlers constructs health handlers. With no readiness probe the
// service reports ready as soon as it serves traffic.
func NewHealthHandlers() *HealthHandlers {
	return &HealthHandlers{}
}

// WithReadiness sets the readiness probe.
func (h *HealthHandlers) WithReadiness(ready func() bool) *HealthHandlers {
	h.ready = ready
	return h
}

// Healthz reports process liveness.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports readiness to serve traffic.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil && !h.ready() {
		httpx.WriteError(r.Context(), w, httpx.NewError("not_ready", "service warming up", http.StatusServiceUnavailable))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
