package api

import (
	"context"
	"net/http"
	"time"
)

// healthCheckTimeout bounds the transport check behind /health.
const healthCheckTimeout = 3 * time.Second

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Transport string `json:"transport"`
	Error     string `json:"error,omitempty"`
}

// handleIndex answers the liveness probe used by the front-end.
func handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response; connection may be closed
	w.Write([]byte(welcomeText))
}

// handleHealth reports "ok", or "degraded" when the transport check fails.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "ok",
		Version:   s.version,
		Transport: s.transport,
	}

	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := s.health.HealthCheck(ctx); err != nil {
			resp.Status = "degraded"
			resp.Error = err.Error()
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
