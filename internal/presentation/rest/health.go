package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	pgpkg "github.com/gnavadev/fraud-watch/pkg/postgres"
)

const readinessTimeout = 2 * time.Second

// HealthHandler provides HTTP health check endpoints.
type HealthHandler struct {
	db        pgpkg.Pinger
	logger    *slog.Logger
	startTime time.Time
	service   string
}

// NewHealthHandler creates a new health check handler. db may be nil when
// the process runs without a database.
func NewHealthHandler(service string, db pgpkg.Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		logger:    logger,
		startTime: time.Now(),
		service:   service,
	}
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Uptime  string `json:"uptime"`
}

// ReadinessResponse is the JSON response for readiness checks.
type ReadinessResponse struct {
	Checks  map[string]string `json:"checks"`
	Status  string            `json:"status"`
	Service string            `json:"service"`
}

// RegisterRoutes registers health endpoints on the provided ServeMux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

// Healthz handles liveness probe requests.
func (h *HealthHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.service,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Readyz reports ready only while the database answers a ping.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	ready := true

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		if err := pgpkg.HealthCheck(ctx, h.db); err != nil {
			h.logger.Warn("readiness check failed", "check", "database", "error", err)
			checks["database"] = "unavailable"
			ready = false
		} else {
			checks["database"] = "ok"
		}
	}

	resp := ReadinessResponse{Status: "ready", Service: h.service, Checks: checks}
	status := http.StatusOK
	if !ready {
		resp.Status = "not ready"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
