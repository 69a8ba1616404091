package rest

import (
	"log/slog"
	"net/http"
)

// RouterConfig assembles the HTTP surface.
type RouterConfig struct {
	Health      *HealthHandler
	Providers   *ProviderHandler
	Metrics     http.Handler
	Logger      *slog.Logger
	CORSOrigins []string
}

// NewRouter registers every route and wraps the mux in the CORS and logging
// middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Health != nil {
		cfg.Health.RegisterRoutes(mux)
	}
	if cfg.Providers != nil {
		cfg.Providers.RegisterRoutes(mux)
	}
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	var handler http.Handler = mux
	handler = CORSMiddleware(cfg.CORSOrigins)(handler)
	handler = LoggingMiddleware(cfg.Logger)(handler)
	return handler
}
