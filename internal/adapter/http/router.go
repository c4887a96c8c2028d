package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/propfolio/backoffice/internal/adapter/http/handler"
	"github.com/propfolio/backoffice/internal/adapter/http/middleware"
	"github.com/propfolio/backoffice/internal/infrastructure/auth"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	ImportHandler    *handler.ImportHandler
	StatementHandler *handler.StatementHandler
	HealthHandler    *handler.HealthHandler
	JWTManager       *auth.JWTManager
	InternalToken    string
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	// Health and telemetry endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// Dispatcher-facing delivery endpoint. Guarded by a shared secret, not
	// by end-user auth: the dispatcher acts on behalf of the job's recorded
	// submitter.
	r.Route("/api/vendor-import", func(r chi.Router) {
		r.Use(middleware.InternalAuth(cfg.InternalToken))
		r.Post("/process", cfg.ImportHandler.Process)
	})

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.JWTManager))

		r.Route("/vendor-import", func(r chi.Router) {
			r.Post("/", cfg.ImportHandler.Submit)
			r.Get("/jobs/{id}", cfg.ImportHandler.Status)
		})

		r.Route("/statements", func(r chi.Router) {
			r.Get("/{id}", cfg.StatementHandler.Get)
			r.Post("/{id}/recalculate", cfg.StatementHandler.Recalculate)
		})
	})

	return r
}
