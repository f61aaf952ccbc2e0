// Package api wires the HTTP surface: the upload page, the JSON API, health
// and metrics.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/spherical/tabular-extractor/internal/api/handlers"
	"github.com/spherical/tabular-extractor/internal/observability"
)

// RouterConfig holds router settings.
type RouterConfig struct {
	RequestTimeout    time.Duration
	MaxConcurrentJobs int
	JobBacklog        int
	ServiceName       string
}

// NewRouter creates the router with all routes configured.
func NewRouter(logger *observability.Logger, metrics *observability.Metrics, extract *handlers.ExtractHandler, cfg RouterConfig) http.Handler {
	if cfg.MaxConcurrentJobs < 1 {
		cfg.MaxConcurrentJobs = 1
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "tabular-extractor"
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(logger, metrics))
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", handlers.Health(cfg.ServiceName))
	r.Handle("/metrics", metrics.Handler())

	r.Get("/", extract.Index)

	// One pipeline run per job slot; extra requests wait in the backlog.
	r.Group(func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
			r.Use(chimiddleware.ThrottleBacklog(cfg.MaxConcurrentJobs, cfg.JobBacklog, cfg.RequestTimeout))
		} else {
			r.Use(chimiddleware.Throttle(cfg.MaxConcurrentJobs))
		}

		r.Post("/extract", extract.Page)
		r.Post("/api/v1/extract", extract.API)
	})

	return r
}
