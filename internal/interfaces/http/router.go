// Package http wires the REST API: routing, middleware, and the server
// lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/aether-intel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/aether-intel/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/aether-intel/internal/interfaces/http/handlers"
	"github.com/turtacn/aether-intel/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware dependencies for
// the complete route tree.
type RouterConfig struct {
	SearchHandler   *handlers.SearchHandler
	AnalysisHandler *handlers.AnalysisHandler
	KeywordsHandler *handlers.KeywordsHandler
	HealthHandler   *handlers.HealthHandler

	Logger  logging.Logger
	Metrics *prometheus.AppMetrics

	// MetricsHandler serves GET /metrics when set.
	MetricsHandler http.Handler

	// CORS is applied when it allows at least one origin.
	CORS middleware.CORSConfig

	// RateLimiter guards the API group when set.
	RateLimiter     *middleware.TokenBucketLimiter
	RateLimitConfig middleware.RateLimitConfig
}

// NewRouter constructs the HTTP route tree: global middleware, public
// probe endpoints, and the /api/v1 group.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)

	if len(cfg.CORS.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORS))
	}
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, middleware.DefaultLoggingConfig()))
	}
	if cfg.Metrics != nil {
		r.Use(middleware.HTTPMetrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter, cfg.RateLimitConfig))
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.SearchHandler != nil {
			api.Post("/search", cfg.SearchHandler.Search)
		}
		if cfg.AnalysisHandler != nil {
			api.Post("/status/analyze", cfg.AnalysisHandler.AnalyzeStatus)
			api.Post("/score", cfg.AnalysisHandler.ScoreRecord)
		}
		if cfg.KeywordsHandler != nil {
			api.Get("/keywords", cfg.KeywordsHandler.List)
			api.Get("/keywords/{lang}", cfg.KeywordsHandler.Get)
		}
	})

	return r
}
