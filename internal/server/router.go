package server

import (
	"net/http"

	"go-marketplace/internal/service"
	"go-marketplace/pkg/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter creates a new Chi router with all middleware and routes
func NewRouter(
	listings *service.ListingService,
	categories *service.CategoryService,
	health *service.HealthService,
	m *metrics.Metrics,
	logger *zap.Logger,
	rateLimiter *RateLimiter,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware chain
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(logger))
	r.Use(MetricsMiddleware(m))
	r.Use(middleware.Recoverer)

	// Probes and scrapes are not rate limited
	health.Routes(r)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Group(func(r chi.Router) {
		r.Use(rateLimiter.Middleware)
		listings.Routes(r)
		categories.Routes(r)
	})

	return r
}
