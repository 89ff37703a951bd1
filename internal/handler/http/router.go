package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/searchapp/internal/service"
	"github.com/utafrali/searchapp/pkg/health"
	"github.com/utafrali/searchapp/pkg/middleware"
)

// NewRouter creates a chi router with all query server routes registered.
func NewRouter(
	searchService *service.SearchService,
	healthHandler *health.Handler,
	httpMetrics *middleware.HTTPMetrics,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.Tracing("search"))
	r.Use(middleware.RequestLogging(logger))
	r.Use(httpMetrics.Middleware)

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	searchHandler := NewSearchHandler(searchService, logger)
	r.Get("/api/v1/search", searchHandler.Search)

	return r
}
