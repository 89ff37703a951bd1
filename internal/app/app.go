package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/utafrali/searchapp/internal/config"
	"github.com/utafrali/searchapp/internal/engine"
	handler "github.com/utafrali/searchapp/internal/handler/http"
	"github.com/utafrali/searchapp/internal/metrics"
	"github.com/utafrali/searchapp/internal/service"
	"github.com/utafrali/searchapp/pkg/health"
	"github.com/utafrali/searchapp/pkg/middleware"
)

// App wires together all dependencies and runs the query server.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	httpServer      *http.Server
	shutdownTracing func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
// With the memory engine the index starts empty, so it is filled from the
// configured catalog before the server accepts requests.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	shutdownTracing, err := initTracing(ctx, cfg, "search")
	if err != nil {
		return nil, err
	}

	eng, esEng, err := newEngine(cfg, logger)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()

	if cfg.SearchEngine == config.EngineMemory {
		if err := seedMemoryEngine(ctx, cfg, eng, registry, logger); err != nil {
			return nil, err
		}
	}

	searchService := service.NewSearchService(eng, cfg.MaxResults, metrics.NewSearch(registry, logger))

	// Health checks.
	healthHandler := health.NewHandler()
	if esEng != nil {
		healthHandler.Register("elasticsearch", esEng.Ping)
	}
	healthHandler.Register("index", indexCheck(eng, cfg.Elasticsearch.Index))

	// HTTP router.
	router := handler.NewRouter(
		searchService,
		healthHandler,
		middleware.NewHTTPMetrics(registry, "search"),
		prometheus.Gatherers{registry, prometheus.DefaultGatherer},
		logger,
	)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		httpServer:      httpServer,
		shutdownTracing: shutdownTracing,
	}, nil
}

// Handler returns the HTTP handler served by the app.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server, blocking until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.shutdownTracing(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// indexCheck fails readiness while the index is missing, so a server started
// before the indexer reports not ready instead of answering empty lists.
func indexCheck(eng engine.SearchEngine, indexName string) health.Checker {
	return func(ctx context.Context) error {
		exists, err := eng.IndexExists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("index %q does not exist", indexName)
		}
		return nil
	}
}

func seedMemoryEngine(ctx context.Context, cfg *config.Config, eng engine.SearchEngine, reg prometheus.Registerer, logger *slog.Logger) error {
	source, closeSource, err := newSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	indexer := service.NewIndexerService(eng, source, metrics.NewIndexing(reg, logger), service.IndexerConfig{
		Mode:      service.ModeBulk,
		BatchSize: cfg.Indexer.BatchSize,
	}, logger)

	if _, err := indexer.Run(ctx); err != nil {
		return fmt.Errorf("seed memory engine: %w", err)
	}
	return nil
}
