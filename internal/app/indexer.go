package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/utafrali/searchapp/internal/config"
	"github.com/utafrali/searchapp/internal/domain"
	"github.com/utafrali/searchapp/internal/metrics"
	"github.com/utafrali/searchapp/internal/service"
)

// ErrDocumentsRejected is returned by a strict indexing run that finished but
// had per-document failures.
var ErrDocumentsRejected = errors.New("some documents were rejected")

// IndexerOptions are the command-line settings of an indexing run.
type IndexerOptions struct {
	// Strict turns per-document failures into a failed run.
	Strict bool
}

// RunIndexer performs one full indexing run: load the catalog, rebuild the
// index and write every product. Metrics are pushed to the configured
// Pushgateway, if any, when the run ends.
func RunIndexer(ctx context.Context, cfg *config.Config, opts IndexerOptions, logger *slog.Logger) (result *domain.BulkResult, err error) {
	shutdownTracing, err := initTracing(ctx, cfg, "search-indexer")
	if err != nil {
		return nil, err
	}
	defer func() {
		if shutdownErr := shutdownTracing(context.WithoutCancel(ctx)); shutdownErr != nil {
			logger.Error("tracer shutdown error", slog.String("error", shutdownErr.Error()))
		}
	}()

	mode, err := service.ParseMode(cfg.Indexer.Mode)
	if err != nil {
		return nil, err
	}

	eng, esEng, err := newEngine(cfg, logger)
	if err != nil {
		return nil, err
	}
	if esEng != nil {
		if err := esEng.Ping(ctx); err != nil {
			return nil, fmt.Errorf("elasticsearch unreachable: %w", err)
		}
	}

	source, closeSource, err := newSource(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer closeSource()

	registry := prometheus.NewRegistry()
	defer pushMetrics(cfg.Indexer.PushgatewayURL, registry, logger)

	indexer := service.NewIndexerService(eng, source, metrics.NewIndexing(registry, logger), service.IndexerConfig{
		Mode:      mode,
		BatchSize: cfg.Indexer.BatchSize,
	}, logger)

	result, err = indexer.Run(ctx)
	if err != nil {
		return result, err
	}
	if opts.Strict && result.Failed > 0 {
		return result, fmt.Errorf("%w: %d of %d", ErrDocumentsRejected, result.Failed, result.Total())
	}
	return result, nil
}

func pushMetrics(url string, gatherer prometheus.Gatherer, logger *slog.Logger) {
	if url == "" {
		return
	}
	err := push.New(url, "search_indexer").
		Gatherer(gatherer).
		Push()
	if err != nil {
		logger.Warn("push metrics failed", slog.String("pushgateway", url), slog.String("error", err.Error()))
		return
	}
	logger.Debug("metrics pushed", slog.String("pushgateway", url))
}
