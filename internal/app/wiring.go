package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/searchapp/internal/catalog"
	"github.com/utafrali/searchapp/internal/config"
	"github.com/utafrali/searchapp/internal/engine"
	esengine "github.com/utafrali/searchapp/internal/engine/elasticsearch"
	"github.com/utafrali/searchapp/internal/engine/memory"
	"github.com/utafrali/searchapp/pkg/database"
	"github.com/utafrali/searchapp/pkg/httpclient"
	"github.com/utafrali/searchapp/pkg/tracing"
)

// newEngine builds the configured search engine. The Elasticsearch engine is
// returned separately so callers can register its health checks.
func newEngine(cfg *config.Config, logger *slog.Logger) (engine.SearchEngine, *esengine.Engine, error) {
	switch cfg.SearchEngine {
	case config.EngineElasticsearch:
		esEng, err := esengine.New(esengine.Config{
			Addresses:  cfg.Elasticsearch.URLs,
			Username:   cfg.Elasticsearch.Username,
			Password:   cfg.Elasticsearch.Password,
			IndexName:  cfg.Elasticsearch.Index,
			MaxRetries: cfg.Elasticsearch.MaxRetries,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("init elasticsearch engine: %w", err)
		}
		logger.Info("elasticsearch search engine initialized",
			slog.Any("urls", cfg.Elasticsearch.URLs),
			slog.String("index", cfg.Elasticsearch.Index),
		)
		return esEng, esEng, nil
	default:
		logger.Info("in-memory search engine initialized")
		return memory.New(cfg.Elasticsearch.Index), nil, nil
	}
}

// newSource builds the configured catalog source. The returned close
// function releases any connection the source holds and is never nil.
func newSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (catalog.Source, func(), error) {
	noop := func() {}

	switch cfg.Catalog.Source {
	case catalog.KindEmbedded:
		return catalog.NewEmbedded(), noop, nil
	case catalog.KindFile:
		return catalog.NewFile(cfg.Catalog.File), noop, nil
	case catalog.KindPostgres:
		pool, err := database.NewPostgresPool(ctx, &cfg.Postgres, logger)
		if err != nil {
			return nil, noop, fmt.Errorf("connect catalog database: %w", err)
		}
		return catalog.NewPostgres(pool), pool.Close, nil
	case catalog.KindRemote:
		client := httpclient.NewBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			httpclient.DefaultBreakerConfig("product-service"),
			logger,
		)
		return catalog.NewRemote(client, cfg.Catalog.ProductServiceURL, cfg.Catalog.PageSize), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}
}

// initTracing installs the tracer provider for the named process.
func initTracing(ctx context.Context, cfg *config.Config, serviceName string) (func(context.Context) error, error) {
	shutdown, err := tracing.Init(ctx, tracing.Config{
		ServiceName:  serviceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.Tracing.Endpoint,
		SampleRate:   cfg.Tracing.SampleRate,
		Enabled:      cfg.Tracing.Enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	return shutdown, nil
}
