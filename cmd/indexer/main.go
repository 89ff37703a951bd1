package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/utafrali/searchapp/internal/app"
	"github.com/utafrali/searchapp/internal/config"
	"github.com/utafrali/searchapp/pkg/logger"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		slog.Error("fatal error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "search-indexer",
		Usage: "Rebuild the product search index from a catalog source",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "source",
				Aliases: []string{"s"},
				Usage:   "Catalog source (embedded, file, postgres, remote); defaults to CATALOG_SOURCE",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Product file for --source file; defaults to CATALOG_FILE",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "Write documents in one bulk request (bulk) or one at a time (single)",
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Products per bulk request, 0 sends all in one request",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Exit non-zero when any document is rejected",
			},
		},
		Action: indexCommand,
	}
}

// loadConfig reads the environment, applies the flags the user set and only
// then validates the result.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Parse()
	if err != nil {
		return nil, err
	}

	if c.IsSet("source") {
		cfg.Catalog.Source = c.String("source")
	}
	if c.IsSet("file") {
		cfg.Catalog.File = c.String("file")
		if !c.IsSet("source") {
			cfg.Catalog.Source = "file"
		}
	}
	if c.IsSet("mode") {
		cfg.Indexer.Mode = c.String("mode")
	}
	if c.IsSet("batch-size") {
		cfg.Indexer.BatchSize = c.Int("batch-size")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func indexCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("load config: %v", err), 1)
	}

	log := logger.New("search-indexer", cfg.LogLevel)
	log.Info("starting indexing run",
		slog.String("environment", cfg.Environment),
		slog.String("engine", cfg.SearchEngine),
		slog.String("index", cfg.Elasticsearch.Index),
		slog.String("source", cfg.Catalog.Source),
		slog.String("mode", cfg.Indexer.Mode),
	)

	result, err := app.RunIndexer(c.Context, cfg, app.IndexerOptions{Strict: c.Bool("strict")}, log)
	if err != nil {
		return cli.Exit(fmt.Sprintf("indexing failed: %v", err), 1)
	}

	log.Info("indexing run finished",
		slog.Int("indexed", result.Indexed),
		slog.Int("failed", result.Failed),
	)
	return nil
}
