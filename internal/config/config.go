package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/utafrali/searchapp/internal/catalog"
	"github.com/utafrali/searchapp/pkg/database"
	pkgconfig "github.com/utafrali/searchapp/pkg/config"
)

// Search engine backends.
const (
	EngineElasticsearch = "elasticsearch"
	EngineMemory        = "memory"
)

// Config holds all configuration shared by the query server and the indexer.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"SEARCH_HTTP_PORT" envDefault:"8010"`

	// Search engine selection (elasticsearch or memory)
	SearchEngine string `env:"SEARCH_ENGINE" envDefault:"elasticsearch"`
	MaxResults   int    `env:"SEARCH_MAX_RESULTS" envDefault:"100"`

	Elasticsearch Elasticsearch
	Catalog       Catalog
	Indexer       Indexer
	Tracing       Tracing
	Postgres      database.PostgresConfig
}

// Elasticsearch holds cluster connection settings.
type Elasticsearch struct {
	URLs       []string `env:"ELASTICSEARCH_URL" envDefault:"http://localhost:9200" envSeparator:","`
	Username   string   `env:"ELASTICSEARCH_USERNAME"`
	Password   string   `env:"ELASTICSEARCH_PASSWORD"`
	MaxRetries int      `env:"ELASTICSEARCH_MAX_RETRIES" envDefault:"3"`
	Index      string   `env:"ELASTICSEARCH_INDEX" envDefault:"products"`
}

// Catalog selects where the indexer reads products from.
type Catalog struct {
	Source            string `env:"CATALOG_SOURCE" envDefault:"embedded"`
	File              string `env:"CATALOG_FILE"`
	ProductServiceURL string `env:"PRODUCT_SERVICE_URL" envDefault:"http://localhost:8001"`
	PageSize          int    `env:"CATALOG_PAGE_SIZE" envDefault:"100"`
}

// Indexer tunes indexing runs.
type Indexer struct {
	Mode           string `env:"INDEXER_MODE" envDefault:"bulk"`
	BatchSize      int    `env:"INDEXER_BATCH_SIZE" envDefault:"0"`
	PushgatewayURL string `env:"PUSHGATEWAY_URL"`
}

// Tracing configures the OpenTelemetry exporter.
type Tracing struct {
	Enabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	Endpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	SampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load search config: %w", err)
	}
	return cfg, nil
}

// Parse reads configuration from environment variables without validating
// it. Callers must run Validate once their own overrides are applied.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse search config: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	switch c.SearchEngine {
	case EngineElasticsearch, EngineMemory:
	default:
		return fmt.Errorf("invalid SEARCH_ENGINE %q: want %s or %s", c.SearchEngine, EngineElasticsearch, EngineMemory)
	}
	if c.MaxResults < 1 {
		return fmt.Errorf("SEARCH_MAX_RESULTS must be positive, got %d", c.MaxResults)
	}

	if err := c.Elasticsearch.validate(); err != nil {
		return err
	}
	if err := c.Catalog.validate(); err != nil {
		return err
	}

	if c.Indexer.Mode != "bulk" && c.Indexer.Mode != "single" {
		return fmt.Errorf("invalid INDEXER_MODE %q: want bulk or single", c.Indexer.Mode)
	}
	if c.Indexer.BatchSize < 0 {
		return fmt.Errorf("INDEXER_BATCH_SIZE must not be negative, got %d", c.Indexer.BatchSize)
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be within [0, 1], got %v", c.Tracing.SampleRate)
	}
	return nil
}

func (e *Elasticsearch) validate() error {
	if len(e.URLs) == 0 {
		return fmt.Errorf("ELASTICSEARCH_URL is required")
	}
	for _, raw := range e.URLs {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid ELASTICSEARCH_URL %q", raw)
		}
	}
	if e.MaxRetries < 0 {
		return fmt.Errorf("ELASTICSEARCH_MAX_RETRIES must not be negative, got %d", e.MaxRetries)
	}
	// Index names are lowercase, cannot start with -, _ or + and exclude a
	// handful of reserved characters.
	if e.Index == "" || e.Index != strings.ToLower(e.Index) ||
		strings.ContainsAny(e.Index[:1], "-_+") || strings.ContainsAny(e.Index, `\/*?"<>| ,#:`) {
		return fmt.Errorf("invalid ELASTICSEARCH_INDEX %q", e.Index)
	}
	return nil
}

func (c *Catalog) validate() error {
	if !catalog.IsKnownKind(c.Source) {
		return fmt.Errorf("invalid CATALOG_SOURCE %q", c.Source)
	}
	if c.Source == catalog.KindFile && c.File == "" {
		return fmt.Errorf("CATALOG_FILE is required when CATALOG_SOURCE=file")
	}
	if c.Source == catalog.KindRemote && c.ProductServiceURL == "" {
		return fmt.Errorf("PRODUCT_SERVICE_URL is required when CATALOG_SOURCE=remote")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("CATALOG_PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	return nil
}
