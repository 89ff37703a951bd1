// Package metrics records indexing and search activity as structured log
// lines and Prometheus collectors.
package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/searchapp/internal/domain"
	"github.com/utafrali/searchapp/pkg/logger"
)

// Result label values.
const (
	resultIndexed = "indexed"
	resultFailed  = "failed"
)

// Indexing observes indexer progress.
type Indexing struct {
	documents *prometheus.CounterVec
	batches   *prometheus.CounterVec
	duration  prometheus.Histogram
	logger    *slog.Logger
}

// NewIndexing registers the indexing collectors on reg.
func NewIndexing(reg prometheus.Registerer, l *slog.Logger) *Indexing {
	factory := promauto.With(reg)

	return &Indexing{
		documents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "search_documents_indexed_total",
			Help: "Documents written to the search index, by result",
		}, []string{"result"}),
		batches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "search_bulk_requests_total",
			Help: "Bulk indexing requests, by outcome",
		}, []string{"status"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "search_bulk_request_duration_seconds",
			Help:    "Duration of bulk indexing requests in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		logger: l,
	}
}

// ProductIndexed records the outcome of a single-document write.
func (m *Indexing) ProductIndexed(ctx context.Context, product *domain.Product, err error) {
	l := logger.WithContext(ctx, m.logger)
	if err != nil {
		m.documents.WithLabelValues(resultFailed).Inc()
		l.WarnContext(ctx, "product not indexed",
			slog.String("product_id", product.ID),
			slog.String("name", product.Name),
			slog.String("error", err.Error()),
		)
		return
	}

	m.documents.WithLabelValues(resultIndexed).Inc()
	l.InfoContext(ctx, "indexed product",
		slog.String("product_id", product.ID),
		slog.String("name", product.Name),
	)
}

// ProductRejected records a catalog product that was refused before any
// write was attempted.
func (m *Indexing) ProductRejected(ctx context.Context, product *domain.Product, failure domain.BulkFailure) {
	m.documents.WithLabelValues(resultFailed).Inc()
	logger.WithContext(ctx, m.logger).WarnContext(ctx, "product rejected",
		slog.String("product_id", product.ID),
		slog.String("name", product.Name),
		slog.String("type", failure.Type),
		slog.String("reason", failure.Reason),
	)
}

// BulkCompleted records a finished bulk request. A nil result means the
// request itself failed.
func (m *Indexing) BulkCompleted(ctx context.Context, result *domain.BulkResult, elapsed time.Duration) {
	l := logger.WithContext(ctx, m.logger)
	m.duration.Observe(elapsed.Seconds())

	if result == nil {
		m.batches.WithLabelValues("error").Inc()
		l.ErrorContext(ctx, "bulk request failed", slog.Duration("elapsed", elapsed))
		return
	}

	m.batches.WithLabelValues("ok").Inc()
	m.documents.WithLabelValues(resultIndexed).Add(float64(result.Indexed))
	m.documents.WithLabelValues(resultFailed).Add(float64(result.Failed))

	for _, f := range result.Failures {
		l.WarnContext(ctx, "document rejected",
			slog.String("product_id", f.ID),
			slog.String("type", f.Type),
			slog.String("reason", f.Reason),
		)
	}
	l.InfoContext(ctx, "bulk finished",
		slog.Int("indexed", result.Indexed),
		slog.Int("failed", result.Failed),
		slog.Duration("elapsed", elapsed),
	)
}

// Search observes query activity.
type Search struct {
	queries  *prometheus.CounterVec
	hits     prometheus.Histogram
	duration prometheus.Histogram
	logger   *slog.Logger
}

// NewSearch registers the search collectors on reg.
func NewSearch(reg prometheus.Registerer, l *slog.Logger) *Search {
	factory := promauto.With(reg)

	return &Search{
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "search_queries_total",
			Help: "Search queries, by outcome",
		}, []string{"outcome"}),
		hits: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "search_query_hits",
			Help:    "Number of results returned per search query",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "search_query_duration_seconds",
			Help:    "Search engine round trip in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		logger: l,
	}
}

// SearchCompleted records one query.
func (m *Search) SearchCompleted(ctx context.Context, query *domain.SearchQuery, hits int, elapsed time.Duration, err error) {
	l := logger.WithContext(ctx, m.logger)
	m.duration.Observe(elapsed.Seconds())

	if err != nil {
		m.queries.WithLabelValues("error").Inc()
		l.ErrorContext(ctx, "search failed",
			slog.String("term", query.Term),
			slog.Int("count", query.Count),
			slog.String("error", err.Error()),
		)
		return
	}

	outcome := "hit"
	if hits == 0 {
		outcome = "empty"
	}
	m.queries.WithLabelValues(outcome).Inc()
	m.hits.Observe(float64(hits))
	l.DebugContext(ctx, "search executed",
		slog.String("term", query.Term),
		slog.Int("count", query.Count),
		slog.Int("hits", hits),
		slog.Duration("elapsed", elapsed),
	)
}
