package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/searchapp/internal/domain"
	apperrors "github.com/utafrali/searchapp/pkg/errors"
	"github.com/utafrali/searchapp/pkg/tracing"
)

var tracer = tracing.Tracer("github.com/utafrali/searchapp/internal/engine/elasticsearch")

// Config holds the connection settings of the engine.
type Config struct {
	Addresses  []string
	Username   string
	Password   string
	IndexName  string
	// MaxRetries caps retries of failed requests. Zero disables retrying.
	MaxRetries int
	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper
}

// Engine is an Elasticsearch-backed implementation of the SearchEngine interface.
type Engine struct {
	client    *elasticsearch.Client
	indexName string
	logger    *slog.Logger
}

// esSearchResponse is the structure used to decode Elasticsearch search responses.
type esSearchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string `json:"_id"`
			Source struct {
				Image       string `json:"image"`
				Name        string `json:"name"`
				Description string `json:"description"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// esErrorResponse is used to decode Elasticsearch error responses.
type esErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

// New builds a client for the given cluster. It does not contact the cluster;
// use Ping for that. If cfg.IndexName is empty, domain.DefaultIndexName is used.
func New(cfg Config, logger *slog.Logger) (*Engine, error) {
	if cfg.IndexName == "" {
		cfg.IndexName = domain.DefaultIndexName
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    cfg.Addresses,
		Username:     cfg.Username,
		Password:     cfg.Password,
		MaxRetries:   cfg.MaxRetries,
		DisableRetry: cfg.MaxRetries == 0,
		Transport:    cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: failed to create client: %w", err)
	}

	return &Engine{
		client:    client,
		indexName: cfg.IndexName,
		logger:    logger,
	}, nil
}

// IndexName returns the index the engine reads and writes.
func (e *Engine) IndexName() string {
	return e.indexName
}

// Ping checks whether the Elasticsearch cluster is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: unexpected status %s", res.Status())
	}
	return nil
}

// RebuildIndex deletes the index (a missing index is fine) and creates it
// again with the product mapping.
func (e *Engine) RebuildIndex(ctx context.Context) (err error) {
	ctx, span := e.startSpan(ctx, "elasticsearch.rebuild_index")
	defer func() { tracing.End(span, err) }()

	if err := e.DeleteIndex(ctx); err != nil {
		return err
	}

	res, err := e.client.Indices.Create(
		e.indexName,
		e.client.Indices.Create.WithBody(strings.NewReader(buildIndexMapping())),
		e.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch create index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return decodeError("elasticsearch create index", res)
	}

	e.logger.Info("elasticsearch index created", "index", e.indexName)
	return nil
}

// DeleteIndex removes the whole index. A missing index is treated as success.
func (e *Engine) DeleteIndex(ctx context.Context) error {
	res, err := e.client.Indices.Delete(
		[]string{e.indexName},
		e.client.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch delete index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == http.StatusNotFound {
		e.logger.Debug("elasticsearch index absent, nothing to delete", "index", e.indexName)
		return nil
	}
	if res.IsError() {
		return decodeError("elasticsearch delete index", res)
	}

	e.logger.Info("elasticsearch index deleted", "index", e.indexName)
	return nil
}

// IndexExists reports whether the index is present.
func (e *Engine) IndexExists(ctx context.Context) (bool, error) {
	res, err := e.client.Indices.Exists(
		[]string{e.indexName},
		e.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("elasticsearch index exists: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("elasticsearch index exists: unexpected status %s", res.Status())
	}
}

// Create stores one product with the create API, so an existing document with
// the same ID is never overwritten.
func (e *Engine) Create(ctx context.Context, product *domain.Product) (err error) {
	ctx, span := e.startSpan(ctx, "elasticsearch.create", attribute.String("document.id", product.ID))
	defer func() { tracing.End(span, err) }()

	data, err := json.Marshal(product.Document())
	if err != nil {
		return fmt.Errorf("elasticsearch create: marshal product: %w", err)
	}

	res, err := e.client.Create(
		e.indexName,
		product.ID,
		bytes.NewReader(data),
		e.client.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch create: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == http.StatusConflict {
		return apperrors.AlreadyExists("document", "id", product.ID)
	}
	if res.IsError() {
		if docErr := decodeDocumentError(product.ID, res); docErr != nil {
			return docErr
		}
		return decodeError("elasticsearch create", res)
	}

	e.logger.Debug("created document", "id", product.ID, "name", product.Name)
	return nil
}

// BulkCreate sends every product in a single bulk request of create actions.
// Items the cluster rejects are reported in the result.
func (e *Engine) BulkCreate(ctx context.Context, products []domain.Product) (result *domain.BulkResult, err error) {
	if len(products) == 0 {
		return &domain.BulkResult{}, nil
	}

	ctx, span := e.startSpan(ctx, "elasticsearch.bulk_create", attribute.Int("bulk.size", len(products)))
	defer func() { tracing.End(span, err) }()

	buf, err := encodeBulkCreate(e.indexName, products)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch bulk create: %w", err)
	}

	res, err := e.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		e.client.Bulk.WithIndex(e.indexName),
		e.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch bulk create: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, decodeError("elasticsearch bulk create", res)
	}

	var bulkResp esBulkResponse
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return nil, fmt.Errorf("elasticsearch bulk create: decode response: %w", err)
	}

	result = bulkResp.toBulkResult()
	span.SetAttributes(
		attribute.Int("bulk.indexed", result.Indexed),
		attribute.Int("bulk.failed", result.Failed),
	)
	return result, nil
}

// Refresh makes all writes visible to search.
func (e *Engine) Refresh(ctx context.Context) error {
	res, err := e.client.Indices.Refresh(
		e.client.Indices.Refresh.WithIndex(e.indexName),
		e.client.Indices.Refresh.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch refresh: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return decodeError("elasticsearch refresh", res)
	}
	return nil
}

// Search executes the dis_max query and maps each hit to a SearchResult.
// A zero count returns an empty list without contacting the cluster.
func (e *Engine) Search(ctx context.Context, query *domain.SearchQuery) (results []domain.SearchResult, err error) {
	if query.Count < 0 {
		return nil, apperrors.InvalidInput("count must not be negative")
	}
	if query.Count == 0 {
		return []domain.SearchResult{}, nil
	}

	ctx, span := e.startSpan(ctx, "elasticsearch.search", attribute.Int("search.count", query.Count))
	defer func() { tracing.End(span, err, attribute.Int("search.hits", len(results))) }()

	data, err := json.Marshal(buildSearchQuery(query.Term, query.Count))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: marshal query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithIndex(e.indexName),
		e.client.Search.WithBody(bytes.NewReader(data)),
		e.client.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, decodeError("elasticsearch search", res)
	}

	var esResp esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("elasticsearch search: decode response: %w", err)
	}

	results = make([]domain.SearchResult, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		results = append(results, domain.SearchResult{
			ID:          hit.ID,
			Image:       hit.Source.Image,
			Name:        hit.Source.Name,
			Description: hit.Source.Description,
		})
	}
	return results, nil
}

func (e *Engine) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("db.system", "elasticsearch"),
		attribute.String("db.elasticsearch.index", e.indexName),
	)
	return tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
}

// decodeError turns an error response into an error carrying the cluster's
// error type and reason when the body has them.
// decodeDocumentError turns a 4xx response carrying an Elasticsearch error
// body into a *domain.DocumentError. It returns nil for 5xx responses and for
// bodies it cannot read, and consumes the body only in the 4xx case.
func decodeDocumentError(id string, res *esapi.Response) *domain.DocumentError {
	if res.StatusCode < http.StatusBadRequest || res.StatusCode >= http.StatusInternalServerError {
		return nil
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil
	}
	var errResp esErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Type == "" {
		res.Body = io.NopCloser(bytes.NewReader(body))
		return nil
	}
	return &domain.DocumentError{ID: id, Type: errResp.Error.Type, Reason: errResp.Error.Reason}
}

func decodeError(op string, res *esapi.Response) error {
	var errResp esErrorResponse
	if decErr := json.NewDecoder(res.Body).Decode(&errResp); decErr == nil && errResp.Error.Type != "" {
		return fmt.Errorf("%s: %s: %s", op, errResp.Error.Type, errResp.Error.Reason)
	}
	return fmt.Errorf("%s: unexpected status %s", op, res.Status())
}
