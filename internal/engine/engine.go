package engine

import (
	"context"

	"github.com/utafrali/searchapp/internal/domain"
)

// SearchEngine defines the operations the indexer and the query server need
// from a full-text backend. Implementations may use Elasticsearch or
// in-memory storage.
type SearchEngine interface {
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// RebuildIndex drops the index if present and recreates it empty with
	// the product schema and analyzers.
	RebuildIndex(ctx context.Context) error

	// IndexExists reports whether the index is present.
	IndexExists(ctx context.Context) (bool, error)

	// Create stores a single product. A product whose ID is already indexed
	// is rejected with an already-exists error.
	Create(ctx context.Context, product *domain.Product) error

	// BulkCreate stores all products in one request. Per-document failures
	// are reported in the result; the error is reserved for request-level
	// failures.
	BulkCreate(ctx context.Context, products []domain.Product) (*domain.BulkResult, error)

	// Refresh makes every write so far visible to searches.
	Refresh(ctx context.Context) error

	// Search runs the dis_max free-text query and returns at most
	// query.Count results in relevance order.
	Search(ctx context.Context, query *domain.SearchQuery) ([]domain.SearchResult, error)
}
