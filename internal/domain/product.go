package domain

import "fmt"

// DefaultIndexName is the index shared by the indexer and the query server.
const DefaultIndexName = "products"

// Product is a catalog record as delivered by a catalog source.
type Product struct {
	ID          string  `json:"id" yaml:"id" validate:"required,max=512"`
	Name        string  `json:"name" yaml:"name" validate:"required"`
	Description string  `json:"description" yaml:"description"`
	Image       string  `json:"image" yaml:"image"`
	Taxonomy    string  `json:"taxonomy" yaml:"taxonomy"`
	Price       float64 `json:"price" yaml:"price" validate:"gte=0"`
}

// Document is the body stored in the index. The product ID becomes the
// document ID and is not repeated in the body.
type Document struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Taxonomy    string  `json:"taxonomy"`
	Price       float64 `json:"price"`
}

// Document returns the stored representation of p.
func (p *Product) Document() Document {
	return Document{
		Name:        p.Name,
		Description: p.Description,
		Image:       p.Image,
		Taxonomy:    p.Taxonomy,
		Price:       p.Price,
	}
}

// SearchResult is what a query returns for one hit. Taxonomy and price are
// deliberately not part of it.
type SearchResult struct {
	ID          string `json:"id"`
	Image       string `json:"image"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SearchQuery is a free-text term and the maximum number of hits wanted.
type SearchQuery struct {
	Term  string
	Count int
}

// Failure types reported in BulkFailure.Type besides the ones returned by
// Elasticsearch.
const (
	FailureConflict   = "version_conflict_engine_exception"
	FailureValidation = "validation_error"
)

// BulkFailure describes one document the engine refused.
type BulkFailure struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// BulkResult reports the outcome of an indexing run.
type BulkResult struct {
	Indexed  int           `json:"indexed"`
	Failed   int           `json:"failed"`
	Failures []BulkFailure `json:"failures,omitempty"`
}

// Fail records a refused document.
func (r *BulkResult) Fail(id, errType, reason string) {
	r.Failed++
	r.Failures = append(r.Failures, BulkFailure{ID: id, Type: errType, Reason: reason})
}

// Merge adds other's counts and failures to r.
func (r *BulkResult) Merge(other *BulkResult) {
	if other == nil {
		return
	}
	r.Indexed += other.Indexed
	r.Failed += other.Failed
	r.Failures = append(r.Failures, other.Failures...)
}

// Total is the number of documents attempted.
func (r *BulkResult) Total() int {
	return r.Indexed + r.Failed
}

// DocumentError is a write the engine refused for that document alone. The
// rest of a run can continue past it.
type DocumentError struct {
	ID     string
	Type   string
	Reason string
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document %s rejected: %s: %s", e.ID, e.Type, e.Reason)
}
