package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/utafrali/searchapp/internal/domain"
	apperrors "github.com/utafrali/searchapp/pkg/errors"
)

// tieBreaker weights the non-best field scores, as in the dis_max query.
const tieBreaker = 0.7

// document is a stored product with its analyzed fields.
type document struct {
	product     domain.Product
	name        []string
	description []string
}

// Engine is an in-memory implementation of the SearchEngine interface.
// It approximates the Elasticsearch query: every query token must match a
// field token within the AUTO edit distance, and the best field wins.
// Thread-safe via sync.RWMutex.
type Engine struct {
	mu        sync.RWMutex
	indexName string
	exists    bool
	docs      map[string]document
}

// New creates an empty engine. The index does not exist until it is rebuilt
// or first written to.
func New(indexName string) *Engine {
	if indexName == "" {
		indexName = domain.DefaultIndexName
	}
	return &Engine{
		indexName: indexName,
		docs:      make(map[string]document),
	}
}

// Ping always succeeds.
func (e *Engine) Ping(_ context.Context) error {
	return nil
}

// RebuildIndex drops every document and leaves an empty index behind.
func (e *Engine) RebuildIndex(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.docs = make(map[string]document)
	e.exists = true
	return nil
}

// IndexExists reports whether the index has been created.
func (e *Engine) IndexExists(_ context.Context) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.exists, nil
}

// Create stores a single product, refusing IDs that are already present.
func (e *Engine) Create(_ context.Context, product *domain.Product) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.create(product)
}

// BulkCreate stores the products in order. Duplicates are reported per item
// and do not stop the rest of the batch.
func (e *Engine) BulkCreate(_ context.Context, products []domain.Product) (*domain.BulkResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := &domain.BulkResult{}
	for i := range products {
		if err := e.create(&products[i]); err != nil {
			result.Fail(products[i].ID, domain.FailureConflict,
				fmt.Sprintf("[%s]: version conflict, document already exists", products[i].ID))
			continue
		}
		result.Indexed++
	}
	return result, nil
}

// create must be called with the write lock held.
func (e *Engine) create(product *domain.Product) error {
	if _, ok := e.docs[product.ID]; ok {
		return apperrors.AlreadyExists("document", "id", product.ID)
	}
	e.exists = true
	e.docs[product.ID] = document{
		product:     *product,
		name:        nameAnalyzer.analyze(product.Name),
		description: descriptionAnalyzer.analyze(product.Description),
	}
	return nil
}

// Refresh is a no-op: writes are visible immediately.
func (e *Engine) Refresh(_ context.Context) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.exists {
		return apperrors.NotFound("index", e.indexName)
	}
	return nil
}

type scoredResult struct {
	result domain.SearchResult
	score  float64
}

// Search scores every document and returns the best query.Count of them.
func (e *Engine) Search(_ context.Context, query *domain.SearchQuery) ([]domain.SearchResult, error) {
	if query.Count < 0 {
		return nil, apperrors.InvalidInput("count must not be negative")
	}
	if query.Count == 0 {
		return []domain.SearchResult{}, nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.exists {
		return nil, apperrors.NotFound("index", e.indexName)
	}

	nameTerms := nameAnalyzer.analyze(query.Term)
	descTerms := descriptionAnalyzer.analyze(query.Term)

	matched := make([]scoredResult, 0)
	for id, doc := range e.docs {
		score, ok := disMax(
			matchField(nameTerms, doc.name),
			matchField(descTerms, doc.description),
		)
		if !ok {
			continue
		}
		matched = append(matched, scoredResult{
			result: domain.SearchResult{
				ID:          id,
				Image:       doc.product.Image,
				Name:        doc.product.Name,
				Description: doc.product.Description,
			},
			score: score,
		})
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].score != matched[j].score {
			return matched[i].score > matched[j].score
		}
		return matched[i].result.ID < matched[j].result.ID
	})

	if len(matched) > query.Count {
		matched = matched[:query.Count]
	}

	results := make([]domain.SearchResult, len(matched))
	for i, m := range matched {
		results[i] = m.result
	}
	return results, nil
}

// matchField scores one field with the "and" operator. It returns a negative
// score when the field does not match. A query that analyzes to no terms
// matches nothing.
func matchField(terms, tokens []string) float64 {
	if len(terms) == 0 || len(tokens) == 0 {
		return -1
	}

	var total float64
	for _, term := range terms {
		best := 0.0
		limit := maxEdits(term)
		for _, tok := range tokens {
			d := editDistance(term, tok)
			if d > limit {
				continue
			}
			// Exact matches score 1, fuzzy matches proportionally less.
			s := 1 - float64(d)/float64(len([]rune(term))+1)
			if s > best {
				best = s
			}
		}
		if best == 0 {
			return -1
		}
		total += best
	}
	return total / math.Sqrt(float64(len(tokens)))
}

// disMax combines field scores: the best one plus tieBreaker times the rest.
func disMax(scores ...float64) (float64, bool) {
	best, rest, matched := 0.0, 0.0, false
	for _, s := range scores {
		if s < 0 {
			continue
		}
		if !matched || s > best {
			if matched {
				rest += best
			}
			best, matched = s, true
			continue
		}
		rest += s
	}
	return best + tieBreaker*rest, matched
}
