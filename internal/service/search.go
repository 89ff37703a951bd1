package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/utafrali/searchapp/internal/domain"
	"github.com/utafrali/searchapp/internal/engine"
	apperrors "github.com/utafrali/searchapp/pkg/errors"
)

// DefaultMaxResults caps the count a caller may request.
const DefaultMaxResults = 100

// SearchObserver is notified after every query that reaches the engine.
type SearchObserver interface {
	SearchCompleted(ctx context.Context, query *domain.SearchQuery, hits int, elapsed time.Duration, err error)
}

// SearchService answers free-text product queries.
type SearchService struct {
	engine     engine.SearchEngine
	maxResults int
	observer   SearchObserver
}

// NewSearchService creates a new search service. A non-positive maxResults
// falls back to DefaultMaxResults.
func NewSearchService(eng engine.SearchEngine, maxResults int, observer SearchObserver) *SearchService {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &SearchService{
		engine:     eng,
		maxResults: maxResults,
		observer:   observer,
	}
}

// Search returns at most count products matching term, best first. An empty
// list means nothing matched; engine failures are returned as errors.
func (s *SearchService) Search(ctx context.Context, term string, count int) ([]domain.SearchResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperrors.InvalidInput("search term is required")
	}
	if count < 0 {
		return nil, apperrors.InvalidInput("count must not be negative")
	}
	if count > s.maxResults {
		count = s.maxResults
	}
	if count == 0 {
		return []domain.SearchResult{}, nil
	}

	query := &domain.SearchQuery{Term: term, Count: count}

	start := time.Now()
	results, err := s.engine.Search(ctx, query)
	if s.observer != nil {
		s.observer.SearchCompleted(ctx, query, len(results), time.Since(start), err)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidInput) {
			return nil, err
		}
		return nil, apperrors.ServiceUnavailable("search engine", err)
	}

	return results, nil
}
