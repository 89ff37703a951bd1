package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/searchapp/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingObserver captures observer callbacks for assertions.
type recordingObserver struct {
	mu       sync.Mutex
	indexed  []string
	failed   []string
	bulks    []*domain.BulkResult
	rejected []domain.BulkFailure
	searches []int
	errs     []error
}

func (o *recordingObserver) ProductIndexed(_ context.Context, p *domain.Product, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.failed = append(o.failed, p.ID)
		return
	}
	o.indexed = append(o.indexed, p.ID)
}

func (o *recordingObserver) BulkCompleted(_ context.Context, r *domain.BulkResult, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.bulks = append(o.bulks, r)
}

func (o *recordingObserver) ProductRejected(_ context.Context, _ *domain.Product, f domain.BulkFailure) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rejected = append(o.rejected, f)
}

func (o *recordingObserver) SearchCompleted(_ context.Context, _ *domain.SearchQuery, hits int, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.searches = append(o.searches, hits)
	o.errs = append(o.errs, err)
}

// stubEngine fails the operations it has an error for and otherwise behaves
// as an empty index.
type stubEngine struct {
	searchErr  error
	rebuildErr error
	bulkErr    error
	createErr  error
	refreshErr error
	// createErrs, when set, is consumed one entry per Create call.
	createErrs []error
	creates    []string

	rebuilds  int
	bulkSizes []int
}

var errUnreachable = errors.New("dial tcp 127.0.0.1:9200: connect: connection refused")

func (s *stubEngine) Ping(context.Context) error { return nil }

func (s *stubEngine) RebuildIndex(context.Context) error {
	s.rebuilds++
	return s.rebuildErr
}

func (s *stubEngine) IndexExists(context.Context) (bool, error) { return true, nil }

func (s *stubEngine) Create(_ context.Context, p *domain.Product) error {
	s.creates = append(s.creates, p.ID)
	if len(s.createErrs) > 0 {
		err := s.createErrs[0]
		s.createErrs = s.createErrs[1:]
		return err
	}
	return s.createErr
}

func (s *stubEngine) BulkCreate(_ context.Context, products []domain.Product) (*domain.BulkResult, error) {
	s.bulkSizes = append(s.bulkSizes, len(products))
	if s.bulkErr != nil {
		return nil, s.bulkErr
	}
	return &domain.BulkResult{Indexed: len(products)}, nil
}

func (s *stubEngine) Refresh(context.Context) error { return s.refreshErr }

func (s *stubEngine) Search(context.Context, *domain.SearchQuery) ([]domain.SearchResult, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return []domain.SearchResult{}, nil
}

// staticSource is an in-memory catalog.Source.
type staticSource struct {
	products []domain.Product
	err      error
}

func (s *staticSource) Name() string { return "static" }

func (s *staticSource) AllProducts(context.Context) ([]domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func catalogProducts() []domain.Product {
	return []domain.Product{
		{ID: "1", Name: "Red Bicycle", Description: "A fast red bike", Image: "red.jpg", Price: 199.99},
		{ID: "2", Name: "Blue Bicycle", Description: "A sturdy blue bike", Image: "blue.jpg", Price: 149.5},
		{ID: "3", Name: "Green Scooter", Description: "Electric scooter", Image: "green.jpg", Price: 299},
	}
}
