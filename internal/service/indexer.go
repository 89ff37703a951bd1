package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/searchapp/internal/catalog"
	"github.com/utafrali/searchapp/internal/domain"
	"github.com/utafrali/searchapp/internal/engine"
	apperrors "github.com/utafrali/searchapp/pkg/errors"
	"github.com/utafrali/searchapp/pkg/validator"
)

// Mode selects how documents are written.
type Mode string

// Supported indexing modes.
const (
	ModeBulk   Mode = "bulk"
	ModeSingle Mode = "single"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeBulk, ModeSingle:
		return Mode(s), nil
	case "":
		return ModeBulk, nil
	default:
		return "", apperrors.InvalidInput(fmt.Sprintf("unknown indexing mode %q", s))
	}
}

// IndexObserver receives indexing progress. ProductIndexed fires once per
// single-document write, BulkCompleted once per bulk request and
// ProductRejected once per product that failed validation and was never sent.
type IndexObserver interface {
	ProductIndexed(ctx context.Context, product *domain.Product, err error)
	BulkCompleted(ctx context.Context, result *domain.BulkResult, elapsed time.Duration)
	ProductRejected(ctx context.Context, product *domain.Product, failure domain.BulkFailure)
}

// IndexerConfig tunes an indexing run.
type IndexerConfig struct {
	Mode Mode
	// BatchSize splits bulk mode into several requests. Zero sends
	// everything in one request.
	BatchSize int
}

// IndexerService rebuilds the index from a catalog source.
type IndexerService struct {
	engine   engine.SearchEngine
	source   catalog.Source
	observer IndexObserver
	cfg      IndexerConfig
	logger   *slog.Logger
}

// NewIndexerService creates a new indexer.
func NewIndexerService(
	eng engine.SearchEngine,
	source catalog.Source,
	observer IndexObserver,
	cfg IndexerConfig,
	logger *slog.Logger,
) *IndexerService {
	if cfg.Mode == "" {
		cfg.Mode = ModeBulk
	}
	return &IndexerService{
		engine:   eng,
		source:   source,
		observer: observer,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run loads the catalog, recreates the index and writes every product. Setup
// failures (source, rebuild, refresh) are returned as errors; rejected
// documents are only reported in the result.
func (s *IndexerService) Run(ctx context.Context) (*domain.BulkResult, error) {
	start := time.Now()

	products, err := s.source.AllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products from %s: %w", s.source.Name(), err)
	}
	s.logger.InfoContext(ctx, "catalog loaded",
		slog.String("source", s.source.Name()),
		slog.Int("products", len(products)),
	)

	if err := s.engine.RebuildIndex(ctx); err != nil {
		return nil, fmt.Errorf("rebuild index: %w", err)
	}

	result, err := s.IndexAll(ctx, products)
	if err != nil {
		return result, err
	}

	if err := s.engine.Refresh(ctx); err != nil {
		return result, fmt.Errorf("refresh index: %w", err)
	}

	s.logger.InfoContext(ctx, "indexing run completed",
		slog.String("mode", string(s.cfg.Mode)),
		slog.Int("indexed", result.Indexed),
		slog.Int("failed", result.Failed),
		slog.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// IndexAll validates products and writes the valid ones using the configured
// mode. Invalid products are reported as validation failures.
func (s *IndexerService) IndexAll(ctx context.Context, products []domain.Product) (*domain.BulkResult, error) {
	result := &domain.BulkResult{}

	valid := make([]domain.Product, 0, len(products))
	for i := range products {
		if err := validator.Validate(&products[i]); err != nil {
			result.Fail(products[i].ID, domain.FailureValidation, err.Error())
			s.observer.ProductRejected(ctx, &products[i], result.Failures[len(result.Failures)-1])
			continue
		}
		valid = append(valid, products[i])
	}

	if s.cfg.Mode == ModeSingle {
		return result, s.indexEach(ctx, valid, result)
	}
	return result, s.indexBatches(ctx, valid, result)
}

// indexEach writes products one at a time. Conflicts and other per-document
// rejections are recorded and the loop moves on; any other error stops it.
func (s *IndexerService) indexEach(ctx context.Context, products []domain.Product, result *domain.BulkResult) error {
	var docErr *domain.DocumentError
	for i := range products {
		err := s.IndexProduct(ctx, &products[i])
		switch {
		case err == nil:
			result.Indexed++
		case errors.Is(err, apperrors.ErrAlreadyExists):
			result.Fail(products[i].ID, domain.FailureConflict, err.Error())
		case errors.As(err, &docErr):
			result.Fail(products[i].ID, docErr.Type, docErr.Reason)
		default:
			return fmt.Errorf("index product %s: %w", products[i].ID, err)
		}
	}
	return nil
}

func (s *IndexerService) indexBatches(ctx context.Context, products []domain.Product, result *domain.BulkResult) error {
	size := s.cfg.BatchSize
	if size <= 0 || size > len(products) {
		size = len(products)
	}
	if size == 0 {
		s.observer.BulkCompleted(ctx, &domain.BulkResult{}, 0)
		return nil
	}

	for offset := 0; offset < len(products); offset += size {
		end := min(offset+size, len(products))

		start := time.Now()
		batch, err := s.engine.BulkCreate(ctx, products[offset:end])
		if err != nil {
			s.observer.BulkCompleted(ctx, nil, time.Since(start))
			return fmt.Errorf("bulk create products %d-%d: %w", offset, end-1, err)
		}
		s.observer.BulkCompleted(ctx, batch, time.Since(start))
		result.Merge(batch)
	}
	return nil
}

// IndexProduct validates and writes one product.
func (s *IndexerService) IndexProduct(ctx context.Context, product *domain.Product) error {
	if err := validator.Validate(product); err != nil {
		return err
	}

	err := s.engine.Create(ctx, product)
	s.observer.ProductIndexed(ctx, product, err)
	return err
}
