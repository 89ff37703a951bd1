package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/searchapp/internal/domain"
	"github.com/utafrali/searchapp/internal/engine/memory"
	apperrors "github.com/utafrali/searchapp/pkg/errors"
)

func newIndexer(eng *memory.Engine, products []domain.Product, cfg IndexerConfig) (*IndexerService, *recordingObserver) {
	obs := &recordingObserver{}
	return NewIndexerService(eng, &staticSource{products: products}, obs, cfg, newTestLogger()), obs
}

func searchIDs(t *testing.T, eng *memory.Engine, term string) []string {
	t.Helper()
	results, err := eng.Search(context.Background(), &domain.SearchQuery{Term: term, Count: 100})
	require.NoError(t, err)
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("single")
	require.NoError(t, err)
	assert.Equal(t, ModeSingle, mode)

	mode, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeBulk, mode)

	_, err = ParseMode("stream")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestRun_BulkIndexesEveryProduct(t *testing.T) {
	eng := memory.New("")
	idx, obs := newIndexer(eng, catalogProducts(), IndexerConfig{Mode: ModeBulk})

	result, err := idx.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Indexed)
	assert.Equal(t, 0, result.Failed)

	require.Len(t, obs.bulks, 1)
	assert.Equal(t, 3, obs.bulks[0].Indexed)
	assert.Empty(t, obs.indexed, "bulk mode emits no per-product events")

	for _, p := range catalogProducts() {
		assert.Contains(t, searchIDs(t, eng, p.Name), p.ID)
	}
}

func TestRun_SingleModeEmitsProgressPerProduct(t *testing.T) {
	eng := memory.New("")
	idx, obs := newIndexer(eng, catalogProducts(), IndexerConfig{Mode: ModeSingle})

	result, err := idx.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Indexed)
	assert.Equal(t, []string{"1", "2", "3"}, obs.indexed)
	assert.Empty(t, obs.bulks)
	assert.ElementsMatch(t, []string{"1", "2"}, searchIDs(t, eng, "bicycle"))
}

func TestRun_RebuildDropsPreviousDocuments(t *testing.T) {
	eng := memory.New("")
	idx, _ := newIndexer(eng, catalogProducts(), IndexerConfig{})

	_, err := idx.Run(context.Background())
	require.NoError(t, err)

	idx, _ = newIndexer(eng, []domain.Product{{ID: "9", Name: "Desk Lamp"}}, IndexerConfig{})
	result, err := idx.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Indexed)

	assert.Empty(t, searchIDs(t, eng, "bicycle"))
	assert.Equal(t, []string{"9"}, searchIDs(t, eng, "lamp"))
}

func TestRun_DuplicateIDsAreReported(t *testing.T) {
	products := append(catalogProducts(), domain.Product{ID: "1", Name: "Counterfeit Bicycle"})

	for _, mode := range []Mode{ModeBulk, ModeSingle} {
		t.Run(string(mode), func(t *testing.T) {
			eng := memory.New("")
			idx, _ := newIndexer(eng, products, IndexerConfig{Mode: mode})

			result, err := idx.Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 3, result.Indexed)
			assert.Equal(t, 1, result.Failed)
			require.Len(t, result.Failures, 1)
			assert.Equal(t, "1", result.Failures[0].ID)
			assert.Equal(t, domain.FailureConflict, result.Failures[0].Type)

			results, err := eng.Search(context.Background(), &domain.SearchQuery{Term: "bicycle", Count: 10})
			require.NoError(t, err)
			names := make([]string, 0, len(results))
			for _, r := range results {
				names = append(names, r.Name)
			}
			assert.Contains(t, names, "Red Bicycle")
			assert.NotContains(t, names, "Counterfeit Bicycle")
		})
	}
}

func TestRun_InvalidProductsAreReportedNotIndexed(t *testing.T) {
	products := append(catalogProducts(),
		domain.Product{ID: "", Name: "No ID"},
		domain.Product{ID: "neg", Name: "Negative", Price: -1},
	)
	eng := memory.New("")
	idx, obs := newIndexer(eng, products, IndexerConfig{})

	result, err := idx.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Indexed)
	assert.Equal(t, 2, result.Failed)
	for _, f := range result.Failures {
		assert.Equal(t, domain.FailureValidation, f.Type)
	}
	assert.Contains(t, result.Failures[1].Reason, "price")

	require.Len(t, obs.rejected, 2)
	assert.Equal(t, "neg", obs.rejected[1].ID)
	assert.Equal(t, domain.FailureValidation, obs.rejected[1].Type)
}

func TestRun_BatchSizeSplitsRequests(t *testing.T) {
	stub := &stubEngine{}
	obs := &recordingObserver{}
	products := append(catalogProducts(), domain.Product{ID: "4", Name: "Lamp"}, domain.Product{ID: "5", Name: "Rug"})
	idx := NewIndexerService(stub, &staticSource{products: products}, obs, IndexerConfig{BatchSize: 2}, newTestLogger())

	result, err := idx.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, stub.bulkSizes)
	assert.Equal(t, 5, result.Indexed)
	assert.Len(t, obs.bulks, 3)
}

func TestRun_EmptyCatalog(t *testing.T) {
	eng := memory.New("")
	idx, obs := newIndexer(eng, nil, IndexerConfig{})

	result, err := idx.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total())
	require.Len(t, obs.bulks, 1)

	exists, err := eng.IndexExists(context.Background())
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRun_SetupFailuresAbort(t *testing.T) {
	sourceErr := errors.New("catalog offline")

	tests := []struct {
		name   string
		engine *stubEngine
		source *staticSource
		want   error
	}{
		{"source", &stubEngine{}, &staticSource{err: sourceErr}, sourceErr},
		{"rebuild", &stubEngine{rebuildErr: errUnreachable}, &staticSource{products: catalogProducts()}, errUnreachable},
		{"bulk request", &stubEngine{bulkErr: errUnreachable}, &staticSource{products: catalogProducts()}, errUnreachable},
		{"refresh", &stubEngine{refreshErr: errUnreachable}, &staticSource{products: catalogProducts()}, errUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := &recordingObserver{}
			idx := NewIndexerService(tt.engine, tt.source, obs, IndexerConfig{}, newTestLogger())

			_, err := idx.Run(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRun_SourceFailureDoesNotTouchIndex(t *testing.T) {
	stub := &stubEngine{}
	idx := NewIndexerService(stub, &staticSource{err: errors.New("offline")}, &recordingObserver{}, IndexerConfig{}, newTestLogger())

	_, err := idx.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, stub.rebuilds)
}

func TestIndexAll_SingleModeTransportErrorAborts(t *testing.T) {
	stub := &stubEngine{createErr: errUnreachable}
	obs := &recordingObserver{}
	idx := NewIndexerService(stub, &staticSource{}, obs, IndexerConfig{Mode: ModeSingle}, newTestLogger())

	_, err := idx.IndexAll(context.Background(), catalogProducts())
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnreachable)
	assert.Equal(t, []string{"1"}, obs.failed)
}

func TestIndexAll_SingleModeDocumentRejectionContinues(t *testing.T) {
	stub := &stubEngine{createErrs: []error{
		nil,
		&domain.DocumentError{ID: "2", Type: "mapper_parsing_exception", Reason: "failed to parse field [price]"},
		nil,
	}}
	obs := &recordingObserver{}
	idx := NewIndexerService(stub, &staticSource{}, obs, IndexerConfig{Mode: ModeSingle}, newTestLogger())

	result, err := idx.IndexAll(context.Background(), catalogProducts())
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "3"}, stub.creates)
	assert.Equal(t, 2, result.Indexed)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, domain.BulkFailure{
		ID:     "2",
		Type:   "mapper_parsing_exception",
		Reason: "failed to parse field [price]",
	}, result.Failures[0])
	assert.Equal(t, []string{"1", "3"}, obs.indexed)
	assert.Equal(t, []string{"2"}, obs.failed)
}

func TestIndexProduct(t *testing.T) {
	eng := memory.New("")
	idx, obs := newIndexer(eng, nil, IndexerConfig{Mode: ModeSingle})
	ctx := context.Background()

	p := catalogProducts()[2]
	require.NoError(t, idx.IndexProduct(ctx, &p))
	assert.Equal(t, []string{"3"}, obs.indexed)

	err := idx.IndexProduct(ctx, &p)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.Equal(t, []string{"3"}, obs.failed)

	err = idx.IndexProduct(ctx, &domain.Product{ID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}
