// Package catalog loads the products the indexer writes into the search index.
package catalog

import (
	"context"

	"github.com/utafrali/searchapp/internal/domain"
)

// Source kinds accepted by configuration.
const (
	KindEmbedded = "embedded"
	KindFile     = "file"
	KindPostgres = "postgres"
	KindRemote   = "remote"
)

// Source yields the complete product collection to index.
type Source interface {
	// Name identifies the source in logs.
	Name() string

	// AllProducts returns every product in source order.
	AllProducts(ctx context.Context) ([]domain.Product, error)
}

// document is the on-disk layout accepted by the file based sources: either
// a bare list of products or an object with a "products" list.
type document struct {
	Products []domain.Product `yaml:"products"`
}

// IsKnownKind reports whether kind names a supported source.
func IsKnownKind(kind string) bool {
	switch kind {
	case KindEmbedded, KindFile, KindPostgres, KindRemote:
		return true
	}
	return false
}
