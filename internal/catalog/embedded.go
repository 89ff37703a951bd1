package catalog

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/utafrali/searchapp/internal/domain"
)

//go:embed products.yaml
var embeddedProducts []byte

// Embedded serves the small catalog compiled into the binary.
type Embedded struct{}

// NewEmbedded creates the built-in source.
func NewEmbedded() *Embedded {
	return &Embedded{}
}

// Name returns "embedded".
func (Embedded) Name() string {
	return KindEmbedded
}

// AllProducts decodes the built-in catalog.
func (Embedded) AllProducts(_ context.Context) ([]domain.Product, error) {
	products, err := decodeProducts(embeddedProducts)
	if err != nil {
		return nil, fmt.Errorf("catalog: decode embedded products: %w", err)
	}
	return products, nil
}
