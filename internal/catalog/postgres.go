package catalog

import (
	"context"
	"fmt"

	"github.com/utafrali/searchapp/internal/domain"
	"github.com/utafrali/searchapp/pkg/database"
)

// Postgres reads the products table.
type Postgres struct {
	db database.DBTX
}

// NewPostgres creates a source backed by db.
func NewPostgres(db database.DBTX) *Postgres {
	return &Postgres{db: db}
}

// Name returns "postgres".
func (p *Postgres) Name() string {
	return KindPostgres
}

// AllProducts returns every row of the products table ordered by id.
func (p *Postgres) AllProducts(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), COALESCE(image, ''), COALESCE(taxonomy, ''), COALESCE(price, 0)
		FROM products
		ORDER BY id`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("catalog: query products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var prod domain.Product
		if err := rows.Scan(
			&prod.ID,
			&prod.Name,
			&prod.Description,
			&prod.Image,
			&prod.Taxonomy,
			&prod.Price,
		); err != nil {
			return nil, fmt.Errorf("catalog: scan product: %w", err)
		}
		products = append(products, prod)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate products: %w", err)
	}

	return products, nil
}
