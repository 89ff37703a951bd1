package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/utafrali/searchapp/internal/domain"
	"github.com/utafrali/searchapp/pkg/httpclient"
	"github.com/utafrali/searchapp/pkg/pagination"
)

// Getter performs GET requests. *httpclient.BreakerClient satisfies it.
type Getter interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// Remote pages through the product service listing endpoint.
type Remote struct {
	client  Getter
	baseURL string
	perPage int
}

// NewRemote creates a source reading <baseURL>/api/v1/products.
func NewRemote(client Getter, baseURL string, perPage int) *Remote {
	return &Remote{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		perPage: perPage,
	}
}

// Name returns "remote".
func (r *Remote) Name() string {
	return KindRemote
}

// AllProducts walks every page of the listing.
func (r *Remote) AllProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := pagination.Walk(ctx, pagination.DefaultParams(r.perPage), r.fetchPage)
	if err != nil {
		return nil, fmt.Errorf("catalog: list remote products: %w", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (r *Remote) fetchPage(ctx context.Context, params pagination.Params) (*pagination.Result[domain.Product], error) {
	url := r.baseURL + "/api/v1/products?" + params.Values().Encode()

	resp, err := r.client.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "product-service")
	}

	var page pagination.Result[domain.Product]
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode page %d: %w", params.Page, err)
	}
	return &page, nil
}
