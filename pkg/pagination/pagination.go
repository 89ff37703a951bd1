package pagination

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// MaxPages bounds Walk so a misbehaving server cannot keep it looping.
const MaxPages = 10000

// Params identifies one page of a paginated listing.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// DefaultParams returns the first page with the given size, falling back to
// 100 items when perPage is not positive.
func DefaultParams(perPage int) Params {
	if perPage <= 0 {
		perPage = 100
	}
	return Params{Page: 1, PerPage: perPage}
}

// Values encodes the params as page/per_page query parameters.
func (p Params) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(p.Page))
	v.Set("per_page", strconv.Itoa(p.PerPage))
	return v
}

// Next returns the params of the following page.
func (p Params) Next() Params {
	return Params{Page: p.Page + 1, PerPage: p.PerPage}
}

// Result is the envelope of one page of a paginated listing.
type Result[T any] struct {
	Data       []T `json:"data"`
	TotalCount int `json:"total_count"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}

// HasNext reports whether another page follows this one. An empty page ends
// the listing regardless of what total_pages claims.
func (r *Result[T]) HasNext() bool {
	return len(r.Data) > 0 && r.Page < r.TotalPages
}

// FetchFunc loads one page.
type FetchFunc[T any] func(ctx context.Context, params Params) (*Result[T], error)

// Walk fetches pages starting at first until the listing ends, and returns
// every item in order.
func Walk[T any](ctx context.Context, first Params, fetch FetchFunc[T]) ([]T, error) {
	var items []T
	params := first
	for i := 0; i < MaxPages; i++ {
		page, err := fetch(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", params.Page, err)
		}
		items = append(items, page.Data...)
		if !page.HasNext() {
			return items, nil
		}
		params = params.Next()
	}
	return nil, fmt.Errorf("pagination: gave up after %d pages", MaxPages)
}
