package search

import (
	"context"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"storefront.GO/client/filters"
	"storefront.GO/client/request"
)

const (
	productsPath     = "/api/products"
	filterCountsPath = "/api/products/filter-counts"
)

// Product is one catalog item as listed by the API. Price is in the canonical currency.
type Product struct {
	ID                int             `json:"id"`
	Name              string          `json:"name"`
	Brand             string          `json:"brand"`
	Gender            string          `json:"gender"`
	Concentration     string          `json:"concentration"`
	Price             decimal.Decimal `json:"price"`
	Rating            float64         `json:"rating"`
	FragranceFamilyID int             `json:"fragranceFamilyId"`
	LongevityID       int             `json:"longevityId"`
	SillageID         int             `json:"sillageId"`
	SeasonIDs         []int           `json:"seasonIds"`
	OccasionIDs       []int           `json:"occasionIds"`
	Notes             []string        `json:"notes"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// ProductPage is one page of results.
type ProductPage struct {
	Items      []Product `json:"items"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
}

// Catalog is the remote product catalog.
type Catalog interface {
	ListProducts(ctx context.Context, params url.Values) (ProductPage, error)
	FilterCounts(ctx context.Context, params url.Values) (filters.Counts, error)
}

// APICatalog is the Catalog served by the storefront API.
type APICatalog struct {
	api *request.Client
}

// NewAPICatalog wraps api.
func NewAPICatalog(api *request.Client) *APICatalog {
	return &APICatalog{api: api}
}

// ListProducts fetches one page of products.
func (c *APICatalog) ListProducts(ctx context.Context, params url.Values) (ProductPage, error) {
	var page ProductPage
	err := c.api.Get(ctx, productsPath, params, &page)
	return page, err
}

// FilterCounts fetches the per-facet counts for the selection in params.
func (c *APICatalog) FilterCounts(ctx context.Context, params url.Values) (filters.Counts, error) {
	var counts filters.Counts
	err := c.api.Get(ctx, filterCountsPath, params, &counts)
	return counts, err
}
