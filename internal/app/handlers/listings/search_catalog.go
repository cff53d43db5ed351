package listings

import (
	"context"

	domainlistings "kase/internal/domain/listings"
)

const searchCatalogKey = "listings.search"

// SearchCatalogQuery pages through the listing catalog with filters.
type SearchCatalogQuery struct {
	Params domainlistings.SearchParams
}

func (q SearchCatalogQuery) Key() string { return searchCatalogKey }

type SearchCatalogResult struct {
	Items []*domainlistings.Listing `json:"items"`
	Total int                       `json:"total"`
}

type SearchCatalogHandler struct {
	Catalog domainlistings.Repository
}

func (h *SearchCatalogHandler) Handle(ctx context.Context, query SearchCatalogQuery) (*SearchCatalogResult, error) {
	result, err := h.Catalog.Search(ctx, query.Params)
	if err != nil {
		return nil, err
	}
	return &SearchCatalogResult{Items: result.Items, Total: result.Total}, nil
}
