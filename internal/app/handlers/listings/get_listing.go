package listings

import (
	"context"
	"errors"

	domainlistings "kase/internal/domain/listings"
)

const getListingKey = "listings.get"

type GetListingQuery struct {
	ListingID string
}

func (q GetListingQuery) Key() string { return getListingKey }

func (q GetListingQuery) Validate() error {
	if q.ListingID == "" {
		return errors.New("listings: listing id required")
	}
	return nil
}

type GetListingResult struct {
	Listing *domainlistings.Listing `json:"listing"`
}

type GetListingHandler struct {
	Catalog domainlistings.Repository
}

func (h *GetListingHandler) Handle(ctx context.Context, query GetListingQuery) (*GetListingResult, error) {
	listing, err := h.Catalog.ByID(ctx, domainlistings.ListingID(query.ListingID))
	if err != nil {
		return nil, err
	}
	return &GetListingResult{Listing: listing}, nil
}
