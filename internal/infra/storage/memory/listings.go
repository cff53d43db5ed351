package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainlistings "kase/internal/domain/listings"
)

// ListingCatalog is an in-memory, read-mostly listing source. Entries arrive
// once from fixtures or the upstream listings API.
type ListingCatalog struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID]*domainlistings.Listing
}

// NewListingCatalog builds an empty catalog.
func NewListingCatalog() *ListingCatalog {
	return &ListingCatalog{
		items: make(map[domainlistings.ListingID]*domainlistings.Listing),
	}
}

// ByID returns a listing or listings.ErrListingNotFound.
func (r *ListingCatalog) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.items[id]
	if !ok {
		return nil, domainlistings.ErrListingNotFound
	}
	return listing, nil
}

// Save stores/updates a catalog entry.
func (r *ListingCatalog) Save(ctx context.Context, listing *domainlistings.Listing) error {
	if err := listing.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[listing.ID] = listing
	return nil
}

// Search returns listings that satisfy provided filters.
func (r *ListingCatalog) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := params.Normalized()
	matches := make([]*domainlistings.Listing, 0, len(r.items))
	for _, listing := range r.items {
		select {
		case <-ctx.Done():
			return domainlistings.SearchResult{}, ctx.Err()
		default:
		}

		if len(opts.Kinds) > 0 && !kindIncluded(listing.Kind, opts.Kinds) {
			continue
		}
		if opts.City != "" && !strings.EqualFold(listing.Location.City, opts.City) {
			continue
		}
		if opts.Country != "" && !strings.EqualFold(listing.Location.Country, opts.Country) {
			continue
		}
		if opts.Query != "" && !matchQuery(listing, opts.Query) {
			continue
		}
		if opts.MinGuests > 0 && listing.Capacity() < opts.MinGuests {
			continue
		}
		if opts.PriceMin > 0 && listing.UnitPrice.Amount < opts.PriceMin {
			continue
		}
		if opts.PriceMax > 0 && listing.UnitPrice.Amount > opts.PriceMax {
			continue
		}
		if !tokensMatch(listing.Tags, opts.Tags) {
			continue
		}
		matches = append(matches, listing)
	}

	sort.Slice(matches, func(i, j int) bool {
		switch opts.Sort {
		case domainlistings.SortByPriceDesc:
			if matches[i].UnitPrice.Amount == matches[j].UnitPrice.Amount {
				return matches[i].Rating > matches[j].Rating
			}
			return matches[i].UnitPrice.Amount > matches[j].UnitPrice.Amount
		case domainlistings.SortByRating:
			if matches[i].Rating == matches[j].Rating {
				return matches[i].UnitPrice.Amount < matches[j].UnitPrice.Amount
			}
			return matches[i].Rating > matches[j].Rating
		case domainlistings.SortByNewest:
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		default:
			if matches[i].UnitPrice.Amount == matches[j].UnitPrice.Amount {
				return matches[i].Rating > matches[j].Rating
			}
			return matches[i].UnitPrice.Amount < matches[j].UnitPrice.Amount
		}
	})

	total := len(matches)
	if opts.Offset >= total {
		return domainlistings.SearchResult{Items: nil, Total: total}, nil
	}
	end := opts.Offset + opts.Limit
	if end > total {
		end = total
	}
	page := make([]*domainlistings.Listing, end-opts.Offset)
	copy(page, matches[opts.Offset:end])
	return domainlistings.SearchResult{Items: page, Total: total}, nil
}

func kindIncluded(kind domainlistings.BookingKind, kinds []domainlistings.BookingKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func matchQuery(listing *domainlistings.Listing, query string) bool {
	haystack := strings.ToLower(listing.Title + " " + listing.Description + " " + listing.Location.City + " " + listing.Location.Country)
	return strings.Contains(haystack, query)
}

func tokensMatch(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(have))
	for _, token := range have {
		set[strings.ToLower(token)] = struct{}{}
	}
	for _, token := range want {
		if _, ok := set[token]; !ok {
			return false
		}
	}
	return true
}

var _ domainlistings.Repository = (*ListingCatalog)(nil)
