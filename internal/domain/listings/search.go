package listings

import "strings"

// CatalogSort defines a supported ordering.
type CatalogSort string

const (
	SortByPriceAsc  CatalogSort = "price_asc"
	SortByPriceDesc CatalogSort = "price_desc"
	SortByRating    CatalogSort = "rating_desc"
	SortByNewest    CatalogSort = "newest"

	defaultSearchLimit = 24
	maxSearchLimit     = 60
)

// SearchParams describe catalog filters and paging options.
type SearchParams struct {
	Kinds     []BookingKind
	City      string
	Country   string
	Query     string
	Tags      []string
	MinGuests int
	PriceMin  int64
	PriceMax  int64
	Sort      CatalogSort
	Limit     int
	Offset    int
}

// Normalized returns a sanitized copy of params.
func (p SearchParams) Normalized() SearchParams {
	normalized := p
	normalized.City = strings.TrimSpace(strings.ToLower(normalized.City))
	normalized.Country = strings.TrimSpace(strings.ToLower(normalized.Country))
	normalized.Query = strings.TrimSpace(strings.ToLower(normalized.Query))
	normalized.Tags = normalizeTokens(normalized.Tags)
	normalized.Kinds = normalizeKinds(normalized.Kinds)
	if normalized.MinGuests < 0 {
		normalized.MinGuests = 0
	}
	if normalized.PriceMin < 0 {
		normalized.PriceMin = 0
	}
	if normalized.PriceMax > 0 && normalized.PriceMax < normalized.PriceMin {
		normalized.PriceMax = 0
	}
	if normalized.Limit <= 0 {
		normalized.Limit = defaultSearchLimit
	}
	if normalized.Limit > maxSearchLimit {
		normalized.Limit = maxSearchLimit
	}
	if normalized.Offset < 0 {
		normalized.Offset = 0
	}
	switch normalized.Sort {
	case SortByPriceAsc, SortByPriceDesc, SortByRating, SortByNewest:
	default:
		normalized.Sort = SortByPriceAsc
	}
	return normalized
}

// SearchResult carries one catalog page plus the unpaged match count.
type SearchResult struct {
	Items []*Listing
	Total int
}

func normalizeTokens(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.TrimSpace(strings.ToLower(t))
		if t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func normalizeKinds(kinds []BookingKind) []BookingKind {
	if len(kinds) == 0 {
		return nil
	}
	out := make([]BookingKind, 0, len(kinds))
	for _, k := range kinds {
		parsed, err := ParseKind(string(k))
		if err != nil {
			continue
		}
		out = append(out, parsed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
