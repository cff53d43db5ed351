package dto

import "kase/internal/domain/listings"

type ListingSummary struct {
	ID           string   `json:"id"`
	Kind         string   `json:"kind"`
	Title        string   `json:"title"`
	City         string   `json:"city"`
	Country      string   `json:"country"`
	UnitPrice    MoneyDTO `json:"unit_price"`
	PriceDisplay string   `json:"price_display,omitempty"`
	PerPerson    bool     `json:"per_person"`
	GuestsCap    int      `json:"guests_cap"`
	Rating       float64  `json:"rating,omitempty"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
}

type ListingDetail struct {
	ListingSummary
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Photos      []string `json:"photos,omitempty"`
	Lat         float64  `json:"lat,omitempty"`
	Lon         float64  `json:"lon,omitempty"`
}

type ListingPage struct {
	Items []ListingSummary `json:"items"`
	Total int              `json:"total"`
}

func MapListingSummary(l *listings.Listing, priceDisplay string) ListingSummary {
	return ListingSummary{
		ID:           string(l.ID),
		Kind:         string(l.Kind),
		Title:        l.Title,
		City:         l.Location.City,
		Country:      l.Location.Country,
		UnitPrice:    MapMoney(l.UnitPrice),
		PriceDisplay: priceDisplay,
		PerPerson:    l.Kind.PerPerson(),
		GuestsCap:    l.Capacity(),
		Rating:       l.Rating,
		ThumbnailURL: l.ThumbnailURL,
	}
}

func MapListingDetail(l *listings.Listing, priceDisplay string) ListingDetail {
	return ListingDetail{
		ListingSummary: MapListingSummary(l, priceDisplay),
		Description:    l.Description,
		Tags:           l.Tags,
		Photos:         l.Photos,
		Lat:            l.Location.Lat,
		Lon:            l.Location.Lon,
	}
}
