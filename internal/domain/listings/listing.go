package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"kase/internal/domain/shared/money"
)

var (
	ErrTitleRequired   = errors.New("listings: title is required")
	ErrInvalidKind     = errors.New("listings: unknown booking kind")
	ErrUnitPrice       = errors.New("listings: unit price must be non-negative")
	ErrGuestsLimit     = errors.New("listings: guests limit must be at least 1")
	ErrListingNotFound = errors.New("listings: not found")
)

type ListingID string

// BookingKind selects the pricing formula and the date shape a booking needs:
// stays take a check-in/check-out range, experiences and packages a single date.
type BookingKind string

const (
	KindStay       BookingKind = "STAY"
	KindExperience BookingKind = "EXPERIENCE"
	KindPackage    BookingKind = "PACKAGE"
)

// DefaultGuestsLimit applies when a listing does not declare a capacity.
const DefaultGuestsLimit = 10

func ParseKind(raw string) (BookingKind, error) {
	switch BookingKind(strings.ToUpper(strings.TrimSpace(raw))) {
	case KindStay:
		return KindStay, nil
	case KindExperience:
		return KindExperience, nil
	case KindPackage:
		return KindPackage, nil
	default:
		return "", ErrInvalidKind
	}
}

// PerPerson reports whether the kind bills per person rather than per night.
func (k BookingKind) PerPerson() bool {
	return k == KindExperience || k == KindPackage
}

type Location struct {
	City    string
	Country string
	Lat     float64
	Lon     float64
}

// Listing is the catalog entry the checkout flow prices against. The catalog
// is read-only for this service; entries arrive from fixtures or the upstream
// listings API and are never mutated by a booking attempt.
type Listing struct {
	ID           ListingID
	Kind         BookingKind
	Title        string
	Description  string
	Location     Location
	UnitPrice    money.Money
	GuestsLimit  int
	Rating       float64
	Tags         []string
	ThumbnailURL string
	Photos       []string
	CreatedAt    time.Time
}

// Capacity returns the effective guest capacity, falling back to the default
// cap when the listing does not declare one.
func (l *Listing) Capacity() int {
	if l.GuestsLimit > 0 {
		return l.GuestsLimit
	}
	return DefaultGuestsLimit
}

func (l *Listing) Validate() error {
	if strings.TrimSpace(l.Title) == "" {
		return ErrTitleRequired
	}
	if _, err := ParseKind(string(l.Kind)); err != nil {
		return err
	}
	if l.UnitPrice.Amount < 0 {
		return ErrUnitPrice
	}
	if l.GuestsLimit < 0 {
		return ErrGuestsLimit
	}
	return nil
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
}
