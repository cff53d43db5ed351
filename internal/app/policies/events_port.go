package policies

import (
	"context"
	"time"

	"kase/internal/domain/checkout"
	"kase/internal/domain/listings"
	"kase/internal/domain/shared/money"
)

// CheckoutCompleted is published after a booking is confirmed by the API.
type CheckoutCompleted struct {
	SessionID   string               `json:"session_id"`
	BookingID   string               `json:"booking_id"`
	ListingID   listings.ListingID   `json:"listing_id"`
	Kind        listings.BookingKind `json:"kind"`
	CheckIn     time.Time            `json:"check_in"`
	CheckOut    time.Time            `json:"check_out,omitempty"`
	Guests      int                  `json:"guests"`
	Total       money.Money          `json:"total"`
	CompletedAt time.Time            `json:"completed_at"`
}

// EventsPort publishes checkout lifecycle events. Publishing is best-effort:
// a broker outage must never fail a booking that the API already accepted.
type EventsPort interface {
	PublishCheckoutCompleted(ctx context.Context, event CheckoutCompleted) error
}

// ArchivePort stores a durable copy of the confirmed booking record.
type ArchivePort interface {
	ArchiveReceipt(ctx context.Context, sessionID string, record checkout.BookingRecord) error
}
