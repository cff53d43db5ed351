package policies

import (
	"context"

	"kase/internal/domain/checkout"
)

// BookingPort is the external booking API collaborator. CreateBooking is the
// single network operation of the checkout flow.
type BookingPort interface {
	CreateBooking(ctx context.Context, req checkout.BookingRequest) (checkout.BookingRecord, error)
}

// BookingError carries the booking API's human-readable rejection message.
// The checkout flow propagates it verbatim so the shopper sees what the
// server said, e.g. "Listing unavailable".
type BookingError struct {
	Message string
}

func (e *BookingError) Error() string {
	if e.Message == "" {
		return "booking api: request rejected"
	}
	return e.Message
}
