package checkout

import (
	"time"

	"kase/internal/domain/listings"
	"kase/internal/domain/shared/money"
)

// Identity is who the booking is for: an authenticated user (UserID set) or
// an anonymous guest identified by name and email. Exactly one form must be
// resolved before a booking can be submitted.
type Identity struct {
	UserID string
	Name   string
	Email  string
}

func (i Identity) Authenticated() bool {
	return i.UserID != ""
}

// Resolved reports whether the identity is complete enough to submit.
// Guest email format is a UI/API concern; only presence is required here.
func (i Identity) Resolved() bool {
	if i.Authenticated() {
		return true
	}
	return i.Name != "" && i.Email != ""
}

// BookingRequest is the outbound payload for the booking API. It is built
// once, when a submission starts, and is never altered by later edits to the
// session drafts.
type BookingRequest struct {
	ListingID listings.ListingID
	Kind      listings.BookingKind
	CheckIn   time.Time
	CheckOut  time.Time
	Guests    int
	Total     money.Money
	Identity  Identity
}

// BookingRecord is the server-confirmed result of a submission. The session
// holds it as the terminal artifact of the flow and never mutates it.
type BookingRecord struct {
	ID        string
	ListingID listings.ListingID
	CheckIn   time.Time
	CheckOut  time.Time
	Guests    int
	Total     money.Money
	CreatedAt time.Time
}
