package pricing

import (
	"errors"
	"math"
	"time"

	"kase/internal/domain/listings"
	"kase/internal/domain/shared/money"
)

// ErrUnsupportedKind indicates a booking kind this engine has no formula for.
// Hitting it is an integration defect, not a user input problem.
var ErrUnsupportedKind = errors.New("pricing: unsupported booking kind")

// Nights returns the billable night count for a date selection.
//
// Experiences and packages are priced per booking, not per elapsed night, so
// they always count as one unit. Stays bill each started night between
// check-in and check-out; an incomplete or inverted range yields zero, which
// callers treat as an invalid selection rather than a free stay.
func Nights(kind listings.BookingKind, checkIn, checkOut time.Time) int {
	if kind.PerPerson() {
		return 1
	}
	if checkIn.IsZero() || checkOut.IsZero() {
		return 0
	}
	nights := int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
	if nights < 0 {
		return 0
	}
	return nights
}

// Total computes the booking total in the listing's base currency.
//
// Stays multiply the nightly rate by nights; guest count does not affect a
// stay's price. Experiences and packages multiply the per-person rate by the
// guest count. A stay with zero nights totals zero so that an incomplete
// selection can never be submitted as a priced booking.
func Total(kind listings.BookingKind, unit money.Money, nights, guests int) (money.Money, error) {
	switch kind {
	case listings.KindExperience, listings.KindPackage:
		if guests < 0 {
			guests = 0
		}
		return unit.Multiply(int64(guests)), nil
	case listings.KindStay:
		if nights <= 0 {
			return unit.Zero(), nil
		}
		return unit.Multiply(int64(nights)), nil
	default:
		return money.Money{}, ErrUnsupportedKind
	}
}
