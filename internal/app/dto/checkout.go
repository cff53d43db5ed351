package dto

import (
	"time"

	"kase/internal/domain/checkout"
	"kase/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type FieldErrorDTO struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type IdentityDTO struct {
	UserID        string `json:"user_id,omitempty"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	Authenticated bool   `json:"authenticated"`
}

type BookingRecordDTO struct {
	ID        string     `json:"id"`
	ListingID string     `json:"listing_id"`
	CheckIn   time.Time  `json:"check_in"`
	CheckOut  *time.Time `json:"check_out,omitempty"`
	Guests    int        `json:"guests"`
	Total     MoneyDTO   `json:"total"`
	CreatedAt time.Time  `json:"created_at"`
}

// CheckoutSnapshot is the wire shape of a checkout session after every
// transition attempt; the front end renders the current step from it.
type CheckoutSnapshot struct {
	ID             string            `json:"id"`
	ListingID      string            `json:"listing_id"`
	Kind           string            `json:"kind"`
	Step           string            `json:"step"`
	CheckIn        *time.Time        `json:"check_in,omitempty"`
	CheckOut       *time.Time        `json:"check_out,omitempty"`
	Guests         int               `json:"guests"`
	GuestsCap      int               `json:"guests_cap"`
	Identity       IdentityDTO       `json:"identity"`
	Nights         int               `json:"nights"`
	Total          MoneyDTO          `json:"total"`
	TotalDisplay   string            `json:"total_display,omitempty"`
	Blockers       []FieldErrorDTO   `json:"blockers,omitempty"`
	Submitting     bool              `json:"submitting"`
	SafeToNavigate bool              `json:"safe_to_navigate"`
	Error          string            `json:"error,omitempty"`
	Record         *BookingRecordDTO `json:"record,omitempty"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{Amount: value.Amount, Currency: value.Currency}
}

func MapCheckoutSnapshot(snap checkout.Snapshot, totalDisplay string) CheckoutSnapshot {
	out := CheckoutSnapshot{
		ID:        snap.ID,
		ListingID: string(snap.ListingID),
		Kind:      string(snap.Kind),
		Step:      string(snap.Step),
		CheckIn:   optionalTime(snap.CheckIn),
		CheckOut:  optionalTime(snap.CheckOut),
		Guests:    snap.Guests,
		GuestsCap: snap.GuestsCap,
		Identity: IdentityDTO{
			UserID:        snap.Identity.UserID,
			Name:          snap.Identity.Name,
			Email:         snap.Identity.Email,
			Authenticated: snap.Identity.Authenticated(),
		},
		Nights:         snap.Nights,
		Total:          MapMoney(snap.Total),
		TotalDisplay:   totalDisplay,
		Submitting:     snap.Submitting,
		SafeToNavigate: snap.SafeToNavigate,
		Error:          snap.LastError,
	}
	for _, b := range snap.Blockers {
		out.Blockers = append(out.Blockers, FieldErrorDTO{Field: b.Field, Message: b.Message})
	}
	if snap.Record != nil {
		out.Record = mapBookingRecord(*snap.Record)
	}
	return out
}

func mapBookingRecord(rec checkout.BookingRecord) *BookingRecordDTO {
	return &BookingRecordDTO{
		ID:        rec.ID,
		ListingID: string(rec.ListingID),
		CheckIn:   rec.CheckIn,
		CheckOut:  optionalTime(rec.CheckOut),
		Guests:    rec.Guests,
		Total:     MapMoney(rec.Total),
		CreatedAt: rec.CreatedAt,
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
