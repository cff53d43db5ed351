package checkout

import (
	"errors"
	"time"

	"kase/internal/domain/listings"
	"kase/internal/domain/pricing"
	"kase/internal/domain/shared/money"
)

// Step is the cursor of the checkout flow. The flow is strictly linear:
// Details -> Payment -> Receipt, with back allowed only from Payment.
type Step string

const (
	StepDetails Step = "DETAILS"
	StepPayment Step = "PAYMENT"
	StepReceipt Step = "RECEIPT"
)

// Session tracks one booking attempt for one listing from detail entry to
// receipt. One session exists per open booking dialog; it is never shared
// across listings. Changing the booking kind mid-flow is not supported, a
// new session is created per listing+kind pairing.
type Session struct {
	ID        string
	ListingID listings.ListingID
	Kind      listings.BookingKind
	UnitPrice money.Money
	GuestsCap int

	Step     Step
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
	Identity Identity

	// Record is set once a submission succeeds; LastError keeps the booking
	// API's message after a failed one so the UI can show it in place.
	Record    *BookingRecord
	LastError string

	submitting bool
	initial    Identity

	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateParams struct {
	ID      string
	Listing *listings.Listing
	// UserID seeds the identity when the shopper is already signed in;
	// empty means guest details must be collected before payment.
	UserID string
	Now    time.Time
}

// NewSession opens a fresh checkout at the Details step with a single guest.
func NewSession(params CreateParams) (*Session, error) {
	if params.ID == "" {
		return nil, errors.New("checkout: session id required")
	}
	if params.Listing == nil {
		return nil, errors.New("checkout: listing required")
	}
	if _, err := listings.ParseKind(string(params.Listing.Kind)); err != nil {
		return nil, err
	}
	now := params.Now.UTC()
	identity := Identity{UserID: params.UserID}
	return &Session{
		ID:        params.ID,
		ListingID: params.Listing.ID,
		Kind:      params.Listing.Kind,
		UnitPrice: params.Listing.UnitPrice,
		GuestsCap: params.Listing.Capacity(),
		Step:      StepDetails,
		Guests:    1,
		Identity:  identity,
		initial:   identity,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SetDates replaces the date selection. For stays both endpoints are
// expected; experiences and packages use checkIn as their single date.
// Edits are draft-only and never touch an in-flight submission, which works
// from the snapshot pinned when it started.
func (s *Session) SetDates(checkIn, checkOut time.Time, now time.Time) error {
	if s.Step == StepReceipt {
		return ErrInvalidStep
	}
	s.CheckIn = normalizeDate(checkIn)
	s.CheckOut = normalizeDate(checkOut)
	s.touch(now)
	return nil
}

// IncrementGuests steps the guest count up, silently ignoring attempts past
// the listing capacity.
func (s *Session) IncrementGuests(now time.Time) {
	if s.Step == StepReceipt {
		return
	}
	if s.Guests >= s.GuestsCap {
		return
	}
	s.Guests++
	s.touch(now)
}

// DecrementGuests steps the guest count down, silently ignoring attempts
// below one.
func (s *Session) DecrementGuests(now time.Time) {
	if s.Step == StepReceipt {
		return
	}
	if s.Guests <= 1 {
		return
	}
	s.Guests--
	s.touch(now)
}

// SetGuestDetails records the guest name and email drafts. It has no effect
// on submission requirements for authenticated shoppers.
func (s *Session) SetGuestDetails(name, email string, now time.Time) error {
	if s.Step == StepReceipt {
		return ErrInvalidStep
	}
	s.Identity.Name = name
	s.Identity.Email = email
	s.touch(now)
	return nil
}

// ContinueToPayment advances Details -> Payment when all detail inputs are
// valid; otherwise it returns a ValidationError and stays put. The total is
// never cached across the transition, Snapshot recomputes it on demand.
func (s *Session) ContinueToPayment(now time.Time) error {
	if s.Step != StepDetails {
		return ErrInvalidStep
	}
	if violations := s.validateDetails(now); len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	s.Step = StepPayment
	s.touch(now)
	return nil
}

// BackToDetails moves the cursor back without discarding any draft data.
func (s *Session) BackToDetails(now time.Time) error {
	if s.Step != StepPayment {
		return ErrInvalidStep
	}
	if s.submitting {
		return ErrSubmitInFlight
	}
	s.Step = StepDetails
	s.touch(now)
	return nil
}

// BeginSubmit validates the session, marks it submitting and returns the
// pinned BookingRequest the caller must send to the booking API. Repeat
// calls while a submission is in flight return ErrSubmitInFlight, which is
// the duplicate-booking guard. Later draft edits do not alter the returned
// request.
func (s *Session) BeginSubmit(now time.Time) (BookingRequest, error) {
	if s.Step != StepPayment {
		return BookingRequest{}, ErrInvalidStep
	}
	if s.submitting {
		return BookingRequest{}, ErrSubmitInFlight
	}
	if violations := s.validateDetails(now); len(violations) > 0 {
		return BookingRequest{}, &ValidationError{Violations: violations}
	}
	total, err := pricing.Total(s.Kind, s.UnitPrice, s.Nights(), s.Guests)
	if err != nil {
		return BookingRequest{}, err
	}
	req := BookingRequest{
		ListingID: s.ListingID,
		Kind:      s.Kind,
		CheckIn:   s.CheckIn,
		CheckOut:  s.CheckOut,
		Guests:    s.Guests,
		Total:     total,
		Identity:  s.Identity,
	}
	s.submitting = true
	s.LastError = ""
	s.touch(now)
	return req, nil
}

// CompleteSubmit stores the confirmed record and advances to Receipt.
func (s *Session) CompleteSubmit(record BookingRecord, now time.Time) error {
	if !s.submitting {
		return ErrNotSubmitting
	}
	s.submitting = false
	s.Record = &record
	s.Step = StepReceipt
	s.touch(now)
	return nil
}

// FailSubmit resolves a failed submission: the session stays in Payment with
// its drafts untouched so the shopper can correct input and retry, and the
// booking API's message is kept for display.
func (s *Session) FailSubmit(message string, now time.Time) error {
	if !s.submitting {
		return ErrNotSubmitting
	}
	s.submitting = false
	s.LastError = message
	s.touch(now)
	return nil
}

// Reset returns the session to a fresh Details draft, discarding dates,
// guest count, guest details, record and errors. A signed-in identity
// survives the reset. Used on the Receipt "done" exit and on reuse after
// cancel.
func (s *Session) Reset(now time.Time) error {
	if s.submitting {
		return ErrSubmitInFlight
	}
	s.Step = StepDetails
	s.CheckIn = time.Time{}
	s.CheckOut = time.Time{}
	s.Guests = 1
	s.Identity = s.initial
	s.Record = nil
	s.LastError = ""
	s.touch(now)
	return nil
}

// Nights recomputes the billable nights from the current drafts.
func (s *Session) Nights() int {
	return pricing.Nights(s.Kind, s.CheckIn, s.CheckOut)
}

// Total recomputes the total from the current drafts. It is never cached so
// guest count changes cannot leave a stale price behind.
func (s *Session) Total() (money.Money, error) {
	return pricing.Total(s.Kind, s.UnitPrice, s.Nights(), s.Guests)
}

// Submitting reports whether a booking request is in flight.
func (s *Session) Submitting() bool {
	return s.submitting
}

// Clone returns an independent copy of the session, record included.
// Stores hand clones across their lock boundary so readers never share
// memory with a session a concurrent writer is mutating.
func (s *Session) Clone() *Session {
	clone := *s
	if s.Record != nil {
		record := *s.Record
		clone.Record = &record
	}
	return &clone
}

// SafeToNavigate reports whether the caller may move away from the current
// step (back, cancel, close) without abandoning an in-flight submission.
func (s *Session) SafeToNavigate() bool {
	return !s.submitting
}

// Snapshot captures everything a UI needs to render the current step.
type Snapshot struct {
	ID             string
	ListingID      listings.ListingID
	Kind           listings.BookingKind
	Step           Step
	CheckIn        time.Time
	CheckOut       time.Time
	Guests         int
	GuestsCap      int
	Identity       Identity
	Nights         int
	Total          money.Money
	Blockers       []FieldError
	Submitting     bool
	SafeToNavigate bool
	LastError      string
	Record         *BookingRecord
}

// Snapshot recomputes nights, total and blocking reasons from the current
// drafts; it is safe to call after every transition attempt.
func (s *Session) Snapshot(now time.Time) Snapshot {
	total, _ := s.Total()
	return Snapshot{
		ID:             s.ID,
		ListingID:      s.ListingID,
		Kind:           s.Kind,
		Step:           s.Step,
		CheckIn:        s.CheckIn,
		CheckOut:       s.CheckOut,
		Guests:         s.Guests,
		GuestsCap:      s.GuestsCap,
		Identity:       s.Identity,
		Nights:         s.Nights(),
		Total:          total,
		Blockers:       s.validateDetails(now),
		Submitting:     s.submitting,
		SafeToNavigate: s.SafeToNavigate(),
		LastError:      s.LastError,
		Record:         s.Record,
	}
}

func (s *Session) validateDetails(now time.Time) []FieldError {
	var violations []FieldError
	if s.Kind.PerPerson() {
		if s.CheckIn.IsZero() || dayOf(s.CheckIn).Before(dayOf(now)) {
			violations = append(violations, FieldError{Field: "dates", Message: "select a valid date"})
		}
	} else {
		if s.CheckIn.IsZero() || s.CheckOut.IsZero() || !s.CheckOut.After(s.CheckIn) {
			violations = append(violations, FieldError{Field: "dates", Message: "select valid dates"})
		}
	}
	if !s.Identity.Resolved() {
		violations = append(violations, FieldError{Field: "guest_details", Message: "guest details required"})
	}
	if s.Guests < 1 || s.Guests > s.GuestsCap {
		violations = append(violations, FieldError{Field: "guests", Message: "guest count out of range"})
	}
	return violations
}

func (s *Session) touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

func normalizeDate(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.UTC()
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
