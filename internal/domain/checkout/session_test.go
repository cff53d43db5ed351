package checkout

import (
	"errors"
	"testing"
	"time"

	"kase/internal/domain/listings"
	"kase/internal/domain/shared/money"
)

var testNow = time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

func stayListing() *listings.Listing {
	return &listings.Listing{
		ID:          "lst-1",
		Kind:        listings.KindStay,
		Title:       "Seaside loft",
		UnitPrice:   money.Must(100, "USD"),
		GuestsLimit: 4,
	}
}

func experienceListing() *listings.Listing {
	return &listings.Listing{
		ID:        "exp-1",
		Kind:      listings.KindExperience,
		Title:     "Old town food walk",
		UnitPrice: money.Must(50, "USD"),
	}
}

func newStaySession(t *testing.T, userID string) *Session {
	t.Helper()
	s, err := NewSession(CreateParams{ID: "sess-1", Listing: stayListing(), UserID: userID, Now: testNow})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func toPayment(t *testing.T, s *Session) {
	t.Helper()
	if err := s.SetDates(testNow.AddDate(0, 0, 10), testNow.AddDate(0, 0, 13), testNow); err != nil {
		t.Fatalf("SetDates: %v", err)
	}
	if err := s.ContinueToPayment(testNow); err != nil {
		t.Fatalf("ContinueToPayment: %v", err)
	}
}

func TestNewSessionStartsAtDetails(t *testing.T) {
	s := newStaySession(t, "user-1")
	if s.Step != StepDetails {
		t.Errorf("Step = %v, want %v", s.Step, StepDetails)
	}
	if s.Guests != 1 {
		t.Errorf("Guests = %d, want 1", s.Guests)
	}
	if !s.Identity.Authenticated() {
		t.Error("identity should be authenticated when a user id is supplied")
	}
	if s.GuestsCap != 4 {
		t.Errorf("GuestsCap = %d, want 4", s.GuestsCap)
	}
}

func TestNewSessionDefaultsCapacity(t *testing.T) {
	s, err := NewSession(CreateParams{ID: "sess-2", Listing: experienceListing(), Now: testNow})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if s.GuestsCap != listings.DefaultGuestsLimit {
		t.Errorf("GuestsCap = %d, want %d", s.GuestsCap, listings.DefaultGuestsLimit)
	}
}

func TestStayScenarioThreeNights(t *testing.T) {
	s := newStaySession(t, "user-1")
	checkIn := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)
	if err := s.SetDates(checkIn, checkOut, testNow); err != nil {
		t.Fatalf("SetDates: %v", err)
	}
	s.IncrementGuests(testNow)
	if got := s.Nights(); got != 3 {
		t.Errorf("Nights = %d, want 3", got)
	}
	total, err := s.Total()
	if err != nil {
		t.Fatalf("Total: %v", err)
	}
	if total != money.Must(300, "USD") {
		t.Errorf("Total = %+v, want 300 USD", total)
	}
}

func TestExperienceScenarioPerPerson(t *testing.T) {
	s, err := NewSession(CreateParams{ID: "sess-3", Listing: experienceListing(), UserID: "user-1", Now: testNow})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := s.SetDates(testNow.AddDate(0, 0, 5), time.Time{}, testNow); err != nil {
		t.Fatalf("SetDates: %v", err)
	}
	s.IncrementGuests(testNow)
	s.IncrementGuests(testNow)
	if got := s.Nights(); got != 1 {
		t.Errorf("Nights = %d, want 1", got)
	}
	total, err := s.Total()
	if err != nil {
		t.Fatalf("Total: %v", err)
	}
	if total != money.Must(150, "USD") {
		t.Errorf("Total = %+v, want 150 USD", total)
	}
	if err := s.ContinueToPayment(testNow); err != nil {
		t.Errorf("ContinueToPayment: %v", err)
	}
}

func TestSameDayStayRejected(t *testing.T) {
	s := newStaySession(t, "user-1")
	day := testNow.AddDate(0, 0, 2)
	if err := s.SetDates(day, day, testNow); err != nil {
		t.Fatalf("SetDates: %v", err)
	}
	if got := s.Nights(); got != 0 {
		t.Errorf("Nights = %d, want 0", got)
	}
	total, _ := s.Total()
	if !total.IsZero() {
		t.Errorf("Total = %+v, want zero", total)
	}
	err := s.ContinueToPayment(testNow)
	ve, ok := AsValidation(err)
	if !ok {
		t.Fatalf("ContinueToPayment error = %v, want ValidationError", err)
	}
	if !hasViolation(ve, "dates", "select valid dates") {
		t.Errorf("violations = %+v, want dates blocker", ve.Violations)
	}
	if s.Step != StepDetails {
		t.Errorf("Step = %v, want Details after rejected transition", s.Step)
	}
}

func TestExperiencePastDateRejected(t *testing.T) {
	s, err := NewSession(CreateParams{ID: "sess-4", Listing: experienceListing(), UserID: "user-1", Now: testNow})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := s.SetDates(testNow.AddDate(0, 0, -1), time.Time{}, testNow); err != nil {
		t.Fatalf("SetDates: %v", err)
	}
	if _, ok := AsValidation(s.ContinueToPayment(testNow)); !ok {
		t.Error("past-date experience should be rejected with a ValidationError")
	}
}

func TestGuestDetailsRequired(t *testing.T) {
	s := newStaySession(t, "")
	if err := s.SetDates(testNow.AddDate(0, 0, 10), testNow.AddDate(0, 0, 12), testNow); err != nil {
		t.Fatalf("SetDates: %v", err)
	}
	err := s.ContinueToPayment(testNow)
	ve, ok := AsValidation(err)
	if !ok {
		t.Fatalf("ContinueToPayment error = %v, want ValidationError", err)
	}
	if !hasViolation(ve, "guest_details", "guest details required") {
		t.Errorf("violations = %+v, want guest_details blocker", ve.Violations)
	}

	if err := s.SetGuestDetails("Ada Price", "ada@example.com", testNow); err != nil {
		t.Fatalf("SetGuestDetails: %v", err)
	}
	if err := s.ContinueToPayment(testNow); err != nil {
		t.Errorf("ContinueToPayment after guest details: %v", err)
	}
	if s.Step != StepPayment {
		t.Errorf("Step = %v, want Payment", s.Step)
	}
}

func TestGuestStepperClamps(t *testing.T) {
	s := newStaySession(t, "user-1")
	s.DecrementGuests(testNow)
	if s.Guests != 1 {
		t.Errorf("decrement below 1 changed guests to %d", s.Guests)
	}
	for i := 0; i < 10; i++ {
		s.IncrementGuests(testNow)
	}
	if s.Guests != 4 {
		t.Errorf("increment past capacity: guests = %d, want 4", s.Guests)
	}
	for i := 0; i < 10; i++ {
		s.DecrementGuests(testNow)
	}
	if s.Guests != 1 {
		t.Errorf("decrement floor: guests = %d, want 1", s.Guests)
	}
}

func TestStepTransitionsAreLinear(t *testing.T) {
	s := newStaySession(t, "user-1")

	// no forward skip from Details
	if _, err := s.BeginSubmit(testNow); !errors.Is(err, ErrInvalidStep) {
		t.Errorf("BeginSubmit from Details = %v, want ErrInvalidStep", err)
	}
	if err := s.BackToDetails(testNow); !errors.Is(err, ErrInvalidStep) {
		t.Errorf("BackToDetails from Details = %v, want ErrInvalidStep", err)
	}

	toPayment(t, s)
	if err := s.ContinueToPayment(testNow); !errors.Is(err, ErrInvalidStep) {
		t.Errorf("ContinueToPayment from Payment = %v, want ErrInvalidStep", err)
	}

	// back preserves drafts
	if err := s.BackToDetails(testNow); err != nil {
		t.Fatalf("BackToDetails: %v", err)
	}
	if s.CheckIn.IsZero() || s.CheckOut.IsZero() {
		t.Error("back discarded the date drafts")
	}
	if s.Step != StepDetails {
		t.Errorf("Step = %v, want Details", s.Step)
	}
}

func TestSubmitSuccessReachesReceipt(t *testing.T) {
	s := newStaySession(t, "user-1")
	toPayment(t, s)

	req, err := s.BeginSubmit(testNow)
	if err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	if req.Total != money.Must(300, "USD") {
		t.Errorf("request total = %+v, want 300 USD", req.Total)
	}
	if !s.Submitting() || s.SafeToNavigate() {
		t.Error("session should be submitting and unsafe to navigate")
	}

	record := BookingRecord{ID: "bkg-9", ListingID: s.ListingID, CheckIn: req.CheckIn, CheckOut: req.CheckOut, Guests: req.Guests, Total: req.Total}
	if err := s.CompleteSubmit(record, testNow); err != nil {
		t.Fatalf("CompleteSubmit: %v", err)
	}
	if s.Step != StepReceipt {
		t.Errorf("Step = %v, want Receipt", s.Step)
	}
	if s.Record == nil || s.Record.ID != "bkg-9" {
		t.Errorf("Record = %+v, want stored booking", s.Record)
	}
	if s.Submitting() {
		t.Error("submitting flag should clear on completion")
	}
}

func TestSubmitFailureStaysInPayment(t *testing.T) {
	s := newStaySession(t, "user-1")
	toPayment(t, s)

	if _, err := s.BeginSubmit(testNow); err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	if err := s.FailSubmit("Listing unavailable", testNow); err != nil {
		t.Fatalf("FailSubmit: %v", err)
	}
	if s.Step != StepPayment {
		t.Errorf("Step = %v, want Payment after failure", s.Step)
	}
	if s.Submitting() {
		t.Error("submitting flag should clear on failure")
	}
	if s.LastError != "Listing unavailable" {
		t.Errorf("LastError = %q, want %q", s.LastError, "Listing unavailable")
	}

	// retry is possible with drafts untouched
	if _, err := s.BeginSubmit(testNow); err != nil {
		t.Errorf("retry BeginSubmit: %v", err)
	}
	if s.LastError != "" {
		t.Error("starting a retry should clear the previous error")
	}
}

func TestDoubleSubmitGuard(t *testing.T) {
	s := newStaySession(t, "user-1")
	toPayment(t, s)

	if _, err := s.BeginSubmit(testNow); err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	if _, err := s.BeginSubmit(testNow); !errors.Is(err, ErrSubmitInFlight) {
		t.Errorf("second BeginSubmit = %v, want ErrSubmitInFlight", err)
	}
	if err := s.BackToDetails(testNow); !errors.Is(err, ErrSubmitInFlight) {
		t.Errorf("BackToDetails while submitting = %v, want ErrSubmitInFlight", err)
	}
	if err := s.Reset(testNow); !errors.Is(err, ErrSubmitInFlight) {
		t.Errorf("Reset while submitting = %v, want ErrSubmitInFlight", err)
	}
}

func TestSubmissionPinsRequestSnapshot(t *testing.T) {
	s := newStaySession(t, "user-1")
	toPayment(t, s)

	req, err := s.BeginSubmit(testNow)
	if err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	// edits after the call fired must not alter the in-flight request
	s.IncrementGuests(testNow)
	if err := s.SetDates(testNow.AddDate(0, 0, 20), testNow.AddDate(0, 0, 25), testNow); err != nil {
		t.Fatalf("SetDates: %v", err)
	}
	if req.Guests != 1 {
		t.Errorf("pinned request guests = %d, want 1", req.Guests)
	}
	if req.Total != money.Must(300, "USD") {
		t.Errorf("pinned request total = %+v, want 300 USD", req.Total)
	}
}

func TestResolveWithoutSubmitIsMisuse(t *testing.T) {
	s := newStaySession(t, "user-1")
	toPayment(t, s)
	if err := s.CompleteSubmit(BookingRecord{ID: "x"}, testNow); !errors.Is(err, ErrNotSubmitting) {
		t.Errorf("CompleteSubmit = %v, want ErrNotSubmitting", err)
	}
	if err := s.FailSubmit("boom", testNow); !errors.Is(err, ErrNotSubmitting) {
		t.Errorf("FailSubmit = %v, want ErrNotSubmitting", err)
	}
	if s.Step != StepPayment || s.Record != nil {
		t.Error("misuse must not corrupt the session")
	}
}

func TestReceiptResetYieldsFreshDraft(t *testing.T) {
	s := newStaySession(t, "user-1")
	toPayment(t, s)
	req, err := s.BeginSubmit(testNow)
	if err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	if err := s.CompleteSubmit(BookingRecord{ID: "bkg-1", Total: req.Total}, testNow); err != nil {
		t.Fatalf("CompleteSubmit: %v", err)
	}

	if err := s.Reset(testNow); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if s.Step != StepDetails {
		t.Errorf("Step = %v, want Details", s.Step)
	}
	if !s.CheckIn.IsZero() || !s.CheckOut.IsZero() {
		t.Error("dates should be cleared on reset")
	}
	if s.Guests != 1 {
		t.Errorf("Guests = %d, want 1", s.Guests)
	}
	if s.Record != nil || s.LastError != "" {
		t.Error("record and error should be discarded on reset")
	}
	if !s.Identity.Authenticated() {
		t.Error("signed-in identity should survive the reset")
	}
}

func TestSnapshotExposesBlockers(t *testing.T) {
	s := newStaySession(t, "")
	snap := s.Snapshot(testNow)
	if snap.Step != StepDetails {
		t.Errorf("snapshot step = %v, want Details", snap.Step)
	}
	if !hasBlocker(snap.Blockers, "dates") || !hasBlocker(snap.Blockers, "guest_details") {
		t.Errorf("blockers = %+v, want dates and guest_details", snap.Blockers)
	}
	if !snap.SafeToNavigate {
		t.Error("fresh session should be safe to navigate")
	}
}

func hasViolation(ve *ValidationError, field, message string) bool {
	for _, v := range ve.Violations {
		if v.Field == field && v.Message == message {
			return true
		}
	}
	return false
}

func hasBlocker(blockers []FieldError, field string) bool {
	for _, b := range blockers {
		if b.Field == field {
			return true
		}
	}
	return false
}
