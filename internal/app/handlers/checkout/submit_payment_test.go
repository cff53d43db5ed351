package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"kase/internal/app/policies"
	domaincheckout "kase/internal/domain/checkout"
	"kase/internal/domain/listings"
	"kase/internal/domain/shared/money"
	"kase/internal/infra/storage/memory"
)

type stubBookingPort struct {
	calls   int
	lastReq domaincheckout.BookingRequest
	record  domaincheckout.BookingRecord
	err     error
}

func (s *stubBookingPort) CreateBooking(ctx context.Context, req domaincheckout.BookingRequest) (domaincheckout.BookingRecord, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return domaincheckout.BookingRecord{}, s.err
	}
	return s.record, nil
}

func paymentReadySession(t *testing.T, store *memory.SessionStore) *domaincheckout.Session {
	t.Helper()
	listing := &listings.Listing{
		ID:          "stay-1",
		Kind:        listings.KindStay,
		Title:       "Harbor loft",
		UnitPrice:   money.Must(10000, "USD"),
		GuestsLimit: 4,
	}
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	session, err := domaincheckout.NewSession(domaincheckout.CreateParams{
		ID:      "sess-1",
		Listing: listing,
		UserID:  "user-9",
		Now:     now,
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	checkIn := now.AddDate(0, 0, 1)
	if err := session.SetDates(checkIn, checkIn.AddDate(0, 0, 3), now); err != nil {
		t.Fatalf("SetDates: %v", err)
	}
	if err := session.ContinueToPayment(now); err != nil {
		t.Fatalf("ContinueToPayment: %v", err)
	}
	if err := store.Save(context.Background(), session); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return session
}

func TestSubmitPaymentConfirmsBooking(t *testing.T) {
	store := memory.NewSessionStore(time.Hour)
	paymentReadySession(t, store)
	port := &stubBookingPort{
		record: domaincheckout.BookingRecord{
			ID:        "bk-42",
			ListingID: "stay-1",
			Guests:    1,
			Total:     money.Must(30000, "USD"),
			CreatedAt: time.Now().UTC(),
		},
	}
	handler := &SubmitPaymentHandler{Sessions: store, Booking: port}

	result, err := handler.Handle(context.Background(), SubmitPaymentCommand{SessionID: "sess-1"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if result.BookingID != "bk-42" {
		t.Errorf("BookingID = %q, want %q", result.BookingID, "bk-42")
	}
	if result.Snapshot.Step != domaincheckout.StepReceipt {
		t.Errorf("Step = %q, want %q", result.Snapshot.Step, domaincheckout.StepReceipt)
	}
	if port.calls != 1 {
		t.Errorf("CreateBooking calls = %d, want 1", port.calls)
	}
	if port.lastReq.Total.Amount != 30000 {
		t.Errorf("pinned total = %d, want 30000", port.lastReq.Total.Amount)
	}

	session, err := store.ByID(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if session.Record == nil || session.Record.ID != "bk-42" {
		t.Errorf("stored record = %+v, want bk-42", session.Record)
	}
}

func TestSubmitPaymentFailureStaysOnPayment(t *testing.T) {
	store := memory.NewSessionStore(time.Hour)
	paymentReadySession(t, store)
	port := &stubBookingPort{err: &policies.BookingError{Message: "Listing unavailable"}}
	handler := &SubmitPaymentHandler{Sessions: store, Booking: port}

	_, err := handler.Handle(context.Background(), SubmitPaymentCommand{SessionID: "sess-1"})
	var apiErr *policies.BookingError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Handle error = %v, want BookingError", err)
	}

	session, err := store.ByID(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if session.Step != domaincheckout.StepPayment {
		t.Errorf("Step = %q, want %q", session.Step, domaincheckout.StepPayment)
	}
	if session.LastError != "Listing unavailable" {
		t.Errorf("LastError = %q, want %q", session.LastError, "Listing unavailable")
	}
	if session.Submitting() {
		t.Error("session still marked submitting after failure")
	}
}

func TestSubmitPaymentRejectsSecondSubmit(t *testing.T) {
	store := memory.NewSessionStore(time.Hour)
	session := paymentReadySession(t, store)
	if _, err := session.BeginSubmit(time.Now().UTC()); err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	if err := store.Save(context.Background(), session); err != nil {
		t.Fatalf("Save: %v", err)
	}

	port := &stubBookingPort{}
	handler := &SubmitPaymentHandler{Sessions: store, Booking: port}

	_, err := handler.Handle(context.Background(), SubmitPaymentCommand{SessionID: "sess-1"})
	if !errors.Is(err, domaincheckout.ErrSubmitInFlight) {
		t.Fatalf("Handle error = %v, want ErrSubmitInFlight", err)
	}
	if port.calls != 0 {
		t.Errorf("CreateBooking calls = %d, want 0", port.calls)
	}
}

func TestSubmitPaymentUnknownSession(t *testing.T) {
	store := memory.NewSessionStore(time.Hour)
	handler := &SubmitPaymentHandler{Sessions: store, Booking: &stubBookingPort{}}

	_, err := handler.Handle(context.Background(), SubmitPaymentCommand{SessionID: "missing"})
	if !errors.Is(err, domaincheckout.ErrSessionNotFound) {
		t.Fatalf("Handle error = %v, want ErrSessionNotFound", err)
	}
}
