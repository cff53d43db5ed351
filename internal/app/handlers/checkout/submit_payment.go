package checkout

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"kase/internal/app/middleware"
	"kase/internal/app/policies"
	domaincheckout "kase/internal/domain/checkout"
)

const submitPaymentKey = "checkout.submit"

// SubmitPaymentCommand fires the booking request for a session sitting at
// the Payment step. The Idempotency-Key header guards retried HTTP requests;
// the session's own submitting flag guards concurrent presses within one
// open dialog.
type SubmitPaymentCommand struct {
	SessionID       string
	IdempotencyKeyV string
}

func (c SubmitPaymentCommand) Key() string { return submitPaymentKey }

func (c SubmitPaymentCommand) Validate() error { return requireSession(c.SessionID) }

func (c SubmitPaymentCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c SubmitPaymentCommand) ResultPrototype() any { return &SubmitPaymentResult{} }

type SubmitPaymentResult struct {
	BookingID string                  `json:"booking_id,omitempty"`
	Snapshot  domaincheckout.Snapshot `json:"snapshot"`
}

type SubmitPaymentHandler struct {
	Sessions domaincheckout.SessionStore
	Booking  policies.BookingPort
	Events   policies.EventsPort
	Archive  policies.ArchivePort
	Logger   *slog.Logger
}

// Handle pins the booking request under the session lock, performs the only
// network call of the flow outside it, then resolves the submission. A
// failed call leaves the session in Payment with the API's message surfaced
// for display; drafts are untouched so the shopper can retry.
func (h *SubmitPaymentHandler) Handle(ctx context.Context, cmd SubmitPaymentCommand) (*SubmitPaymentResult, error) {
	now := time.Now().UTC()

	var req domaincheckout.BookingRequest
	session, err := h.Sessions.Update(ctx, cmd.SessionID, func(s *domaincheckout.Session) error {
		pinned, err := s.BeginSubmit(now)
		if err != nil {
			return err
		}
		req = pinned
		return nil
	})
	if err != nil {
		return nil, err
	}

	record, callErr := h.Booking.CreateBooking(ctx, req)
	resolvedAt := time.Now().UTC()

	if callErr != nil {
		message := submissionMessage(callErr)
		if _, err := h.Sessions.Update(ctx, cmd.SessionID, func(s *domaincheckout.Session) error {
			return s.FailSubmit(message, resolvedAt)
		}); err != nil {
			return nil, errors.Join(callErr, err)
		}
		return nil, callErr
	}

	session, err = h.Sessions.Update(ctx, cmd.SessionID, func(s *domaincheckout.Session) error {
		return s.CompleteSubmit(record, resolvedAt)
	})
	if err != nil {
		return nil, err
	}

	h.afterConfirm(ctx, cmd.SessionID, req, record, resolvedAt)

	return &SubmitPaymentResult{BookingID: record.ID, Snapshot: session.Snapshot(resolvedAt)}, nil
}

// afterConfirm runs the best-effort side effects of a confirmed booking.
// Neither a broker outage nor an archive failure may undo a booking the API
// already accepted, so failures are logged and swallowed.
func (h *SubmitPaymentHandler) afterConfirm(ctx context.Context, sessionID string, req domaincheckout.BookingRequest, record domaincheckout.BookingRecord, at time.Time) {
	if h.Events != nil {
		event := policies.CheckoutCompleted{
			SessionID:   sessionID,
			BookingID:   record.ID,
			ListingID:   req.ListingID,
			Kind:        req.Kind,
			CheckIn:     req.CheckIn,
			CheckOut:    req.CheckOut,
			Guests:      req.Guests,
			Total:       req.Total,
			CompletedAt: at,
		}
		if err := h.Events.PublishCheckoutCompleted(ctx, event); err != nil && h.Logger != nil {
			h.Logger.Warn("checkout completed event publish failed", "session_id", sessionID, "booking_id", record.ID, "error", err)
		}
	}
	if h.Archive != nil {
		if err := h.Archive.ArchiveReceipt(ctx, sessionID, record); err != nil && h.Logger != nil {
			h.Logger.Warn("receipt archive failed", "session_id", sessionID, "booking_id", record.ID, "error", err)
		}
	}
}

func submissionMessage(err error) string {
	var apiErr *policies.BookingError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

var _ middleware.IdempotentCommand = SubmitPaymentCommand{}
