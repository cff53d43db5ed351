package checkout

import (
	"context"
	"time"

	domaincheckout "kase/internal/domain/checkout"
)

const (
	continueKey = "checkout.continue"
	backKey     = "checkout.back"
	resetKey    = "checkout.reset"
	closeKey    = "checkout.close"
)

// ContinueToPaymentCommand attempts the Details -> Payment transition.
type ContinueToPaymentCommand struct {
	SessionID string
}

func (c ContinueToPaymentCommand) Key() string { return continueKey }

func (c ContinueToPaymentCommand) Validate() error { return requireSession(c.SessionID) }

// BackToDetailsCommand moves Payment -> Details preserving all drafts.
type BackToDetailsCommand struct {
	SessionID string
}

func (c BackToDetailsCommand) Key() string { return backKey }

func (c BackToDetailsCommand) Validate() error { return requireSession(c.SessionID) }

// ResetCheckoutCommand is the Receipt "done" exit: the session returns to a
// fresh Details draft, ready for the next booking on the same dialog.
type ResetCheckoutCommand struct {
	SessionID string
}

func (c ResetCheckoutCommand) Key() string { return resetKey }

func (c ResetCheckoutCommand) Validate() error { return requireSession(c.SessionID) }

// CloseCheckoutCommand discards the session entirely; valid from any step.
type CloseCheckoutCommand struct {
	SessionID string
}

func (c CloseCheckoutCommand) Key() string { return closeKey }

func (c CloseCheckoutCommand) Validate() error { return requireSession(c.SessionID) }

type CloseCheckoutResult struct {
	Closed bool `json:"closed"`
}

type NavigateHandler struct {
	Sessions domaincheckout.SessionStore
}

func (h *NavigateHandler) HandleContinue(ctx context.Context, cmd ContinueToPaymentCommand) (*SessionResult, error) {
	return h.transition(ctx, cmd.SessionID, (*domaincheckout.Session).ContinueToPayment)
}

func (h *NavigateHandler) HandleBack(ctx context.Context, cmd BackToDetailsCommand) (*SessionResult, error) {
	return h.transition(ctx, cmd.SessionID, (*domaincheckout.Session).BackToDetails)
}

func (h *NavigateHandler) HandleReset(ctx context.Context, cmd ResetCheckoutCommand) (*SessionResult, error) {
	return h.transition(ctx, cmd.SessionID, (*domaincheckout.Session).Reset)
}

func (h *NavigateHandler) HandleClose(ctx context.Context, cmd CloseCheckoutCommand) (*CloseCheckoutResult, error) {
	session, err := h.Sessions.ByID(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	if !session.SafeToNavigate() {
		return nil, domaincheckout.ErrSubmitInFlight
	}
	if err := h.Sessions.Delete(ctx, cmd.SessionID); err != nil {
		return nil, err
	}
	return &CloseCheckoutResult{Closed: true}, nil
}

func (h *NavigateHandler) transition(ctx context.Context, id string, fn func(*domaincheckout.Session, time.Time) error) (*SessionResult, error) {
	now := time.Now().UTC()
	session, err := h.Sessions.Update(ctx, id, func(s *domaincheckout.Session) error {
		return fn(s, now)
	})
	if err != nil {
		return nil, err
	}
	return &SessionResult{Snapshot: session.Snapshot(now)}, nil
}
