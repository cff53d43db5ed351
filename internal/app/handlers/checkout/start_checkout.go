package checkout

import (
	"context"
	"errors"
	"time"

	domaincheckout "kase/internal/domain/checkout"
	domainlistings "kase/internal/domain/listings"
)

const startCheckoutKey = "checkout.start"

// StartCheckoutCommand opens a new checkout session for a listing. UserID is
// the authenticated shopper when present; empty means guest details will be
// collected at the Details step.
type StartCheckoutCommand struct {
	SessionID string
	ListingID string
	UserID    string
}

func (c StartCheckoutCommand) Key() string { return startCheckoutKey }

func (c StartCheckoutCommand) Validate() error {
	if c.SessionID == "" {
		return errors.New("checkout: session id required")
	}
	if c.ListingID == "" {
		return errors.New("checkout: listing id required")
	}
	return nil
}

type StartCheckoutResult struct {
	Snapshot domaincheckout.Snapshot `json:"snapshot"`
}

type StartCheckoutHandler struct {
	Sessions domaincheckout.SessionStore
	Catalog  domainlistings.Repository
}

func (h *StartCheckoutHandler) Handle(ctx context.Context, cmd StartCheckoutCommand) (*StartCheckoutResult, error) {
	listing, err := h.Catalog.ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	session, err := domaincheckout.NewSession(domaincheckout.CreateParams{
		ID:      cmd.SessionID,
		Listing: listing,
		UserID:  cmd.UserID,
		Now:     now,
	})
	if err != nil {
		return nil, err
	}
	if err := h.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &StartCheckoutResult{Snapshot: session.Snapshot(now)}, nil
}
