package checkout

import (
	"context"
	"time"

	domaincheckout "kase/internal/domain/checkout"
)

const getCheckoutKey = "checkout.get"

// GetCheckoutQuery fetches the current snapshot without mutating anything.
type GetCheckoutQuery struct {
	SessionID string
}

func (q GetCheckoutQuery) Key() string { return getCheckoutKey }

func (q GetCheckoutQuery) Validate() error { return requireSession(q.SessionID) }

type GetCheckoutResult struct {
	Snapshot domaincheckout.Snapshot `json:"snapshot"`
}

type GetCheckoutHandler struct {
	Sessions domaincheckout.SessionStore
}

func (h *GetCheckoutHandler) Handle(ctx context.Context, query GetCheckoutQuery) (*GetCheckoutResult, error) {
	session, err := h.Sessions.ByID(ctx, query.SessionID)
	if err != nil {
		return nil, err
	}
	return &GetCheckoutResult{Snapshot: session.Snapshot(time.Now().UTC())}, nil
}
