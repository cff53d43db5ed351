package checkout

import (
	"context"
	"errors"
	"time"

	domaincheckout "kase/internal/domain/checkout"
)

const (
	updateDatesKey    = "checkout.update_dates"
	updateGuestsKey   = "checkout.update_guests"
	updateIdentityKey = "checkout.update_identity"
)

// SessionResult is the shared result of every draft edit and transition: the
// fresh snapshot the UI renders from.
type SessionResult struct {
	Snapshot domaincheckout.Snapshot `json:"snapshot"`
}

// UpdateDatesCommand replaces the date selection drafts. CheckOut stays zero
// for single-date kinds.
type UpdateDatesCommand struct {
	SessionID string
	CheckIn   time.Time
	CheckOut  time.Time
}

func (c UpdateDatesCommand) Key() string { return updateDatesKey }

func (c UpdateDatesCommand) Validate() error { return requireSession(c.SessionID) }

// GuestStep is a single stepper press.
type GuestStep string

const (
	GuestStepUp   GuestStep = "increment"
	GuestStepDown GuestStep = "decrement"
)

type UpdateGuestsCommand struct {
	SessionID string
	Step      GuestStep
}

func (c UpdateGuestsCommand) Key() string { return updateGuestsKey }

func (c UpdateGuestsCommand) Validate() error {
	if err := requireSession(c.SessionID); err != nil {
		return err
	}
	switch c.Step {
	case GuestStepUp, GuestStepDown:
		return nil
	default:
		return errors.New("checkout: unknown guest step")
	}
}

// UpdateIdentityCommand records guest name and email drafts.
type UpdateIdentityCommand struct {
	SessionID string
	Name      string
	Email     string
}

func (c UpdateIdentityCommand) Key() string { return updateIdentityKey }

func (c UpdateIdentityCommand) Validate() error { return requireSession(c.SessionID) }

type UpdateSessionHandler struct {
	Sessions domaincheckout.SessionStore
}

func (h *UpdateSessionHandler) HandleDates(ctx context.Context, cmd UpdateDatesCommand) (*SessionResult, error) {
	return h.mutate(ctx, cmd.SessionID, func(s *domaincheckout.Session, now time.Time) error {
		return s.SetDates(cmd.CheckIn, cmd.CheckOut, now)
	})
}

func (h *UpdateSessionHandler) HandleGuests(ctx context.Context, cmd UpdateGuestsCommand) (*SessionResult, error) {
	return h.mutate(ctx, cmd.SessionID, func(s *domaincheckout.Session, now time.Time) error {
		if cmd.Step == GuestStepUp {
			s.IncrementGuests(now)
		} else {
			s.DecrementGuests(now)
		}
		return nil
	})
}

func (h *UpdateSessionHandler) HandleIdentity(ctx context.Context, cmd UpdateIdentityCommand) (*SessionResult, error) {
	return h.mutate(ctx, cmd.SessionID, func(s *domaincheckout.Session, now time.Time) error {
		return s.SetGuestDetails(cmd.Name, cmd.Email, now)
	})
}

func (h *UpdateSessionHandler) mutate(ctx context.Context, id string, fn func(*domaincheckout.Session, time.Time) error) (*SessionResult, error) {
	now := time.Now().UTC()
	session, err := h.Sessions.Update(ctx, id, func(s *domaincheckout.Session) error {
		return fn(s, now)
	})
	if err != nil {
		return nil, err
	}
	return &SessionResult{Snapshot: session.Snapshot(now)}, nil
}

func requireSession(id string) error {
	if id == "" {
		return errors.New("checkout: session id required")
	}
	return nil
}
