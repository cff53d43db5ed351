package checkout

import (
	"context"
	"errors"
)

var ErrSessionNotFound = errors.New("checkout: session not found")

// SessionStore keeps live checkout sessions, one per open booking dialog.
// Update runs fn with exclusive access to the session so transition attempts
// from concurrent requests on the same dialog serialize; when fn returns an
// error the mutation is still visible (sessions are in-memory drafts, not
// transactional state).
type SessionStore interface {
	ByID(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error)
	Delete(ctx context.Context, id string) error
}
