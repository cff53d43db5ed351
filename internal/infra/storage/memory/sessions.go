package memory

import (
	"context"
	"sync"
	"time"

	domaincheckout "kase/internal/domain/checkout"
)

// SessionStore keeps live checkout sessions with TTL eviction. Closed or
// abandoned dialogs disappear after the TTL; an in-flight submission pins
// its entry until it resolves.
//
// The store owns its sessions: every session crossing the store boundary,
// in or out, is a clone. Callers can read what ByID or Update returned
// while another request mutates the stored session; the only shared path
// is Update's fn, which runs under the lock.
type SessionStore struct {
	mu    sync.Mutex
	items map[string]*sessionEntry
	ttl   time.Duration
	now   func() time.Time
}

type sessionEntry struct {
	session   *domaincheckout.Session
	expiresAt time.Time
}

// NewSessionStore builds an empty store. A non-positive ttl disables
// expiry.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		items: make(map[string]*sessionEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *SessionStore) ByID(ctx context.Context, id string) (*domaincheckout.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.live(id)
	if !ok {
		return nil, domaincheckout.ErrSessionNotFound
	}
	return entry.session.Clone(), nil
}

func (s *SessionStore) Save(ctx context.Context, session *domaincheckout.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[session.ID] = &sessionEntry{
		session:   session.Clone(),
		expiresAt: s.deadline(),
	}
	return nil
}

// Update runs fn with exclusive access to the session and refreshes its TTL.
// A clone is returned even when fn fails so callers can still snapshot the
// (unchanged) state without racing later writers.
func (s *SessionStore) Update(ctx context.Context, id string, fn func(*domaincheckout.Session) error) (*domaincheckout.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.live(id)
	if !ok {
		return nil, domaincheckout.ErrSessionNotFound
	}
	err := fn(entry.session)
	entry.expiresAt = s.deadline()
	return entry.session.Clone(), err
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

// PurgeExpired drops entries past their deadline and reports how many went.
func (s *SessionStore) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ttl <= 0 {
		return 0
	}
	now := s.now()
	purged := 0
	for id, entry := range s.items {
		if entry.expiresAt.After(now) {
			continue
		}
		if entry.session.Submitting() {
			continue
		}
		delete(s.items, id)
		purged++
	}
	return purged
}

// StartJanitor sweeps expired sessions until ctx is cancelled.
func (s *SessionStore) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.ttl <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.PurgeExpired()
			}
		}
	}()
}

func (s *SessionStore) live(id string) (*sessionEntry, bool) {
	entry, ok := s.items[id]
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && !entry.expiresAt.After(s.now()) && !entry.session.Submitting() {
		delete(s.items, id)
		return nil, false
	}
	return entry, true
}

func (s *SessionStore) deadline() time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(s.ttl)
}

var _ domaincheckout.SessionStore = (*SessionStore)(nil)
