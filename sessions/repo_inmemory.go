package sessions

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-mail-gateway/internal/errors"
	"github.com/rs/zerolog/log"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is an in-memory implementation of Repo with idle expiry.
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	maxIdle  time.Duration
	now      func() time.Time
}

// NewInMemoryRepo creates a store that forgets sessions not accessed within
// maxIdle. A zero maxIdle disables expiry.
func NewInMemoryRepo(maxIdle time.Duration) *InMemoryRepo {
	return &InMemoryRepo{
		sessions: make(map[string]*Session),
		maxIdle:  maxIdle,
		now:      time.Now,
	}
}

// WithClock replaces the time source, used by tests.
func (r *InMemoryRepo) WithClock(now func() time.Time) *InMemoryRepo {
	r.now = now
	return r
}

// Get retrieves a session and refreshes its last access time
func (r *InMemoryRepo) Get(sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidSession, "[sessions Get] sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}

	now := r.now()
	if r.expired(session, now) {
		delete(r.sessions, sessionID)
		return nil, apperrors.ErrSessionExpired
	}
	session.LastAccessedAt = now

	return session.clone(), nil
}

// Put creates or updates a session
func (r *InMemoryRepo) Put(sessionID string, session *Session) error {
	if sessionID == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidSession, "[sessions Put] sessionID is required")
	}
	if session == nil {
		return apperrors.Wrapf(apperrors.ErrInvalidSession, "[sessions Put] session is required")
	}

	now := r.now()
	stored := session.clone()
	stored.ID = sessionID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.LastAccessedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[sessionID] = stored
	return nil
}

// Delete removes a session
func (r *InMemoryRepo) Delete(sessionID string) error {
	if sessionID == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidSession, "[sessions Delete] sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
	return nil
}

// Len returns the number of stored sessions, including ones that have
// expired but not yet been swept.
func (r *InMemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// DeleteExpiredSessions removes every session idle past the expiry window
// and returns how many were removed.
func (r *InMemoryRepo) DeleteExpiredSessions() int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, session := range r.sessions {
		if r.expired(session, now) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper removes expired sessions every interval until ctx is done.
func (r *InMemoryRepo) StartSweeper(ctx context.Context, interval time.Duration) {
	if r.maxIdle <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.DeleteExpiredSessions(); n > 0 {
				log.Debug().Int("removed", n).Msg("Expired sessions swept")
			}
		}
	}
}

func (r *InMemoryRepo) expired(session *Session, now time.Time) bool {
	if r.maxIdle <= 0 {
		return false
	}
	return now.Sub(session.LastAccessedAt) > r.maxIdle
}
