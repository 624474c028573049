package sessions

// Repo is the key-value store sessions live in.
type Repo interface {
	// Get returns the session for sessionID, or ErrSessionNotFound /
	// ErrSessionExpired from internal/errors.
	Get(sessionID string) (*Session, error)

	// Put creates or replaces the session stored under sessionID
	Put(sessionID string, session *Session) error

	// Delete removes a session. Deleting an unknown session is not an error.
	Delete(sessionID string) error
}
