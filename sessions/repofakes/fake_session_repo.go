package repofakes

import (
	"sync"

	apperrors "github.com/jrsteele09/go-mail-gateway/internal/errors"
	"github.com/jrsteele09/go-mail-gateway/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo is a map-backed Repo whose operations can be made to fail.
type FakeSessionRepo struct {
	sessions  map[string]*sessions.Session
	GetErr    error
	PutErr    error
	DeleteErr error
	lock      sync.RWMutex
	puts      int
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		sessions: make(map[string]*sessions.Session),
	}
}

func (sr *FakeSessionRepo) Get(sessionID string) (*sessions.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	if sr.GetErr != nil {
		return nil, sr.GetErr
	}
	session, ok := sr.sessions[sessionID]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	c := *session
	return &c, nil
}

func (sr *FakeSessionRepo) Put(sessionID string, session *sessions.Session) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	sr.puts++
	if sr.PutErr != nil {
		return sr.PutErr
	}
	c := *session
	c.ID = sessionID
	sr.sessions[sessionID] = &c
	return nil
}

func (sr *FakeSessionRepo) Delete(sessionID string) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	if sr.DeleteErr != nil {
		return sr.DeleteErr
	}
	delete(sr.sessions, sessionID)
	return nil
}

// Puts returns how many times Put was called.
func (sr *FakeSessionRepo) Puts() int {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return sr.puts
}
