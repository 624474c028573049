// Package gateway implements the session gateway: the OAuth login lifecycle
// bound to a server-side session, and the mailbox listing done with the
// credentials that session holds. It has no HTTP dependencies; the server
// package maps cookies to session ids and calls in here.
package gateway

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-mail-gateway/identity"
	apperrors "github.com/jrsteele09/go-mail-gateway/internal/errors"
	"github.com/jrsteele09/go-mail-gateway/mail"
	"github.com/jrsteele09/go-mail-gateway/sessions"
)

// Identity is the answer to "who is logged in on this session".
type Identity struct {
	Authenticated bool            `json:"authenticated"`
	User          sessions.Record `json:"user"`
}

type Gateway struct {
	sessions  sessions.Repo
	provider  identity.Provider
	mailboxes mail.ClientFactory
	lister    *mail.Lister
}

func New(repo sessions.Repo, provider identity.Provider, mailboxes mail.ClientFactory, lister *mail.Lister) *Gateway {
	return &Gateway{
		sessions:  repo,
		provider:  provider,
		mailboxes: mailboxes,
		lister:    lister,
	}
}

// LoginURL returns the provider consent URL. Nothing is stored.
func (g *Gateway) LoginURL(state string) string {
	return g.provider.AuthCodeURL(state)
}

// CompleteLogin exchanges code for credentials, fetches the user's profile
// and stores both in the session. The session is written only once both
// provider calls have succeeded.
func (g *Gateway) CompleteLogin(ctx context.Context, sessionID, code string) error {
	if code == "" {
		return apperrors.ErrMissingAuthorizationCode
	}

	tokens, err := g.provider.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("[gateway CompleteLogin] exchange: %w", err)
	}

	userInfo, err := g.provider.UserInfo(ctx, tokens)
	if err != nil {
		return fmt.Errorf("[gateway CompleteLogin] userinfo: %w", err)
	}

	session, err := g.sessions.Get(sessionID)
	if err != nil {
		if !isMissing(err) {
			return fmt.Errorf("[gateway CompleteLogin] load session: %w", err)
		}
		session = &sessions.Session{}
	}
	session.Tokens = tokens
	session.UserInfo = userInfo

	if err := g.sessions.Put(sessionID, session); err != nil {
		return fmt.Errorf("[gateway CompleteLogin] store session: %w", err)
	}
	return nil
}

// CurrentIdentity reports whether the session is authenticated and the
// stored profile. It never fails; an unknown session is anonymous.
func (g *Gateway) CurrentIdentity(sessionID string) Identity {
	session := g.lookup(sessionID)
	if session == nil {
		return Identity{}
	}
	return Identity{
		Authenticated: session.Authenticated(),
		User:          session.UserInfo,
	}
}

// Credentials returns the session's credential bundle, if it has one.
// No freshness check is made.
func (g *Gateway) Credentials(sessionID string) (sessions.Record, bool) {
	session := g.lookup(sessionID)
	if !session.Authenticated() {
		return nil, false
	}
	return session.Tokens, true
}

// Logout destroys the session record.
func (g *Gateway) Logout(sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := g.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("[gateway Logout] %w", err)
	}
	return nil
}

// ListRecentMessages lists the newest messages of the mailbox the
// credentials grant access to. It is all-or-nothing: one failed fetch fails
// the whole listing.
func (g *Gateway) ListRecentMessages(ctx context.Context, credentials sessions.Record) ([]mail.MessageSummary, error) {
	if len(credentials) == 0 {
		return nil, apperrors.ErrNotAuthenticated
	}

	mailbox, err := g.mailboxes(ctx, credentials)
	if err != nil {
		return nil, fmt.Errorf("[gateway ListRecentMessages] mail client: %w", err)
	}

	messages, err := g.lister.ListRecent(ctx, mailbox)
	if err != nil {
		return nil, fmt.Errorf("[gateway ListRecentMessages] %w", err)
	}
	return messages, nil
}

func (g *Gateway) lookup(sessionID string) *sessions.Session {
	if sessionID == "" {
		return nil
	}
	session, err := g.sessions.Get(sessionID)
	if err != nil {
		return nil
	}
	return session
}

func isMissing(err error) bool {
	return apperrors.Is(err, apperrors.ErrSessionNotFound) || apperrors.Is(err, apperrors.ErrSessionExpired)
}
