package identity

import (
	"context"

	"github.com/jrsteele09/go-mail-gateway/sessions"
)

// Provider is the identity provider side of the authorization-code flow.
type Provider interface {
	// AuthCodeURL builds the consent URL the browser is redirected to.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for a credential bundle.
	Exchange(ctx context.Context, code string) (sessions.Record, error)

	// UserInfo fetches the profile of the user the credentials belong to.
	UserInfo(ctx context.Context, credentials sessions.Record) (sessions.Record, error)
}
