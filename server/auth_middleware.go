package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-mail-gateway/sessions"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySessionID stores the id of the authenticated session
	ContextKeySessionID ContextKey = "session_id"
	// ContextKeyCredentials stores the session's credential bundle
	ContextKeyCredentials ContextKey = "credentials"
)

// RequireSessionAuth only lets requests through whose session holds a
// credential bundle. Anything else is redirected to the landing page and the
// wrapped handler never runs.
func (s *Server) RequireSessionAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			sessionID := s.sessionID(r)
			credentials, ok := s.gateway.Credentials(sessionID)
			if !ok {
				http.Redirect(w, r, RouteHome, http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySessionID, sessionID)
			ctx = context.WithValue(ctx, ContextKeyCredentials, credentials)
			next(w, r.WithContext(ctx))
		}
	}
}

// CredentialsFromContext returns the credential bundle injected by RequireSessionAuth.
func CredentialsFromContext(ctx context.Context) sessions.Record {
	credentials, _ := ctx.Value(ContextKeyCredentials).(sessions.Record)
	return credentials
}
