package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-mail-gateway/internal/errors"
	"github.com/rs/zerolog/log"
)

// LoginHandler redirects the browser to the provider's consent page.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := uuid.NewString()
		if err := s.setStateCookie(w, state); err != nil {
			log.Err(err).Msg("Login: failed to sign state")
			http.Error(w, "OAuth error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, s.gateway.LoginURL(state), http.StatusFound)
	}
}

// OAuthCallbackHandler completes the authorization-code flow. Every failure
// gets the same plain-text 500 and leaves the session as it was.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.clearCookie(w, stateCookieName, RouteCallback)

		query := r.URL.Query()
		if errorParam := query.Get("error"); errorParam != "" {
			s.oauthFailure(w, fmt.Errorf("%w: %s - %s", apperrors.ErrProviderDenied, errorParam, query.Get("error_description")))
			return
		}
		if err := s.verifyState(r); err != nil {
			s.oauthFailure(w, err)
			return
		}

		sessionID := s.sessionID(r)
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		cookie, err := s.sessionCookie(sessionID)
		if err != nil {
			s.oauthFailure(w, err)
			return
		}

		if err := s.gateway.CompleteLogin(r.Context(), sessionID, query.Get("code")); err != nil {
			s.oauthFailure(w, err)
			return
		}

		s.metrics.ObserveLogin(nil)
		http.SetCookie(w, cookie)
		http.Redirect(w, r, RouteDashboard, http.StatusFound)
	}
}

// LogoutHandler destroys the session and returns to the landing page.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.gateway.Logout(s.sessionID(r)); err != nil {
			log.Err(err).Msg("Logout: failed to delete session")
			http.Error(w, "Logout failed", http.StatusInternalServerError)
			return
		}
		s.clearCookie(w, sessionCookieName, "/")
		http.Redirect(w, r, RouteHome, http.StatusFound)
	}
}

func (s *Server) oauthFailure(w http.ResponseWriter, err error) {
	log.Err(err).Msg("OAuth callback failed")
	s.metrics.ObserveLogin(err)
	http.Error(w, "OAuth error", http.StatusInternalServerError)
}
