package server

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	apperrors "github.com/jrsteele09/go-mail-gateway/internal/errors"
)

const (
	// sessionCookieName is the cookie carrying the signed session id
	sessionCookieName = "sid"
	// stateCookieName is the cookie carrying the signed OAuth state between /login and the callback
	stateCookieName = "oauth_state"
)

// sessionID returns the verified session id from the request cookie, or ""
// when there is no cookie or its signature does not check out.
func (s *Server) sessionID(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	id, err := s.sessionCookies.Verify(cookie.Value)
	if err != nil {
		return ""
	}
	return id
}

func (s *Server) sessionCookie(sessionID string) (*http.Cookie, error) {
	value, err := s.sessionCookies.Sign(sessionID)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.config.GetCookieSecure(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.config.GetMaxSessionAge().Seconds()),
	}, nil
}

func (s *Server) setStateCookie(w http.ResponseWriter, state string) error {
	value, err := s.stateCookies.Sign(state)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    value,
		Path:     RouteCallback,
		HttpOnly: true,
		Secure:   s.config.GetCookieSecure(),
		SameSite: http.SameSiteLaxMode, // Sent on the top-level redirect back from the provider
		MaxAge:   int(s.config.GetStateMaxAge().Seconds()),
	})
	return nil
}

// verifyState compares the state returned by the provider with the one
// signed into the state cookie at login.
func (s *Server) verifyState(r *http.Request) error {
	returned := r.URL.Query().Get("state")
	if returned == "" {
		return fmt.Errorf("%w: missing state parameter", apperrors.ErrInvalidState)
	}
	cookie, err := r.Cookie(stateCookieName)
	if err != nil {
		return fmt.Errorf("%w: missing state cookie", apperrors.ErrInvalidState)
	}
	expected, err := s.stateCookies.Verify(cookie.Value)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidState, err)
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(returned)) != 1 {
		return fmt.Errorf("%w: state mismatch", apperrors.ErrInvalidState)
	}
	return nil
}

func (s *Server) clearCookie(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		HttpOnly: true,
		Secure:   s.config.GetCookieSecure(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
