package errors

import (
	"errors"
	"fmt"
)

// Common error types for the mail gateway
var (
	// Authorization errors
	ErrMissingAuthorizationCode = errors.New("missing authorization code")
	ErrInvalidState             = errors.New("invalid state")
	ErrProviderDenied           = errors.New("authorization denied by provider")
	ErrTokenExchange            = errors.New("token exchange failed")
	ErrUserInfo                 = errors.New("userinfo request failed")

	// Session errors
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionExpired   = errors.New("session expired")
	ErrInvalidSession   = errors.New("invalid session")
	ErrNotAuthenticated = errors.New("not authenticated")

	// Mail provider errors
	ErrMailList    = errors.New("mail list failed")
	ErrMailMessage = errors.New("mail message fetch failed")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}
