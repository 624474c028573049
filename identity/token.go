package identity

import (
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/go-mail-gateway/internal/errors"
	"github.com/jrsteele09/go-mail-gateway/sessions"
	"golang.org/x/oauth2"
)

// Credential bundle field names
const (
	FieldAccessToken  = "access_token"
	FieldRefreshToken = "refresh_token"
	FieldTokenType    = "token_type"
	FieldExpiry       = "expiry"
	FieldIDToken      = "id_token"
)

// TokenRecord flattens an OAuth2 token into a credential bundle.
func TokenRecord(token *oauth2.Token) sessions.Record {
	if token == nil {
		return nil
	}

	record := sessions.Record{
		FieldAccessToken: token.AccessToken,
		FieldTokenType:   token.Type(),
	}
	if token.RefreshToken != "" {
		record[FieldRefreshToken] = token.RefreshToken
	}
	if !token.Expiry.IsZero() {
		record[FieldExpiry] = token.Expiry.UTC().Format(time.RFC3339)
	}
	if idToken, ok := token.Extra(FieldIDToken).(string); ok && idToken != "" {
		record[FieldIDToken] = idToken
	}
	return record
}

// TokenFromRecord rebuilds the OAuth2 token stored in a credential bundle.
// The expiry is carried over as-is; a stale token is left for the provider
// to reject.
func TokenFromRecord(record sessions.Record) (*oauth2.Token, error) {
	accessToken := record.String(FieldAccessToken)
	if accessToken == "" {
		return nil, fmt.Errorf("%w: credential bundle has no access token", apperrors.ErrNotAuthenticated)
	}

	token := &oauth2.Token{
		AccessToken:  accessToken,
		TokenType:    record.String(FieldTokenType),
		RefreshToken: record.String(FieldRefreshToken),
	}

	switch expiry := record[FieldExpiry].(type) {
	case string:
		parsed, err := time.Parse(time.RFC3339, expiry)
		if err != nil {
			return nil, fmt.Errorf("invalid credential expiry %q: %w", expiry, err)
		}
		token.Expiry = parsed
	case time.Time:
		token.Expiry = expiry
	}

	return token, nil
}
