package identity

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-mail-gateway/internal/config"
	apperrors "github.com/jrsteele09/go-mail-gateway/internal/errors"
	"github.com/jrsteele09/go-mail-gateway/sessions"
	"golang.org/x/oauth2"
)

var _ Provider = (*OIDCProvider)(nil)

// OIDCProvider talks to an OpenID Connect provider discovered from its issuer URL.
type OIDCProvider struct {
	provider     *oidc.Provider
	oauth2Config *oauth2.Config
}

// NewOIDCProvider runs discovery against the configured issuer and builds the
// OAuth2 client configuration from the discovered endpoints.
func NewOIDCProvider(ctx context.Context, c config.OAuthConfig) (*OIDCProvider, error) {
	provider, err := oidc.NewProvider(ctx, c.GetIssuerURL())
	if err != nil {
		return nil, fmt.Errorf("[identity NewOIDCProvider] failed to create OIDC provider: %w", err)
	}

	return &OIDCProvider{
		provider: provider,
		oauth2Config: &oauth2.Config{
			ClientID:     c.GetClientID(),
			ClientSecret: c.GetClientSecret(),
			Endpoint:     provider.Endpoint(),
			RedirectURL:  c.GetRedirectURI(),
			Scopes:       c.GetScopes(),
		},
	}, nil
}

// AuthCodeURL asks for offline access so a refresh token is issued, and
// forces the consent screen every time.
func (p *OIDCProvider) AuthCodeURL(state string) string {
	return p.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (p *OIDCProvider) Exchange(ctx context.Context, code string) (sessions.Record, error) {
	if code == "" {
		return nil, apperrors.ErrMissingAuthorizationCode
	}

	token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrTokenExchange, err)
	}
	return TokenRecord(token), nil
}

func (p *OIDCProvider) UserInfo(ctx context.Context, credentials sessions.Record) (sessions.Record, error) {
	token, err := TokenFromRecord(credentials)
	if err != nil {
		return nil, err
	}

	userInfo, err := p.provider.UserInfo(ctx, oauth2.StaticTokenSource(token))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUserInfo, err)
	}

	var claims sessions.Record
	if err := userInfo.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: failed to decode claims: %w", apperrors.ErrUserInfo, err)
	}
	return claims, nil
}
