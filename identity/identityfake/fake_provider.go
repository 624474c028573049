package identityfake

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/jrsteele09/go-mail-gateway/identity"
	"github.com/jrsteele09/go-mail-gateway/sessions"
)

var _ identity.Provider = (*FakeProvider)(nil)

const AuthURL = "https://idp.example.com/auth"

// FakeProvider accepts a fixed set of codes and returns canned credentials and profiles.
type FakeProvider struct {
	Codes       map[string]sessions.Record // code -> credential bundle
	Profiles    map[string]sessions.Record // access token -> profile
	ExchangeErr error
	UserInfoErr error

	lock      sync.Mutex
	exchanges int
	userInfos int
}

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		Codes:    make(map[string]sessions.Record),
		Profiles: make(map[string]sessions.Record),
	}
}

// Allow registers code as exchangeable for an access token whose owner has profile.
func (p *FakeProvider) Allow(code, accessToken string, profile sessions.Record) {
	p.Codes[code] = sessions.Record{
		identity.FieldAccessToken:  accessToken,
		identity.FieldRefreshToken: "refresh-" + accessToken,
		identity.FieldTokenType:    "Bearer",
	}
	p.Profiles[accessToken] = profile
}

func (p *FakeProvider) AuthCodeURL(state string) string {
	q := url.Values{}
	q.Set("state", state)
	q.Set("access_type", "offline")
	q.Set("prompt", "consent")
	return AuthURL + "?" + q.Encode()
}

func (p *FakeProvider) Exchange(_ context.Context, code string) (sessions.Record, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.exchanges++
	if p.ExchangeErr != nil {
		return nil, p.ExchangeErr
	}
	tokens, ok := p.Codes[code]
	if !ok {
		return nil, errors.New("invalid_grant")
	}
	return tokens.Clone(), nil
}

func (p *FakeProvider) UserInfo(_ context.Context, credentials sessions.Record) (sessions.Record, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.userInfos++
	if p.UserInfoErr != nil {
		return nil, p.UserInfoErr
	}
	profile, ok := p.Profiles[credentials.String(identity.FieldAccessToken)]
	if !ok {
		return nil, errors.New("unauthorized")
	}
	return profile.Clone(), nil
}

// Calls returns how many exchange and userinfo calls were made.
func (p *FakeProvider) Calls() (exchanges, userInfos int) {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.exchanges, p.userInfos
}
