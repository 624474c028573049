package config

import "strings"

const (
	clientIDEnvVar     = "GOOGLE_CLIENT_ID"
	clientSecretEnvVar = "GOOGLE_CLIENT_SECRET"
	redirectURIEnvVar  = "GOOGLE_REDIRECT_URI"
	issuerEnvVar       = "GOOGLE_ISSUER"

	GmailReadonlyScope = "https://www.googleapis.com/auth/gmail.readonly"
)

type OAuthConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetRedirectURI() string
	GetIssuerURL() string
	GetScopes() []string
	GetMailPageSize() int64
	GetMailHeaders() []string
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetClientID() string {
	return GetEnv(clientIDEnvVar, "")
}

func (OAuth) GetClientSecret() string {
	return GetEnv(clientSecretEnvVar, "")
}

func (OAuth) GetRedirectURI() string {
	return GetEnv(redirectURIEnvVar, "http://localhost:3000/oauth2callback")
}

// GetIssuerURL is the OpenID Connect issuer used for endpoint discovery.
func (OAuth) GetIssuerURL() string {
	return strings.TrimSuffix(GetEnv(issuerEnvVar, "https://accounts.google.com"), "/")
}

func (OAuth) GetScopes() []string {
	return []string{"openid", "email", "profile", GmailReadonlyScope}
}

func (OAuth) GetMailPageSize() int64 {
	return 10
}

func (OAuth) GetMailHeaders() []string {
	return []string{"Subject", "From", "Date"}
}
