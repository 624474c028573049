package config

import "time"

const (
	sessionSecretEnvVar = "SESSION_SECRET"
	cookieSecureEnvVar  = "COOKIE_SECURE"
	sessionMaxAgeEnvVar = "SESSION_MAX_AGE"

	// InsecureSessionSecret is the placeholder used when SESSION_SECRET is unset.
	InsecureSessionSecret = "dev-secret"
)

type SecurityConfig interface {
	GetSessionSecret() string
	IsInsecureSessionSecret() bool
	GetCookieSecure() bool
	GetMaxSessionAge() time.Duration
	GetStateMaxAge() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetSessionSecret() string {
	return GetEnv(sessionSecretEnvVar, InsecureSessionSecret)
}

func (s Security) IsInsecureSessionSecret() bool {
	return s.GetSessionSecret() == InsecureSessionSecret
}

// GetCookieSecure must be enabled when the gateway is served over TLS.
func (Security) GetCookieSecure() bool {
	return GetEnvBool(cookieSecureEnvVar, false)
}

func (Security) GetMaxSessionAge() time.Duration {
	return GetEnvDuration(sessionMaxAgeEnvVar, 24*time.Hour)
}

func (Security) GetStateMaxAge() time.Duration {
	return 5 * time.Minute
}
