package sessions

import (
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

const signingKeyLength = 32

// Signer protects cookie values with an HMAC-SHA256 signed JWT.
// Each purpose gets its own key derived from the shared secret, so a value
// signed for one cookie is rejected by a signer for another.
type Signer struct {
	key     []byte
	purpose string
	maxAge  time.Duration
	now     func() time.Time
}

// NewSigner derives a purpose-bound signing key from secret.
func NewSigner(secret, purpose string, maxAge time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, fmt.Errorf("secret is required")
	}
	if purpose == "" {
		return nil, fmt.Errorf("purpose is required")
	}

	key := make([]byte, signingKeyLength)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(purpose)), key); err != nil {
		return nil, fmt.Errorf("failed to derive %s signing key: %w", purpose, err)
	}

	return &Signer{
		key:     key,
		purpose: purpose,
		maxAge:  maxAge,
		now:     time.Now,
	}, nil
}

// WithClock replaces the time source, used by tests.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	s.now = now
	return s
}

// Sign returns a token carrying value as its subject.
func (s *Signer) Sign(value string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:  value,
		Audience: jwt.ClaimStrings{s.purpose},
		IssuedAt: jwt.NewNumericDate(now),
	}
	if s.maxAge > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.maxAge))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s value: %w", s.purpose, err)
	}
	return signed, nil
}

// Verify checks the signature, audience and expiry of token and returns the
// value it carries.
func (s *Signer) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, s.verificationKey,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(s.purpose),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("invalid %s value: %w", s.purpose, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("invalid %s value: empty subject", s.purpose)
	}
	return claims.Subject, nil
}

func (s *Signer) verificationKey(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return s.key, nil
}
