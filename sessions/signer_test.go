package sessions_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-mail-gateway/sessions"
	"github.com/stretchr/testify/require"
)

func TestSigner_RoundTrip(t *testing.T) {
	signer, err := sessions.NewSigner("secret", "session", time.Hour)
	require.NoError(t, err)

	token, err := signer.Sign("sid-123")
	require.NoError(t, err)
	require.NotContains(t, token, "secret")

	value, err := signer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "sid-123", value)
}

func TestSigner_Rejects(t *testing.T) {
	signer, err := sessions.NewSigner("secret", "session", time.Hour)
	require.NoError(t, err)
	token, err := signer.Sign("sid-123")
	require.NoError(t, err)

	t.Run("other secret", func(t *testing.T) {
		other, err := sessions.NewSigner("another-secret", "session", time.Hour)
		require.NoError(t, err)
		_, err = other.Verify(token)
		require.Error(t, err)
	})

	t.Run("other purpose", func(t *testing.T) {
		other, err := sessions.NewSigner("secret", "oauth_state", time.Hour)
		require.NoError(t, err)
		_, err = other.Verify(token)
		require.Error(t, err)
	})

	t.Run("tampered", func(t *testing.T) {
		_, err := signer.Verify(token + "x")
		require.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := signer.Verify("not-a-token")
		require.Error(t, err)
	})
}

func TestSigner_Expiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	signer, err := sessions.NewSigner("secret", "oauth_state", 5*time.Minute)
	require.NoError(t, err)
	signer.WithClock(func() time.Time { return now })

	token, err := signer.Sign("state")
	require.NoError(t, err)

	now = now.Add(4 * time.Minute)
	_, err = signer.Verify(token)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = signer.Verify(token)
	require.Error(t, err)
}

func TestNewSigner_Validation(t *testing.T) {
	_, err := sessions.NewSigner("", "session", time.Hour)
	require.Error(t, err)
	_, err = sessions.NewSigner("secret", "", time.Hour)
	require.Error(t, err)
}
