package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.Issue(42, "a@b.com", false)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)

	id, err := claims.AccountID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.False(t, claims.Admin)
}

func TestTokenCarriesAdminFlag(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.Issue(7, "admin@b.com", true)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.True(t, claims.Admin)
}

func TestTokenExpired(t *testing.T) {
	svc := NewTokenService("test-secret", 10*time.Millisecond)

	token, err := svc.Issue(42, "a@b.com", false)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-one", time.Hour)
	verifier := NewTokenService("secret-two", time.Hour)

	token, err := issuer.Issue(42, "a@b.com", false)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenMalformed(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}

func TestTokenTampered(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.Issue(42, "a@b.com", false)
	require.NoError(t, err)

	tampered := token[:len(token)-4] + "AAAA"
	_, err = svc.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenDefaultTTL(t *testing.T) {
	svc := NewTokenService("test-secret", 0)

	token, err := svc.Issue(1, "a@b.com", false)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)

	// zero ttl falls back to the 7-day default
	remaining := time.Until(claims.ExpiresAt.Time)
	assert.Greater(t, remaining, 167*time.Hour)
	assert.LessOrEqual(t, remaining, 168*time.Hour)
}
