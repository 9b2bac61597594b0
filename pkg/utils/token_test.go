package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManagerRoundTrip(t *testing.T) {
	tm, err := NewTokenManager(JWTConfig{Secret: "test-secret", ExpiryDays: 30})
	require.NoError(t, err)

	userID := uuid.New()
	token, expiresAt, err := tm.Generate(userID, "customer")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), expiresAt, time.Minute)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "customer", claims.Role)
}

func TestTokenManagerRejectsTampered(t *testing.T) {
	tm, err := NewTokenManager(JWTConfig{Secret: "test-secret", ExpiryDays: 30})
	require.NoError(t, err)

	token, _, err := tm.Generate(uuid.New(), "driver")
	require.NoError(t, err)

	// Flip a character in the signature segment
	tampered := token[:len(token)-2] + "xx"
	_, err = tm.Verify(tampered)
	assert.Error(t, err)
}

func TestTokenManagerRejectsWrongSecret(t *testing.T) {
	tm1, err := NewTokenManager(JWTConfig{Secret: "secret-one", ExpiryDays: 30})
	require.NoError(t, err)
	tm2, err := NewTokenManager(JWTConfig{Secret: "secret-two", ExpiryDays: 30})
	require.NoError(t, err)

	token, _, err := tm1.Generate(uuid.New(), "admin")
	require.NoError(t, err)

	_, err = tm2.Verify(token)
	assert.Error(t, err)
}

func TestTokenManagerRejectsGarbage(t *testing.T) {
	tm, err := NewTokenManager(JWTConfig{Secret: "test-secret", ExpiryDays: 30})
	require.NoError(t, err)

	_, err = tm.Verify("not-a-token")
	assert.Error(t, err)
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	_, err := NewTokenManager(JWTConfig{Secret: ""})
	assert.Error(t, err)
}

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong-pass", hash))
}
