package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_ACCESS_SECRET", "access-secret-for-tests")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret-for-tests")
}

func TestAccessTokenRoundTrip(t *testing.T) {
	setSecrets(t)

	token, err := SignAccessToken("user-123")
	require.NoError(t, err)

	userID, err := VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	setSecrets(t)

	token, err := SignRefreshToken("user-123")
	require.NoError(t, err)

	userID, err := VerifyRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestVerifyRefreshTokenRejectsBadSubject(t *testing.T) {
	setSecrets(t)

	// Signed refresh tokens whose sub claim is absent or not a string
	// must be rejected, not crash the caller.
	for name, claims := range map[string]jwt.MapClaims{
		"missing": {"exp": time.Now().Add(time.Hour).Unix(), "type": "refresh"},
		"numeric": {"exp": time.Now().Add(time.Hour).Unix(), "type": "refresh", "sub": 123},
		"empty":   {"exp": time.Now().Add(time.Hour).Unix(), "type": "refresh", "sub": ""},
	} {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
			SignedString([]byte("refresh-secret-for-tests"))
		require.NoError(t, err, name)

		_, err = VerifyRefreshToken(signed)
		assert.Error(t, err, "sub variant %q must be rejected", name)
	}
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	setSecrets(t)

	refresh, err := SignRefreshToken("user-123")
	require.NoError(t, err)

	_, err = VerifyAccessToken(refresh)
	assert.Error(t, err)
}

func TestAccessTokenIsNotARefreshToken(t *testing.T) {
	setSecrets(t)

	access, err := SignAccessToken("user-123")
	require.NoError(t, err)

	_, err = VerifyRefreshToken(access)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	setSecrets(t)

	_, err := VerifyAccessToken("not.a.token")
	assert.Error(t, err)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	setSecrets(t)

	token, err := SignAccessToken("user-123")
	require.NoError(t, err)

	t.Setenv("JWT_ACCESS_SECRET", "a-different-secret")
	_, err = VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestSignRequiresSecret(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "")

	_, err := SignAccessToken("user-123")
	assert.Error(t, err)
}
