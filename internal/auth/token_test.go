package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, expiresAt time.Time) string {
	t.Helper()
	claims := Claims{
		UserID: "user-1",
		Email:  "diner@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestParseBearerToken(t *testing.T) {
	assert.Equal(t, "abc", ParseBearerToken("Bearer abc"))
	assert.Equal(t, "abc", ParseBearerToken("bearer abc"))
	assert.Empty(t, ParseBearerToken("abc"))
	assert.Empty(t, ParseBearerToken("Basic abc"))
	assert.Empty(t, ParseBearerToken(""))
}

func TestVerifyAccessToken(t *testing.T) {
	token := signToken(t, testSecret, time.Now().Add(time.Hour))

	claims, err := VerifyAccessToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "diner@example.com", claims.Email)
}

func TestVerifyAccessTokenRejectsWrongSecret(t *testing.T) {
	token := signToken(t, "other-secret", time.Now().Add(time.Hour))
	_, err := VerifyAccessToken(token, testSecret)
	require.Error(t, err)
}

func TestVerifyAccessTokenRejectsExpired(t *testing.T) {
	token := signToken(t, testSecret, time.Now().Add(-time.Minute))
	_, err := VerifyAccessToken(token, testSecret)
	require.Error(t, err)
}

func TestExpired(t *testing.T) {
	assert.False(t, Expired(signToken(t, testSecret, time.Now().Add(time.Hour))))
	assert.True(t, Expired(signToken(t, testSecret, time.Now().Add(-time.Minute))))
	assert.False(t, Expired("not-a-jwt"), "garbage is left for the backend to reject")
}
