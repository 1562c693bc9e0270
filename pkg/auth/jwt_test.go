package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shashiranjanraj/tomato/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := auth.GenerateToken("64f1b2c3d4e5f60718293a4b", "user")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "64f1b2c3d4e5f60718293a4b", claims.UserID)
	assert.Equal(t, "user", claims.Role)
}

func TestValidateGarbage(t *testing.T) {
	for _, raw := range []string{"", "not-a-token", "a.b.c", "eyJhbGciOiJIUzI1NiJ9.e30."} {
		_, err := auth.ValidateToken(raw)
		assert.ErrorIs(t, err, auth.ErrInvalidToken, "token %q should be rejected", raw)
	}
}

func TestValidateForeignSignature(t *testing.T) {
	claims := auth.Claims{UserID: "abc", Role: "user"}
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("some-other-secret"))
	require.NoError(t, err)

	_, err = auth.ValidateToken(foreign)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestValidateExpired(t *testing.T) {
	claims := auth.Claims{UserID: "abc", Role: "user"}
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	claims.IssuedAt = jwt.NewNumericDate(time.Now().Add(-2 * time.Hour))
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("change-me-in-production"))
	require.NoError(t, err)

	_, err = auth.ValidateToken(expired)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)
	assert.True(t, auth.CheckPassword(hash, "secret123"))
	assert.False(t, auth.CheckPassword(hash, "secret124"))
}
