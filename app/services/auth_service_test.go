package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/tomato/pkg/auth"
)

func TestRegisterAndLogin(t *testing.T) {
	users := newFakeUserStore()
	svc := NewAuthService(users)
	ctx := context.Background()

	token, err := svc.Register(ctx, "Asha", "asha@example.com", "supersecret")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user", claims.Role)

	u, err := users.FindByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, u.ID.Hex())
	assert.NotEqual(t, "supersecret", u.Password, "password must be stored hashed")

	token2, err := svc.Login(ctx, "asha@example.com", "supersecret")
	require.NoError(t, err)
	claims2, err := auth.ValidateToken(token2)
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, claims2.UserID)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(newFakeUserStore())
	ctx := context.Background()

	cases := []struct {
		name, email, password string
	}{
		{"", "a@example.com", "supersecret"},
		{"Asha", "not-an-email", "supersecret"},
		{"Asha", "a@example.com", "short"},
	}
	for _, c := range cases {
		_, err := svc.Register(ctx, c.name, c.email, c.password)
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewAuthService(newFakeUserStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, "Asha", "asha@example.com", "supersecret")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other", "asha@example.com", "differentpw")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestLoginBadCredentials(t *testing.T) {
	users := newFakeUserStore()
	svc := NewAuthService(users)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Asha", "asha@example.com", "supersecret")
	require.NoError(t, err)

	// Unknown email and wrong password come back identical.
	_, errUnknown := svc.Login(ctx, "nobody@example.com", "supersecret")
	_, errWrongPw := svc.Login(ctx, "asha@example.com", "wrongpassword")
	assert.ErrorIs(t, errUnknown, ErrBadCredentials)
	assert.ErrorIs(t, errWrongPw, ErrBadCredentials)
	assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
}
