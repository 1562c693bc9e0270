package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shashiranjanraj/tomato/pkg/auth"
	"github.com/shashiranjanraj/tomato/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protected(t *testing.T) (http.Handler, *string) {
	t.Helper()
	var seenUser string
	h := middleware.Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.UserID(r)
		require.True(t, ok, "handler must see exactly one user id")
		seenUser = id
		w.WriteHeader(http.StatusOK)
	}))
	return h, &seenUser
}

func body(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAuthMissingToken(t *testing.T) {
	h, _ := protected(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cart/get", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	out := body(t, rec)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "unauthenticated", out["code"])
}

func TestAuthInvalidToken(t *testing.T) {
	h, _ := protected(t)
	req := httptest.NewRequest(http.MethodPost, "/api/cart/get", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_token", body(t, rec)["code"])
}

func TestAuthValidToken(t *testing.T) {
	token, err := auth.GenerateToken("64f1b2c3d4e5f60718293a4b", "user")
	require.NoError(t, err)

	h, seen := protected(t)
	req := httptest.NewRequest(http.MethodPost, "/api/cart/get", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "64f1b2c3d4e5f60718293a4b", *seen)
}

func TestAuthLegacyTokenHeader(t *testing.T) {
	token, err := auth.GenerateToken("64f1b2c3d4e5f60718293a4b", "user")
	require.NoError(t, err)

	h, _ := protected(t)
	req := httptest.NewRequest(http.MethodPost, "/api/cart/get", nil)
	req.Header.Set("token", token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
