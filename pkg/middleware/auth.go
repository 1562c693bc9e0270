package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/tomato/pkg/auth"
	"github.com/shashiranjanraj/tomato/pkg/response"
)

type identityKey struct{}

// identity is what the auth gate attaches to the request context: exactly
// one user id (and its role) per authenticated request.
type identity struct {
	UserID string
	Role   string
}

// extractToken pulls the raw credential from the request. The storefront
// historically sends a bare "token" header; "Authorization: Bearer" is the
// preferred form.
func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return strings.TrimSpace(r.Header.Get("token"))
}

// Auth rejects the request unless it carries a valid token, and otherwise
// annotates the context with the embedded identity.
//
// The two failure modes get distinct machine-readable codes because clients
// react differently: "unauthenticated" (no credential at all — prompt a
// login) versus "invalid_token" (credential present but bad — force a
// re-login).
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractToken(r)
		if raw == "" {
			response.Unauthenticated(w)
			return
		}

		claims, err := auth.ValidateToken(raw)
		if err != nil {
			response.InvalidToken(w)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey{}, identity{
			UserID: claims.UserID,
			Role:   claims.Role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated user id from the request context.
// The second return is false when Auth did not run (or rejected).
func UserID(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(identityKey{}).(identity)
	if !ok || id.UserID == "" {
		return "", false
	}
	return id.UserID, true
}

// Role returns the authenticated role from the request context.
func Role(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(identityKey{}).(identity)
	if !ok {
		return "", false
	}
	return id.Role, true
}
