// Package rbac provides role-based access middleware for admin routes.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/tomato/pkg/middleware"
	"github.com/shashiranjanraj/tomato/pkg/response"
)

// HasRole returns middleware that allows access only to users with one of
// the given roles. Requires middleware.Auth to have already run.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := middleware.Role(r)
			if !ok || !allowed[role] {
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Admin is shorthand for HasRole("admin") — the guard in front of catalog
// mutation, order-status updates and the full order listing.
func Admin(next http.Handler) http.Handler {
	return HasRole("admin")(next)
}
