// Package middleware provides HTTP middlewares for admission control,
// bearer-token authentication, request logging and metrics.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/qpay/securegate/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// TokenVerifier validates a session token and resolves its identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.User, error)
}

// BearerAuth enforces bearer-token authentication. On success the
// resolved user is stored in the request context for downstream
// handlers; every failure yields 401 without touching other state.
func BearerAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			user, err := verifier.Verify(r.Context(), tokenString)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext extracts the authenticated user from the request
// context. Returns nil if the request was not authenticated.
func GetUserFromContext(ctx context.Context) *models.User {
	if u, ok := ctx.Value(userKey).(*models.User); ok {
		return u
	}
	return nil
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
