package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Samith-P/ciphercopdemo/internal/domain/users"
)

type contextKey string

const userKey contextKey = "user"

// UserResolver turns a session token into the user that owns it.
type UserResolver interface {
	Resolve(ctx context.Context, token string) (*users.User, error)
}

// SessionAuth validates the session token carried in the Authorization
// header ("Bearer <token>" or bare) or in the "token" cookie, and stores
// the resolved user in the request context.
func SessionAuth(resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				unauthorized(w, "authentication required")
				return
			}
			u, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				unauthorized(w, "invalid or expired session")
				return
			}
			ctx := context.WithValue(r.Context(), userKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenFromRequest extracts the session token, header first then cookie.
func TokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if c, err := r.Cookie("token"); err == nil {
		return c.Value
	}
	return ""
}

// UserFromContext returns the authenticated user, or nil on
// unauthenticated routes.
func UserFromContext(ctx context.Context) *users.User {
	u, _ := ctx.Value(userKey).(*users.User)
	return u
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}
