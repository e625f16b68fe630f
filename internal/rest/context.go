// Package rest is the thin CRUD facade the core reads back through:
// signup/login, games, friends, notifications, and user lookup. It never
// touches GameState directly except via the hub's membership and
// notification helpers.
package rest

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/fivecrowns/server/internal/auth"
)

type ctxKey int

const userIDKey ctxKey = 0

func userIDFrom(r *http.Request) (uuid.UUID, bool) {
	id, ok := r.Context().Value(userIDKey).(uuid.UUID)
	return id, ok
}

// requireAuth resolves the bearer token to a userId and rejects the
// request with 401 if missing or invalid.
func requireAuth(sessions *auth.SessionMinter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "unauthenticated", "missing bearer token")
				return
			}
			token := strings.TrimPrefix(header, "Bearer ")
			userID, err := sessions.Validate(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthenticated", "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
