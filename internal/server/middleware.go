package server

import (
	"context"
	"net/http"
	"strings"

	"carecall/internal/apperror"
)

type contextKey string

const userIDKey contextKey = "userID"

// requireAuth resolves the Authorization bearer token to a user id and
// stores it on the request context. Unknown or expired tokens get 401.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		userID, ok := s.sessions.Lookup(token)
		if !ok {
			writeError(w, apperror.Unauthorized("missing or expired session token"))
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userIDFrom returns the authenticated user id set by requireAuth.
func userIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}
