package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"bankcards/internal/auth"
	"bankcards/internal/models"
	"bankcards/internal/repository"
)

type contextKey string

const identityKey contextKey = "identity"

const bearerPrefix = "Bearer "

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, identityKey, user)
}

// CurrentUser extracts the authenticated user from the context.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(identityKey).(*models.User)
	return user, ok
}

// Authenticate establishes the request identity from a Bearer token.
// Any failure — missing or malformed header, bad signature, expiry,
// unknown or disabled user — leaves the request anonymous; rejecting
// anonymous requests is RequireAuth's job, not this filter's.
//
// The role attached to the request is the user's stored role, looked up
// fresh on every request. The token's embedded role claim is never
// consulted for authorization, so a demoted user loses admin access as
// soon as the database row changes, not when the token expires.
func Authenticate(tokens *auth.TokenProvider, users repository.UserRepository, db repository.DBExecutor, log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				next.ServeHTTP(w, r)
				return
			}
			token := strings.TrimPrefix(header, bearerPrefix)
			if !tokens.Verify(token) {
				next.ServeHTTP(w, r)
				return
			}

			username := tokens.SubjectOf(token)
			user, err := users.FindByUsername(r.Context(), db, username)
			if err != nil || !user.Enabled {
				if err != nil {
					log.Debugf("Token subject %q did not resolve to a user: %v", username, err)
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r.Context()); !ok {
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects anonymous requests with 401 and authenticated
// non-admins with 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := CurrentUser(r.Context())
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}
		if !user.IsAdmin() {
			writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}
