package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"ministryroster/internal/delivery/http/helpers"
	"ministryroster/internal/domain"
)

type contextKey string

const authContextKey contextKey = "authContext"

// SetAuthContext returns a context with the caller identity set. Used by auth middleware.
func SetAuthContext(ctx context.Context, ac domain.AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, ac)
}

// AuthFromContext returns the authenticated caller identity from the context, if present.
func AuthFromContext(ctx context.Context) (domain.AuthContext, bool) {
	ac, ok := ctx.Value(authContextKey).(domain.AuthContext)
	return ac, ok
}

// RequireAuth returns a wrapper that validates the Bearer token and sets the
// resolved {userID, role, churchID} identity in the request context.
// If the token is missing or invalid, it responds with 401 and does not call next.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "missing authorization header")
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid authorization format")
				return
			}
			token := strings.TrimSpace(auth[len(prefix):])
			if token == "" {
				helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "missing token")
				return
			}
			ac, err := verifier.Verify(token)
			if err != nil {
				helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			r = r.WithContext(SetAuthContext(r.Context(), ac))
			next(w, r)
		}
	}
}
