// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/carterperez-dev/templates/moodflow/internal/core"
)

const (
	UserIDKey       contextKey = "user_id"
	SessionTokenKey contextKey = "session_token"

	AdminTokenHeader = "X-Admin-Token"
)

type SessionVerifier interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// Authenticator resolves the session token from the named cookie or a
// Bearer header and rejects the request unless it maps to an active user.
func Authenticator(
	verifier SessionVerifier,
	cookieName string,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r, cookieName)

			if token == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("missing session token"),
				)
				return
			}

			userID, err := verifier.Authenticate(r.Context(), token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, UserIDKey, userID)
			ctx = context.WithValue(ctx, SessionTokenKey, token)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdminToken guards operator routes with a static shared token. An
// empty configured token disables the routes entirely.
func RequireAdminToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			supplied := r.Header.Get(AdminTokenHeader)

			if token == "" || supplied == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("admin token required"),
				)
				return
			}

			if subtle.ConstantTimeCompare([]byte(supplied), []byte(token)) != 1 {
				core.JSONError(w, core.ForbiddenError("invalid admin token"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ExtractToken(r *http.Request, cookieName string) string {
	if cookieName != "" {
		if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
			return c.Value
		}
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	if errors.Is(err, core.ErrSessionInvalid) {
		core.JSONError(w, core.SessionInvalidError())
		return
	}

	core.InternalServerError(w, err)
}

func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

func GetSessionToken(ctx context.Context) string {
	if token, ok := ctx.Value(SessionTokenKey).(string); ok {
		return token
	}
	return ""
}
