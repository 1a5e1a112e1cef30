package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"scribbles/internal/httputil"
	"scribbles/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UsernameKey is the context key for the authenticated username
	UsernameKey contextKey = "username"

	// AccessTokenCookie is set on login for browser clients
	AccessTokenCookie = "access_token"
)

// TokenParser validates an access token and returns its subject.
type TokenParser interface {
	Parse(token string) (string, error)
}

// SessionProvider exposes the account currently logged in to the store.
type SessionProvider interface {
	CurrentSession() (model.Session, bool)
}

// AuthMiddleware creates a middleware that validates JWT tokens and requires
// the token's subject to be the store's current session.
// Checks Authorization header first, then falls back to cookie (for web)
func AuthMiddleware(tokens TokenParser, sessions SessionProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := tokenFromRequest(r)

			// No token found in either location
			if tokenString == "" {
				httputil.WriteUnauthorized(w, "Missing authentication token")
				return
			}

			username, err := tokens.Parse(tokenString)
			if err != nil {
				if errors.Is(err, model.ErrTokenExpired) {
					httputil.WriteUnauthorizedWithCode(w, model.CodeTokenExpired, "Access token has expired")
					return
				}
				httputil.WriteUnauthorizedWithCode(w, model.CodeTokenInvalid, "Invalid authentication token")
				return
			}

			// A token outlives logout; only the active session may mutate
			session, ok := sessions.CurrentSession()
			if !ok || session.Username != username {
				httputil.WriteUnauthorizedWithCode(w, model.CodeNoSession, "Session is no longer active")
				return
			}

			ctx := context.WithValue(r.Context(), UsernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	// 1. Try Authorization header first
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	// 2. Fall back to cookie (web browsers)
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// GetUsernameFromContext extracts the authenticated username from the request context
func GetUsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok && username != ""
}
