package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/propfolio/backoffice/internal/domain"
	"github.com/propfolio/backoffice/internal/infrastructure/auth"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// SessionContextKey is the context key for the authenticated session
	SessionContextKey ContextKey = "session"
)

// AuthMiddleware creates an authentication middleware
func AuthMiddleware(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			// Parse Bearer token
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
				return
			}

			tokenString := parts[1]

			// Verify token
			claims, err := jwtManager.Verify(tokenString)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			session := domain.Session{
				UserID: claims.UserID,
				OrgID:  claims.OrgID,
				Email:  claims.Email,
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// InternalAuth guards dispatcher-facing endpoints with a shared secret. The
// process endpoint accepts raw job payloads and must never be reachable with
// an end-user token.
func InternalAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" || r.Header.Get("X-Internal-Token") != token {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetSessionFromContext extracts the authenticated session from context
func GetSessionFromContext(ctx context.Context) (domain.Session, bool) {
	session, ok := ctx.Value(SessionContextKey).(domain.Session)
	return session, ok
}
