package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"docportal/backend/services/auth-service/internal/service"
)

// SessionCookie carries the session token between browser and service.
const SessionCookie = "auth_token"

type contextKey string

const claimsKey contextKey = "claims"

// Authenticator resolves a raw token into claims.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*service.Claims, error)
}

// TokenFromRequest returns the session token from the cookie, falling back to a
// bearer Authorization header.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// AuthMiddleware rejects requests without a valid, unrevoked session.
func AuthMiddleware(auth Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := auth.Authenticate(r.Context(), TokenFromRequest(r))
			if err != nil {
				if errors.Is(err, service.ErrUnauthenticated) || errors.Is(err, service.ErrTokenRevoked) {
					writeError(w, http.StatusUnauthorized, "not authenticated")
					return
				}
				logger.Error("session lookup failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "session lookup failed")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext retrieves the authenticated session from request context.
func ClaimsFromContext(ctx context.Context) (*service.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*service.Claims)
	return claims, ok && claims != nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
