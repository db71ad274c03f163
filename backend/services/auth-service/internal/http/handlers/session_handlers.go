package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"docportal/backend/services/auth-service/internal/http/middleware"
	"docportal/backend/services/auth-service/internal/service"
)

// NewLogoutHandler handles POST /api/authentication/logout. It revokes whatever token
// was presented, clears the cookie and always acknowledges.
func NewLogoutHandler(authService *service.AuthService, cookies CookieConfig, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := authService.Logout(r.Context(), middleware.TokenFromRequest(r)); err != nil {
			logger.Error("failed to revoke session", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to logout")
			return
		}

		clearSessionCookie(w, cookies)
		writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
	}
}

// NewMeHandler handles GET /api/authentication/me behind AuthMiddleware.
func NewMeHandler(authService *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		user, err := authService.CurrentUser(r.Context(), claims)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to load user")
			return
		}

		writeJSON(w, http.StatusOK, newUserResponse(user))
	}
}
