package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"docportal/backend/services/auth-service/internal/service"
)

// NewLoginHandler handles POST /api/authentication/login. On success it sets the
// session cookie and answers with the user profile.
func NewLoginHandler(authService *service.AuthService, cookies CookieConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		req.Email = strings.TrimSpace(req.Email)
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, validationMessage(err))
			return
		}

		token, user, err := authService.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				writeError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to login")
			return
		}

		setSessionCookie(w, cookies, token)
		writeJSON(w, http.StatusOK, newUserResponse(user))
	}
}
