// Package authclient exposes the portal's authentication endpoints as named operations.
// It owns the paths and verbs only; session handling, decoding and error shapes belong
// to the injected HTTPClient.
package authclient

import "context"

const (
	loginPath  = "/api/authentication/login"
	logoutPath = "/api/authentication/logout"
	mePath     = "/api/authentication/me"
)

// LoginRequest carries whatever credentials the backend login endpoint expects.
type LoginRequest map[string]any

// UserDTO is the authenticated user's profile as returned by the backend.
type UserDTO map[string]any

// MessageResponse is the acknowledgement returned by logout.
type MessageResponse struct {
	Message string `json:"message"`
}

// HTTPClient is the transport AuthService delegates to. *httpclient.Client satisfies it.
type HTTPClient interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

// AuthService proxies the authentication endpoints.
type AuthService struct {
	client HTTPClient
}

// NewAuthService returns service.
func NewAuthService(client HTTPClient) *AuthService {
	return &AuthService{client: client}
}

// Login posts the credentials and returns the authenticated user.
func (s *AuthService) Login(ctx context.Context, data LoginRequest) (UserDTO, error) {
	var user UserDTO
	if err := s.client.Post(ctx, loginPath, data, &user); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout ends the current session.
func (s *AuthService) Logout(ctx context.Context) (MessageResponse, error) {
	var resp MessageResponse
	if err := s.client.Post(ctx, logoutPath, nil, &resp); err != nil {
		return MessageResponse{}, err
	}
	return resp, nil
}

// CurrentUser fetches the user bound to the current session.
func (s *AuthService) CurrentUser(ctx context.Context) (UserDTO, error) {
	var user UserDTO
	if err := s.client.Get(ctx, mePath, &user); err != nil {
		return nil, err
	}
	return user, nil
}
