package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"docportal/backend/services/auth-service/internal/models"
	"docportal/backend/services/auth-service/internal/password"
	"docportal/backend/services/auth-service/internal/repository"
)

var (
	// ErrEmailInUse is returned when attempting to register duplicate email.
	ErrEmailInUse = errors.New("auth: email already registered")
	// ErrInvalidCredentials represents login failure.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrUnauthenticated means no usable session token was presented.
	ErrUnauthenticated = errors.New("auth: not authenticated")
	// ErrTokenRevoked means the token was valid but has been logged out.
	ErrTokenRevoked = errors.New("auth: token revoked")
)

// UserRepository defines storage contract used by the service.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// RevocationStore remembers logged-out token IDs until they would have expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// LoginRecorder observes login outcomes.
type LoginRecorder interface {
	ObserveLogin(result string)
}

type noopRecorder struct{}

func (noopRecorder) ObserveLogin(string) {}

// AuthService contains registration, login and session logic.
type AuthService struct {
	repo      UserRepository
	hasher    password.Hasher
	tokenizer *TokenService
	revoked   RevocationStore
	recorder  LoginRecorder
	logger    *zap.Logger
}

// NewAuthService builds AuthService. A nil recorder disables login metrics.
func NewAuthService(repo UserRepository, hasher password.Hasher, tokenizer *TokenService, revoked RevocationStore, recorder LoginRecorder, logger *zap.Logger) *AuthService {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		repo:      repo,
		hasher:    hasher,
		tokenizer: tokenizer,
		revoked:   revoked,
		recorder:  recorder,
		logger:    logger,
	}
}

// Signup registers a new user.
func (s *AuthService) Signup(ctx context.Context, email, password string, role string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("auth: email required")
	}
	if password == "" {
		return nil, errors.New("auth: password required")
	}
	if role == "" {
		role = models.DefaultRole
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}

	s.logger.Info("user signed up", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	return user, nil
}

// Login authenticates a user and produces a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	token, user, err := s.login(ctx, email, password)
	switch {
	case err == nil:
		s.recorder.ObserveLogin("success")
		s.logger.Info("user logged in", zap.Int64("user_id", user.ID))
	case errors.Is(err, ErrInvalidCredentials):
		s.recorder.ObserveLogin("invalid_credentials")
		s.logger.Info("login rejected", zap.String("email", strings.ToLower(strings.TrimSpace(email))))
	default:
		s.recorder.ObserveLogin("error")
	}
	return token, user, err
}

func (s *AuthService) login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, _, err := s.tokenizer.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Authenticate validates a presented token and rejects revoked ones.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := s.tokenizer.ValidateToken(token)
	if err != nil {
		s.logger.Debug("token rejected", zap.Error(err))
		return nil, ErrUnauthenticated
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// CurrentUser loads the account behind an authenticated session.
func (s *AuthService) CurrentUser(ctx context.Context, claims *Claims) (*models.User, error) {
	if claims == nil {
		return nil, ErrUnauthenticated
	}
	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}

// Logout revokes token for the rest of its lifetime. Missing, malformed or expired
// tokens are ignored so logout can always succeed.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	claims, err := s.tokenizer.ValidateToken(token)
	if err != nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
		return err
	}
	s.logger.Info("user logged out", zap.Int64("user_id", claims.UserID))
	return nil
}
