package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util"
)

const minPasswordLength = 6

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
	}
}

// Register creates a new account. Role defaults to user when omitted.
func (s *AuthService) Register(ctx context.Context, email, password, name, roleStr string) (*domain.User, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", time.Time{}, util.NewFieldError("VALIDATION_ERROR", "email", "valid email is required")
	}
	if len(password) < minPasswordLength {
		return nil, "", time.Time{}, util.NewFieldError("VALIDATION_ERROR", "password", "password must be at least 6 characters")
	}
	if strings.TrimSpace(name) == "" {
		return nil, "", time.Time{}, util.NewFieldRequired("name")
	}
	role, ok := domain.ParseRole(roleStr)
	if !ok {
		return nil, "", time.Time{}, util.NewFieldError("VALIDATION_ERROR", "role", "invalid role")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, &util.DomainError{
			Code: "USER_EXISTS", Field: "email",
			Message: "user with this email already exists", HTTPStatus: 409,
		}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, util.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, util.MapError(err)
	}

	user := &domain.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, util.MapError(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, util.MapError(err)
	}
	return user, token, exp, nil
}

// Login authenticates an account by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, invalidCredentials()
		}
		return nil, "", time.Time{}, util.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, invalidCredentials()
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, util.MapError(err)
	}
	return user, token, exp, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return util.NewFieldError("VALIDATION_ERROR", "newPassword", "password must be at least 6 characters")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return util.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return util.NewFieldError("INVALID_PASSWORD", "currentPassword", "current password is incorrect")
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return util.MapError(err)
	}
	user.PasswordHash = hash
	return util.MapError(s.users.Update(ctx, user))
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func invalidCredentials() error {
	return util.NewDomainError("INVALID_CREDENTIALS", "invalid email or password", 401)
}
