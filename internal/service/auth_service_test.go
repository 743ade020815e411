package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func newAuthFixture() (*AuthService, *fakeUserRepo) {
	repo := newFakeUserRepo()
	svc := NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            4,
	}, repo)
	return svc, repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	user, token, expiresAt, err := svc.Register(ctx, "New@Example.com", "secret1", "New User", "")
	require.NoError(t, err)
	require.Equal(t, "new@example.com", user.Email)
	require.Equal(t, domain.RoleUser, user.Role)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	logged, token, _, err := svc.Login(ctx, "new@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, user.ID, logged.ID)
	require.NotEmpty(t, token)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "not-an-email", "secret1", "n", "")
	requireDomainCode(t, err, "VALIDATION_ERROR", 400)

	_, _, _, err = svc.Register(ctx, "a@example.com", "short", "n", "")
	requireDomainCode(t, err, "VALIDATION_ERROR", 400)

	_, _, _, err = svc.Register(ctx, "a@example.com", "secret1", "  ", "")
	requireDomainCode(t, err, "FIELD_REQUIRED", 400)

	_, _, _, err = svc.Register(ctx, "a@example.com", "secret1", "n", "superuser")
	requireDomainCode(t, err, "VALIDATION_ERROR", 400)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "a@example.com", "secret1", "First", "")
	require.NoError(t, err)

	_, _, _, err = svc.Register(ctx, "A@Example.com", "secret2", "Second", "")
	requireDomainCode(t, err, "USER_EXISTS", 409)
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "a@example.com", "secret1", "n", "")
	require.NoError(t, err)

	_, _, _, err = svc.Login(ctx, "a@example.com", "wrong")
	requireDomainCode(t, err, "INVALID_CREDENTIALS", 401)

	_, _, _, err = svc.Login(ctx, "missing@example.com", "secret1")
	requireDomainCode(t, err, "INVALID_CREDENTIALS", 401)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	user, _, _, err := svc.Register(ctx, "a@example.com", "secret1", "n", "")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, "wrong", "newsecret")
	requireDomainCode(t, err, "INVALID_PASSWORD", 400)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "secret1", "newsecret"))

	_, _, _, err = svc.Login(ctx, "a@example.com", "newsecret")
	require.NoError(t, err)
	_, _, _, err = svc.Login(ctx, "a@example.com", "secret1")
	requireDomainCode(t, err, "INVALID_CREDENTIALS", 401)
}
