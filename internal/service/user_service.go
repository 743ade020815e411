package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util"
)

// UserService covers account lookup and administration.
type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// UserUpdateInput carries partial account updates. Nil fields are untouched.
type UserUpdateInput struct {
	Email *string
	Name  *string
	Role  *string
}

func (s *UserService) ListAll(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, util.MapError(err)
	}
	return users, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapUserErr(err)
	}
	return user, nil
}

// UpdateProfile applies email and name changes to the caller's own account.
// Role changes are rejected here; only admins change roles via UpdateByAdmin.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UserUpdateInput) (*domain.User, error) {
	if input.Role != nil {
		return nil, util.NewForbidden("role can only be changed by an admin")
	}
	return s.applyUpdate(ctx, userID, input)
}

// UpdateByAdmin applies email, name and role changes to any account.
func (s *UserService) UpdateByAdmin(ctx context.Context, userID string, input UserUpdateInput) (*domain.User, error) {
	return s.applyUpdate(ctx, userID, input)
}

func (s *UserService) applyUpdate(ctx context.Context, userID string, input UserUpdateInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapUserErr(err)
	}

	changed := false
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, util.NewFieldError("VALIDATION_ERROR", "email", "valid email is required")
		}
		if email != user.Email {
			if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing.ID != user.ID {
				return nil, &util.DomainError{
					Code: "EMAIL_EXISTS", Field: "email",
					Message: "email is already in use", HTTPStatus: http.StatusConflict,
				}
			} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return nil, util.MapError(err)
			}
			user.Email = email
			changed = true
		}
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, util.NewFieldRequired("name")
		}
		if name != user.Name {
			user.Name = name
			changed = true
		}
	}
	if input.Role != nil {
		role, ok := domain.ParseRole(*input.Role)
		if !ok {
			return nil, util.NewFieldError("VALIDATION_ERROR", "role", "invalid role")
		}
		if role != user.Role {
			user.Role = role
			changed = true
		}
	}

	if !changed {
		return nil, util.NewDomainError("NO_UPDATES", "no fields to update", http.StatusBadRequest)
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapUserErr(err)
	}
	return user, nil
}

// Delete removes an account. Accounts that still create or are assigned
// tickets are refused.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return mapUserErr(err)
	}
	owns, err := s.users.OwnsTickets(ctx, userID)
	if err != nil {
		return util.MapError(err)
	}
	if owns {
		return util.NewConflict("USER_HAS_TICKETS", "user still owns or is assigned tickets")
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return mapUserErr(err)
	}
	return nil
}

func mapUserErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return util.NewResourceNotFound("USER_NOT_FOUND", "user")
	}
	return util.MapError(err)
}
