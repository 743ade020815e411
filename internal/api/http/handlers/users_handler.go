package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/pkg/util"
)

// UsersHandler manages account endpoints.
type UsersHandler struct {
	service *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{service: userService}
}

// ListUsers GET /users. Staff only, enforced at the router.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUsers(users)})
}

// GetMe GET /users/me.
func (h *UsersHandler) GetMe(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(*principal.User)})
}

// UpdateMe PUT /users/me.
func (h *UsersHandler) UpdateMe(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload")
	}

	user, err := h.service.UpdateProfile(c.UserContext(), principal.User.ID, service.UserUpdateInput{
		Email: req.Email,
		Name:  req.Name,
		Role:  req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(*user)})
}

// GetUser GET /users/:id. Staff only, enforced at the router.
func (h *UsersHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(*user)})
}

// UpdateUser PUT /users/:id. Admin only, enforced at the router.
func (h *UsersHandler) UpdateUser(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload")
	}

	user, err := h.service.UpdateByAdmin(c.UserContext(), c.Params("id"), service.UserUpdateInput{
		Email: req.Email,
		Name:  req.Name,
		Role:  req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(*user)})
}

// DeleteUser DELETE /users/:id. Admin only, enforced at the router.
func (h *UsersHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}
