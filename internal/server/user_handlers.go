package server

import (
	"imhub/internal/middleware"
	"imhub/internal/models"
	"imhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListUsers handles GET /api/users (admin only)
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.User
// @Router /users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	users, err := s.userService.ListUsers(c.UserContext())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(users)
}

// GetUser handles GET /api/users/:id (admin only)
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUserByID(c.UserContext(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(user)
}

// CreateUser handles POST /api/users (admin only)
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateUserInput true "New account"
// @Success 201 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users [post]
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var in service.CreateUserInput
	if err := c.BodyParser(&in); err != nil {
		return respondErr(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.CreateUser(c.UserContext(), in)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// UpdateUser handles PUT /api/users/:id (admin only)
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var in service.UpdateUserInput
	if err := c.BodyParser(&in); err != nil {
		return respondErr(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateUser(c.UserContext(), id, in)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(user)
}

// DeleteUser handles DELETE /api/users/:id (admin only). Removal is permanent
// and an admin cannot delete their own account.
// @Summary Delete user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} object{message=string,id=int}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [delete]
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.DeleteUser(c.UserContext(), middleware.IdentityFrom(c), id); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted", "id": id})
}

// GetModerationQueue handles GET /api/admin/moderation/queue
// @Summary Moderation queue counts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.QueueRow
// @Router /admin/moderation/queue [get]
func (s *Server) GetModerationQueue(c *fiber.Ctx) error {
	rows, err := s.moderationService.Queue(c.UserContext())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(rows)
}
