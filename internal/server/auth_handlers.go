package server

import (
	"time"

	"imhub/internal/middleware"
	"imhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	Token       string       `json:"token"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
}

// Login handles POST /api/auth/login
// @Summary Sign in
// @Description Exchange a username and password for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, models.NewValidationError("Invalid request body"))
	}

	res, err := s.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(LoginResponse{
		Token:       res.Token,
		AccessToken: res.Token,
		TokenType:   "bearer",
		ExpiresAt:   res.ExpiresAt,
		User:        res.User,
	})
}

// Verify handles GET /api/auth/verify
// @Summary Verify token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{username=string,is_admin=bool,authenticated=bool}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/verify [get]
func (s *Server) Verify(c *fiber.Ctx) error {
	id := middleware.IdentityFrom(c)
	return c.JSON(fiber.Map{
		"username":      id.Username,
		"is_admin":      id.IsAdmin,
		"authenticated": true,
	})
}
