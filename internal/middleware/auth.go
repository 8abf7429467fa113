// Package middleware provides authentication, logging, metrics and rate limiting middleware.
package middleware

import (
	"context"

	"imhub/internal/auth"
	"imhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

const identityLocal = "identity"

// RequireAuth enforces a valid bearer token and stores the caller identity.
func RequireAuth(issuer *auth.Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := issuer.VerifyHeader(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
		setIdentity(c, id)
		return c.Next()
	}
}

// OptionalAuth stores the caller identity when a valid bearer token is present
// and otherwise lets the request through anonymously.
func OptionalAuth(issuer *auth.Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id := issuer.VerifyOptional(c.Get(fiber.HeaderAuthorization)); id != nil {
			setIdentity(c, id)
		}
		return c.Next()
	}
}

// RequireAdmin rejects callers whose token does not carry the admin flag.
// It must run after RequireAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := IdentityFrom(c)
		if id == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}
		if !id.IsAdmin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// IdentityFrom returns the verified caller, or nil for anonymous requests.
func IdentityFrom(c *fiber.Ctx) *auth.Identity {
	id, _ := c.Locals(identityLocal).(*auth.Identity)
	return id
}

// IsAdmin reports whether the request carries a verified admin identity.
func IsAdmin(c *fiber.Ctx) bool {
	id := IdentityFrom(c)
	return id != nil && id.IsAdmin
}

func setIdentity(c *fiber.Ctx, id *auth.Identity) {
	c.Locals(identityLocal, id)
	// Sync to UserContext for logging and downstream services
	c.SetUserContext(context.WithValue(c.UserContext(), UserKey, id.Username))
}
