package middleware

import (
	"context"
	"errors"
	"strings"

	"gym/internal/models"
	"gym/internal/services"
	"gym/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// Keys of the values SessionRequired stores in the fiber context.
const (
	LocalUsername  = "username"
	LocalSessionID = "session_id"
	LocalToken     = "token"
	localRequestID = "requestid"
)

// TokenValidator resolves a bearer token to its login session.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*models.Session, error)
}

// RequestContext returns the request context tagged with the request id
// assigned by the requestid middleware.
func RequestContext(c *fiber.Ctx) context.Context {
	id, _ := c.Locals(localRequestID).(string)
	return logger.WithCorrelationID(c.UserContext(), id)
}

// Username returns the authenticated username, or "" for public routes.
func Username(c *fiber.Ctx) string {
	username, _ := c.Locals(LocalUsername).(string)
	return username
}

// SessionRequired is a Fiber middleware that admits only requests carrying a
// token of a live session.
func SessionRequired(auth TokenValidator, log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		ctx := RequestContext(c)
		session, err := auth.ValidateToken(ctx, parts[1])
		if err != nil {
			if !errors.Is(err, services.ErrAuthentication) {
				logger.FromContext(ctx, log).InternalError("session lookup failed", err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": "Could not verify session",
				})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals(LocalUsername, session.Username)
		c.Locals(LocalSessionID, session.ID)
		c.Locals(LocalToken, parts[1])

		return c.Next()
	}
}

// OwnerOnly is a Fiber middleware that admits only requests whose
// authenticated username equals the route parameter param.
func OwnerOnly(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Username(c) != c.Params(param) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Access to another user's profile is forbidden",
			})
		}
		return c.Next()
	}
}
