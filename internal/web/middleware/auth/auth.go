// Package auth provides the bearer token middleware protecting the
// administrative API.
package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/GoCampusAuth/GoCampusAuth/internal/token"
)

// ClaimsKey is the fiber.Locals key holding the verified token claims.
const ClaimsKey = "token_claims"

const bearerPrefix = "Bearer "

// New returns a middleware verifying the Authorization bearer token and
// storing its claims in the request locals.
func New(issuer *token.Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, bearerPrefix) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
		}

		claims, err := issuer.Verify(strings.TrimPrefix(header, bearerPrefix), token.TypeAccess)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}

		c.Locals(ClaimsKey, claims)

		return c.Next()
	}
}

// RequireStaff rejects requests whose verified claims lack the staff flag.
// It must run after New.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := Claims(c)
		if claims == nil || !claims.Staff {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "staff access required"})
		}

		return c.Next()
	}
}

// Claims returns the verified claims of the request, nil when absent.
func Claims(c *fiber.Ctx) *token.Claims {
	claims, _ := c.Locals(ClaimsKey).(*token.Claims)

	return claims
}
