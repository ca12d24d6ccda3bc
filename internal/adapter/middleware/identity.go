package middleware

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UserIDKey is the request-locals key holding the caller's uuid.UUID.
const UserIDKey = "user_id"

// Identity trusts the user id the API gateway propagates after it has
// validated the caller's JWT. Token issuance and verification live in the
// gateway, not here; this service only runs behind it.
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("X-User-Id")
		if header == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Missing user identity"})
		}

		userID, err := uuid.Parse(header)
		if err != nil {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user identity"})
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}
