package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/UrbanMistri/urbanmistri-backend/internal/services"
)

// RequireSession validates the Bearer session token issued on OTP verify and
// stores the caller's profile id and role in locals.
func RequireSession(sessions *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing bearer token",
				"code":  "unauthorized",
			})
		}

		claims, err := sessions.ParseToken(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
				"code":  "unauthorized",
			})
		}

		c.Locals("profile_id", claims.ProfileID)
		c.Locals("role", claims.Role)
		return c.Next()
	}
}
