package middleware

import (
	"crypto/subtle"
	"os"

	"github.com/gofiber/fiber/v2"
)

// RequireAdminKey gates admin-only mutations behind the X-Admin-Key header.
func RequireAdminKey() fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminKey := os.Getenv("ADMIN_API_KEY")
		if adminKey == "" {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Server configuration error",
			})
		}

		provided := c.Get("X-Admin-Key")
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(adminKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid admin key",
				"code":  "unauthorized",
			})
		}

		return c.Next()
	}
}
