package middleware

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/UrbanMistri/urbanmistri-backend/internal/ratelimit"
)

// RateLimit rejects callers exceeding max requests per window, keyed by
// client IP and path. A counter backend failure lets the request through -
// limiting is protective, not load-bearing.
func RateLimit(counter ratelimit.Counter, max int64, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP() + ":" + c.Path()
		count, err := counter.Incr(c.Context(), key, window)
		if err != nil {
			log.Printf("Rate limit counter error for %s: %v", key, err)
			return c.Next()
		}
		if count > max {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, slow down",
				"code":  "rate_limited",
			})
		}
		return c.Next()
	}
}
