package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
)

// ValidatePaymentSignature validates payment webhook signatures: HMAC-SHA256
// of the raw body with the shared webhook secret, hex-encoded in the
// X-Payment-Signature header (Razorpay scheme).
func ValidatePaymentSignature() fiber.Handler {
	return func(c *fiber.Ctx) error {
		signature := c.Get("X-Payment-Signature")
		if signature == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing payment signature",
			})
		}

		secret := os.Getenv("PAYMENT_WEBHOOK_SECRET")
		if secret == "" {
			log.Println("ERROR: PAYMENT_WEBHOOK_SECRET not set")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Server configuration error",
			})
		}

		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(c.Body())
		expected := hex.EncodeToString(mac.Sum(nil))

		if !hmac.Equal([]byte(signature), []byte(expected)) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid signature",
			})
		}

		return c.Next()
	}
}
