package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/UrbanMistri/urbanmistri-backend/internal/services"
)

// PaymentHandler handles payment gateway webhooks
type PaymentHandler struct {
	payments *services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Webhook processes payment gateway callbacks
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	if err := h.payments.ProcessWebhook(c.Body()); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"success": true})
}
