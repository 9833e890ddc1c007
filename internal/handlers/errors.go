package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/UrbanMistri/urbanmistri-backend/internal/services"
	"github.com/UrbanMistri/urbanmistri-backend/internal/storage"
)

type errorMapping struct {
	status int
	code   string
}

// Precondition errors map to stable codes; anything unmapped is an
// infrastructure failure and surfaces as 500.
var errorMappings = []struct {
	err     error
	mapping errorMapping
}{
	{services.ErrOTPRateLimited, errorMapping{fiber.StatusTooManyRequests, "rate_limited"}},
	{services.ErrOTPNotFound, errorMapping{fiber.StatusBadRequest, "otp_not_found"}},
	{services.ErrOTPExpired, errorMapping{fiber.StatusBadRequest, "otp_expired"}},
	{services.ErrOTPAttemptsExceeded, errorMapping{fiber.StatusBadRequest, "otp_attempts_exceeded"}},
	{services.ErrOTPInvalid, errorMapping{fiber.StatusBadRequest, "otp_invalid"}},
	{services.ErrPromoInvalid, errorMapping{fiber.StatusBadRequest, "promo_invalid"}},
	{services.ErrPromoNotYetValid, errorMapping{fiber.StatusBadRequest, "promo_not_yet_valid"}},
	{services.ErrPromoExpired, errorMapping{fiber.StatusBadRequest, "promo_expired"}},
	{services.ErrPromoMinOrder, errorMapping{fiber.StatusBadRequest, "promo_min_order"}},
	{services.ErrPromoUsageLimit, errorMapping{fiber.StatusBadRequest, "promo_usage_limit"}},
	{services.ErrInvalidWalletAmount, errorMapping{fiber.StatusBadRequest, "invalid_wallet_amount"}},
	{services.ErrInsufficientWalletBalance, errorMapping{fiber.StatusBadRequest, "insufficient_wallet_balance"}},
	{services.ErrInvalidTransactionAmount, errorMapping{fiber.StatusBadRequest, "invalid_amount"}},
	{services.ErrSlotUnavailable, errorMapping{fiber.StatusBadRequest, "slot_unavailable"}},
	{services.ErrInvalidTimeSlot, errorMapping{fiber.StatusBadRequest, "invalid_time_slot"}},
	{services.ErrPhoneNotVerified, errorMapping{fiber.StatusForbidden, "phone_not_verified"}},
	{services.ErrAlreadyAssigned, errorMapping{fiber.StatusBadRequest, "already_assigned"}},
	{services.ErrNoEligibleWorkers, errorMapping{fiber.StatusNotFound, "no_eligible_workers"}},
	{services.ErrWorkerNotVerified, errorMapping{fiber.StatusBadRequest, "worker_not_verified"}},
	{services.ErrNotAWorker, errorMapping{fiber.StatusBadRequest, "not_a_worker"}},
	{services.ErrInvalidStatus, errorMapping{fiber.StatusBadRequest, "invalid_status"}},
	{services.ErrAlreadyCancelled, errorMapping{fiber.StatusBadRequest, "already_cancelled"}},
	{services.ErrCannotCancelCompleted, errorMapping{fiber.StatusBadRequest, "cannot_cancel_completed"}},
	{services.ErrNothingToPay, errorMapping{fiber.StatusBadRequest, "nothing_to_pay"}},
	{services.ErrAlreadyPaid, errorMapping{fiber.StatusBadRequest, "already_paid"}},
	{storage.ErrNotFound, errorMapping{fiber.StatusNotFound, "not_found"}},
}

// respondServiceError translates a service error into the JSON error shape
// used across the API.
func respondServiceError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return c.Status(m.mapping.status).JSON(fiber.Map{
				"error": err.Error(),
				"code":  m.mapping.code,
			})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
		"code":  "internal_error",
	})
}
