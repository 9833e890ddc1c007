package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/UrbanMistri/urbanmistri-backend/internal/services"
	"github.com/UrbanMistri/urbanmistri-backend/internal/storage"
)

// AuthHandler handles OTP-based phone authentication
type AuthHandler struct {
	store    storage.Store
	otp      *services.OTPService
	sessions *services.SessionService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(store storage.Store, otp *services.OTPService, sessions *services.SessionService) *AuthHandler {
	return &AuthHandler{store: store, otp: otp, sessions: sessions}
}

func normalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone != "" && !strings.HasPrefix(phone, "+") {
		phone = "+91" + strings.TrimPrefix(phone, "91")
	}
	return phone
}

// RequestOTP sends a one-time code to the given phone
func (h *AuthHandler) RequestOTP(c *fiber.Ctx) error {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	phone := normalizePhone(req.Phone)
	if len(phone) < 10 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A valid phone number is required",
		})
	}

	if err := h.otp.RequestChallenge(phone); err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success": true,
		"message": "OTP sent",
	})
}

// VerifyOTP checks the code and returns the profile plus a session token
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req struct {
		Phone    string `json:"phone"`
		Code     string `json:"code"`
		FullName string `json:"full_name"`
		Email    string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	phone := normalizePhone(req.Phone)
	if phone == "" || req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Phone and code are required",
		})
	}

	profile, isNewUser, err := h.otp.VerifyChallenge(phone, req.Code)
	if err != nil {
		return respondServiceError(c, err)
	}

	// Optional profile fields piggyback on verification
	if req.FullName != "" || req.Email != "" {
		if req.FullName != "" {
			profile.FullName = req.FullName
		}
		if req.Email != "" {
			profile.Email = req.Email
		}
		if err := h.store.UpdateProfile(profile); err != nil {
			return respondServiceError(c, err)
		}
	}

	token, err := h.sessions.IssueToken(profile)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"profile":                  profile,
		"token":                    token,
		"is_new_user":              isNewUser,
		"needs_profile_completion": profile.FullName == "",
	})
}
