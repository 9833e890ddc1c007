package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/UrbanMistri/urbanmistri-backend/internal/models"
	"github.com/UrbanMistri/urbanmistri-backend/internal/services"
	"github.com/UrbanMistri/urbanmistri-backend/internal/storage"
)

// AdminHandler handles admin operations: assignment, worker onboarding,
// promo and slot management
type AdminHandler struct {
	store    storage.Store
	matching *services.MatchingService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(store storage.Store, matching *services.MatchingService) *AdminHandler {
	return &AdminHandler{store: store, matching: matching}
}

// AutoAssign picks the best-fit worker for a booking
func (h *AdminHandler) AutoAssign(c *fiber.Ctx) error {
	booking, err := h.matching.AutoAssign(c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(booking)
}

// ManualAssign assigns a specific worker to a booking
func (h *AdminHandler) ManualAssign(c *fiber.Ctx) error {
	var req struct {
		EmployeeID string `json:"employee_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.EmployeeID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "employee_id is required",
		})
	}

	booking, err := h.matching.ManualAssign(c.Params("id"), req.EmployeeID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(booking)
}

// UpdateWorkerVerification sets a worker's verification flags
func (h *AdminHandler) UpdateWorkerVerification(c *fiber.Ctx) error {
	var req struct {
		ApprovalStatus        *string `json:"approval_status"`
		IDVerified            *bool   `json:"id_verified"`
		SkillsVerified        *bool   `json:"skills_verified"`
		BackgroundCheckStatus *string `json:"background_check_status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	worker, err := h.store.GetProfileByID(c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	if worker.Role != models.RoleWorker {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Profile is not a worker",
			"code":  "not_a_worker",
		})
	}

	validStatus := func(s string) bool {
		return s == models.ApprovalPending || s == models.ApprovalApproved || s == models.ApprovalRejected
	}
	if req.ApprovalStatus != nil {
		if !validStatus(*req.ApprovalStatus) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "approval_status must be pending, approved or rejected",
			})
		}
		worker.ApprovalStatus = *req.ApprovalStatus
	}
	if req.BackgroundCheckStatus != nil {
		if !validStatus(*req.BackgroundCheckStatus) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "background_check_status must be pending, approved or rejected",
			})
		}
		worker.BackgroundCheckStatus = *req.BackgroundCheckStatus
	}
	if req.IDVerified != nil {
		worker.IDVerified = *req.IDVerified
	}
	if req.SkillsVerified != nil {
		worker.SkillsVerified = *req.SkillsVerified
	}

	if err := h.store.UpdateProfile(worker); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(worker)
}

// CreatePromo creates a promo code
func (h *AdminHandler) CreatePromo(c *fiber.Ctx) error {
	var req struct {
		Code          string     `json:"code"`
		DiscountType  string     `json:"discount_type"`
		DiscountValue float64    `json:"discount_value"`
		MaxDiscount   float64    `json:"max_discount"`
		MinOrderValue float64    `json:"min_order_value"`
		ValidFrom     *time.Time `json:"valid_from"`
		ValidUntil    *time.Time `json:"valid_until"`
		MaxUsage      int        `json:"max_usage"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Code == "" || req.DiscountValue <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "code and a positive discount_value are required",
		})
	}
	if req.DiscountType != models.DiscountTypePercentage && req.DiscountType != models.DiscountTypeFlat {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "discount_type must be percentage or flat",
		})
	}

	promo, err := h.store.CreatePromoCode(&models.PromoCode{
		Code:          req.Code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MaxDiscount:   req.MaxDiscount,
		MinOrderValue: req.MinOrderValue,
		ValidFrom:     req.ValidFrom,
		ValidUntil:    req.ValidUntil,
		IsActive:      true,
		MaxUsage:      req.MaxUsage,
	})
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Promo code already exists",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(promo)
}

// DeactivatePromo disables a promo code
func (h *AdminHandler) DeactivatePromo(c *fiber.Ctx) error {
	promo, err := h.store.GetPromoCode(c.Params("code"))
	if err != nil {
		return respondServiceError(c, err)
	}
	promo.IsActive = false
	if err := h.store.UpdatePromoCode(promo); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(promo)
}

// UpsertSlot sets capacity for a (service, date, window) tuple
func (h *AdminHandler) UpsertSlot(c *fiber.Ctx) error {
	var req struct {
		ServiceID     string `json:"service_id"`
		Date          string `json:"date"`
		TimeSlot      string `json:"time_slot"`
		TotalCapacity int    `json:"total_capacity"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.ServiceID == "" || req.Date == "" || !models.ValidTimeSlot(req.TimeSlot) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "service_id, date and a valid time_slot are required",
		})
	}
	if req.TotalCapacity < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "total_capacity cannot be negative",
		})
	}

	slot, err := h.store.GetSlot(req.ServiceID, req.Date, req.TimeSlot)
	if err != nil {
		slot, err = h.store.CreateSlot(&models.Slot{
			ServiceID:     req.ServiceID,
			Date:          req.Date,
			TimeSlot:      req.TimeSlot,
			TotalCapacity: req.TotalCapacity,
			IsAvailable:   true,
		})
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(slot)
	}

	slot.TotalCapacity = req.TotalCapacity
	slot.IsAvailable = !slot.Full()
	if err := h.store.UpdateSlot(slot); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(slot)
}
