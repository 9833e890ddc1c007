package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/UrbanMistri/urbanmistri-backend/internal/models"
	"github.com/UrbanMistri/urbanmistri-backend/internal/services"
	"github.com/UrbanMistri/urbanmistri-backend/internal/storage"
)

// BookingHandler handles booking lifecycle requests
type BookingHandler struct {
	store    storage.Store
	bookings *services.BookingService
	payments *services.PaymentService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(store storage.Store, bookings *services.BookingService, payments *services.PaymentService) *BookingHandler {
	return &BookingHandler{store: store, bookings: bookings, payments: payments}
}

// CreateBooking handles creating a new booking
func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	var req struct {
		ServiceID       string  `json:"service_id"`
		BookingDate     string  `json:"booking_date"`
		BookingTime     string  `json:"booking_time"`
		CustomerID      string  `json:"customer_id"`
		CustomerAddress string  `json:"customer_address"`
		BasePrice       float64 `json:"base_price"`
		AddonPrice      float64 `json:"addon_price"`
		DiscountAmount  float64 `json:"discount_amount"`
		WalletAmount    float64 `json:"wallet_amount"`
		PromoCode       string  `json:"promo_code"`
		PaymentMethod   string  `json:"payment_method"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	// The session owner creates bookings for themselves unless an explicit
	// customer_id was provided (admin tooling)
	if req.CustomerID == "" {
		if id, ok := c.Locals("profile_id").(string); ok {
			req.CustomerID = id
		}
	}

	if req.ServiceID == "" || req.BookingDate == "" || req.BookingTime == "" || req.CustomerID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "service_id, booking_date, booking_time and customer_id are required",
		})
	}
	if !models.ValidTimeSlot(req.BookingTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "booking_time must be morning, afternoon or evening",
			"code":  "invalid_time_slot",
		})
	}
	if req.BasePrice < 0 || req.AddonPrice < 0 || req.DiscountAmount < 0 || req.WalletAmount < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Prices cannot be negative",
		})
	}

	booking, err := h.bookings.Create(services.CreateBookingInput{
		CustomerID:      req.CustomerID,
		ServiceID:       req.ServiceID,
		BookingDate:     req.BookingDate,
		BookingTime:     req.BookingTime,
		CustomerAddress: req.CustomerAddress,
		BasePrice:       req.BasePrice,
		AddonPrice:      req.AddonPrice,
		DiscountAmount:  req.DiscountAmount,
		WalletAmount:    req.WalletAmount,
		PromoCode:       req.PromoCode,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Booking created successfully",
		"booking": booking,
	})
}

// GetBooking retrieves a booking by ID
func (h *BookingHandler) GetBooking(c *fiber.Ctx) error {
	booking, err := h.store.GetBooking(c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(booking)
}

// GetMyBookings lists the session owner's bookings
func (h *BookingHandler) GetMyBookings(c *fiber.Ctx) error {
	profileID, _ := c.Locals("profile_id").(string)
	role, _ := c.Locals("role").(string)

	var (
		bookings []*models.Booking
		err      error
	)
	if role == models.RoleWorker {
		bookings, err = h.store.GetBookingsByEmployee(profileID)
	} else {
		bookings, err = h.store.GetBookingsByCustomer(profileID)
	}
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// Accept marks the booking accepted by its worker
func (h *BookingHandler) Accept(c *fiber.Ctx) error {
	booking, err := h.bookings.Accept(c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(booking)
}

// MarkReached records the worker's arrival
func (h *BookingHandler) MarkReached(c *fiber.Ctx) error {
	booking, err := h.bookings.MarkReached(c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(booking)
}

// StartWork moves the booking to in_progress
func (h *BookingHandler) StartWork(c *fiber.Ctx) error {
	var req struct {
		BeforePhotos []string `json:"before_photos"`
	}
	// Body is optional
	_ = c.BodyParser(&req)

	booking, err := h.bookings.StartWork(c.Params("id"), req.BeforePhotos)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(booking)
}

// Complete finishes the booking
func (h *BookingHandler) Complete(c *fiber.Ctx) error {
	var req struct {
		AfterPhotos []string `json:"after_photos"`
	}
	_ = c.BodyParser(&req)

	booking, err := h.bookings.Complete(c.Params("id"), req.AfterPhotos)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(booking)
}

// Cancel cancels the booking
func (h *BookingHandler) Cancel(c *fiber.Ctx) error {
	var req struct {
		Reason      string `json:"reason"`
		CancelledBy string `json:"cancelled_by"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.CancelledBy == "" {
		req.CancelledBy = "customer"
	}

	booking, err := h.bookings.Cancel(c.Params("id"), req.Reason, req.CancelledBy)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(booking)
}

// Reschedule moves the booking to a new slot
func (h *BookingHandler) Reschedule(c *fiber.Ctx) error {
	var req struct {
		BookingDate string `json:"booking_date"`
		BookingTime string `json:"booking_time"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.BookingDate == "" || !models.ValidTimeSlot(req.BookingTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "booking_date and a valid booking_time are required",
		})
	}

	booking, err := h.bookings.Reschedule(c.Params("id"), req.BookingDate, req.BookingTime)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(booking)
}

// Pay creates a payment gateway order for the booking's outstanding amount
func (h *BookingHandler) Pay(c *fiber.Ctx) error {
	order, err := h.payments.CreateOrder(c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"order": order})
}
