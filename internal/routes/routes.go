package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/UrbanMistri/urbanmistri-backend/internal/handlers"
	"github.com/UrbanMistri/urbanmistri-backend/internal/middleware"
	"github.com/UrbanMistri/urbanmistri-backend/internal/ratelimit"
	"github.com/UrbanMistri/urbanmistri-backend/internal/services"
	"github.com/UrbanMistri/urbanmistri-backend/internal/storage"
)

// Deps carries everything route setup needs
type Deps struct {
	Store    storage.Store
	OTP      *services.OTPService
	Sessions *services.SessionService
	Bookings *services.BookingService
	Matching *services.MatchingService
	Payments *services.PaymentService
	Limiter  ratelimit.Counter
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, deps Deps) {
	authHandler := handlers.NewAuthHandler(deps.Store, deps.OTP, deps.Sessions)
	bookingHandler := handlers.NewBookingHandler(deps.Store, deps.Bookings, deps.Payments)
	adminHandler := handlers.NewAdminHandler(deps.Store, deps.Matching)
	paymentHandler := handlers.NewPaymentHandler(deps.Payments)

	api := app.Group("/api")

	// Auth routes - rate limited per IP on top of the OTP resend throttle
	auth := api.Group("/auth", middleware.RateLimit(deps.Limiter, 10, time.Minute))
	auth.Post("/request-otp", authHandler.RequestOTP)
	auth.Post("/verify-otp", authHandler.VerifyOTP)

	// Booking routes - session required
	bookings := api.Group("/bookings", middleware.RequireSession(deps.Sessions))
	bookings.Post("/", bookingHandler.CreateBooking)
	bookings.Get("/mine", bookingHandler.GetMyBookings)
	bookings.Get("/:id", bookingHandler.GetBooking)
	bookings.Post("/:id/accept", bookingHandler.Accept)
	bookings.Post("/:id/mark-reached", bookingHandler.MarkReached)
	bookings.Post("/:id/start-work", bookingHandler.StartWork)
	bookings.Post("/:id/complete", bookingHandler.Complete)
	bookings.Patch("/:id/cancel", bookingHandler.Cancel)
	bookings.Patch("/:id/reschedule", bookingHandler.Reschedule)
	bookings.Post("/:id/pay", bookingHandler.Pay)

	// Admin routes - X-Admin-Key header required
	admin := app.Group("/admin", middleware.RequireAdminKey())
	admin.Patch("/bookings/:id/auto-assign", adminHandler.AutoAssign)
	admin.Patch("/bookings/:id/assign", adminHandler.ManualAssign)
	admin.Patch("/workers/:id/verification", adminHandler.UpdateWorkerVerification)
	admin.Post("/promos", adminHandler.CreatePromo)
	admin.Patch("/promos/:code/deactivate", adminHandler.DeactivatePromo)
	admin.Post("/slots", adminHandler.UpsertSlot)

	// Payment gateway webhook - HMAC signature validated
	webhooks := app.Group("/webhook")
	webhooks.Post("/payment", middleware.ValidatePaymentSignature(), paymentHandler.Webhook)
}
