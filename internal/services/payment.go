package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/UrbanMistri/urbanmistri-backend/internal/models"
	"github.com/UrbanMistri/urbanmistri-backend/internal/storage"
)

// Payment precondition errors
var (
	ErrNothingToPay = errors.New("booking has no outstanding amount")
	ErrAlreadyPaid  = errors.New("booking already paid")
)

// PaymentOrder is the gateway order reference handed to the client for
// online payment.
type PaymentOrder struct {
	OrderID   string  `json:"order_id"`
	BookingID string  `json:"booking_id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Receipt   string  `json:"receipt"`
}

// PaymentService handles gateway order creation and webhook processing.
// payment_status is a two-state flag from the core's point of view: it only
// flips to paid on gateway confirmation or cash collection on completion.
type PaymentService struct {
	store    storage.Store
	notifier Notifier
}

// NewPaymentService creates the payment boundary
func NewPaymentService(store storage.Store, notifier Notifier) *PaymentService {
	return &PaymentService{store: store, notifier: notifier}
}

// CreateOrder produces a gateway order reference for the booking's
// outstanding total.
func (p *PaymentService) CreateOrder(bookingID string) (*PaymentOrder, error) {
	booking, err := p.store.GetBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus == models.PaymentStatusPaid {
		return nil, ErrAlreadyPaid
	}
	if booking.TotalPrice <= 0 {
		return nil, ErrNothingToPay
	}

	order := &PaymentOrder{
		OrderID:   "order_" + uuid.NewString(),
		BookingID: booking.BookingID,
		Amount:    booking.TotalPrice,
		Currency:  "INR",
		Receipt:   "rcpt_" + uuid.NewString(),
	}

	booking.PaymentOrderID = order.OrderID
	if err := p.store.UpdateBooking(booking); err != nil {
		return nil, err
	}

	return order, nil
}

// WebhookPayload is the gateway's webhook envelope
type WebhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			ID     string  `json:"id"`
			Amount float64 `json:"amount"` // in paise
			Notes  struct {
				BookingID string `json:"booking_id"`
			} `json:"notes"`
		} `json:"payment"`
	} `json:"payload"`
	CreatedAt int64 `json:"created_at"`
}

// ProcessWebhook handles payment gateway webhooks
func (p *PaymentService) ProcessWebhook(payload []byte) error {
	var webhook WebhookPayload
	if err := json.Unmarshal(payload, &webhook); err != nil {
		return fmt.Errorf("failed to parse webhook: %w", err)
	}

	log.Printf("Processing payment webhook: %s", webhook.Event)

	switch webhook.Event {
	case "payment.captured":
		return p.handlePaymentCaptured(&webhook)
	case "payment.failed":
		return p.handlePaymentFailed(&webhook)
	default:
		log.Printf("Unhandled webhook event: %s", webhook.Event)
		return nil
	}
}

func (p *PaymentService) handlePaymentCaptured(webhook *WebhookPayload) error {
	bookingID := webhook.Payload.Payment.Notes.BookingID
	if bookingID == "" {
		return fmt.Errorf("booking_id not found in payment notes")
	}

	booking, err := p.store.GetBooking(bookingID)
	if err != nil {
		return fmt.Errorf("booking not found: %w", err)
	}

	amount := webhook.Payload.Payment.Amount / 100 // paise to rupees

	booking.PaymentStatus = models.PaymentStatusPaid
	booking.PaymentID = webhook.Payload.Payment.ID
	if err := p.store.UpdateBooking(booking); err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	customer, err := p.store.GetProfileByID(booking.CustomerID)
	if err == nil {
		body, _ := RenderTemplate("payment_received", map[string]string{
			"amount":     fmt.Sprintf("%.0f", amount),
			"booking_id": booking.BookingID,
		})
		if err := p.notifier.Send(customer.Phone, body); err != nil {
			log.Printf("Failed to send payment confirmation for booking %s: %v", booking.BookingID, err)
			// Don't fail the webhook processing
		}
	}

	log.Printf("Payment processed: %s for booking %s (₹%.0f) at %s",
		booking.PaymentID, booking.BookingID, amount,
		time.Unix(webhook.CreatedAt, 0).Format(time.RFC3339))
	return nil
}

func (p *PaymentService) handlePaymentFailed(webhook *WebhookPayload) error {
	bookingID := webhook.Payload.Payment.Notes.BookingID
	log.Printf("Payment failed for booking %s (payment %s)", bookingID, webhook.Payload.Payment.ID)
	// Status stays pending - the customer can retry or switch to cash
	return nil
}
