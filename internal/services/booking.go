package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/UrbanMistri/urbanmistri-backend/internal/models"
	"github.com/UrbanMistri/urbanmistri-backend/internal/storage"
)

// Booking precondition errors
var (
	ErrPhoneNotVerified      = errors.New("customer phone not verified")
	ErrInvalidStatus         = errors.New("invalid status for this action")
	ErrAlreadyCancelled      = errors.New("booking already cancelled")
	ErrCannotCancelCompleted = errors.New("cannot cancel a completed booking")
	ErrAlreadyDeleted        = errors.New("booking already deleted")
)

// BookingService owns the booking status field and its guarded transitions,
// orchestrating pricing, slots, wallet and matching. Guards are deliberately
// permissive past the first hop: only cancelled/completed block most events,
// tolerating out-of-order field reporting by workers (e.g. marking reached
// without an explicit accept). This is policy, not an oversight.
type BookingService struct {
	store    storage.Store
	pricing  *PricingService
	wallet   *WalletService
	slots    *SlotService
	matching *MatchingService
	events   Publisher
}

// NewBookingService wires the lifecycle state machine
func NewBookingService(store storage.Store, pricing *PricingService, wallet *WalletService,
	slots *SlotService, matching *MatchingService, events Publisher) *BookingService {
	return &BookingService{
		store:    store,
		pricing:  pricing,
		wallet:   wallet,
		slots:    slots,
		matching: matching,
		events:   events,
	}
}

// CreateBookingInput carries the validated request fields for a new booking
type CreateBookingInput struct {
	CustomerID      string
	ServiceID       string
	BookingDate     string
	BookingTime     string
	CustomerAddress string
	BasePrice       float64
	AddonPrice      float64
	DiscountAmount  float64
	WalletAmount    float64
	PromoCode       string
	PaymentMethod   string
}

// Create runs the full creation sequence: phone-verified gate, authoritative
// pricing, slot reservation, wallet debit, insert, promo increment. The
// store gives no multi-document transaction, so the sequence compensates:
// a reserved slot is explicitly released when a later step fails.
func (s *BookingService) Create(input CreateBookingInput) (*models.Booking, error) {
	customer, err := s.store.GetProfileByID(input.CustomerID)
	if err != nil {
		return nil, err
	}
	if !customer.PhoneVerified {
		return nil, ErrPhoneNotVerified
	}

	subtotal := input.BasePrice + input.AddonPrice

	// Promo resolution overrides any client-submitted discount
	discount := input.DiscountAmount
	var promo *models.PromoCode
	if input.PromoCode != "" {
		promo, err = s.pricing.ResolvePromo(input.PromoCode, subtotal)
		if err != nil {
			return nil, err
		}
		discount = s.pricing.DiscountFor(promo, subtotal)
	}

	total, err := s.pricing.ComputeTotal(input.BasePrice, input.AddonPrice, discount, input.WalletAmount)
	if err != nil {
		return nil, err
	}

	// Balance gate before any write; the debit itself re-checks
	if input.WalletAmount > 0 && input.WalletAmount > customer.WalletBalance {
		return nil, ErrInsufficientWalletBalance
	}

	if err := s.slots.Reserve(input.ServiceID, input.BookingDate, input.BookingTime); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		CustomerID:      input.CustomerID,
		ServiceID:       input.ServiceID,
		Status:          models.BookingStatusPending,
		BookingDate:     input.BookingDate,
		BookingTime:     input.BookingTime,
		CustomerAddress: input.CustomerAddress,
		BasePrice:       input.BasePrice,
		AddonPrice:      input.AddonPrice,
		DiscountAmount:  discount,
		WalletAmount:    input.WalletAmount,
		TotalPrice:      total,
		PromoCode:       input.PromoCode,
		PaymentMethod:   input.PaymentMethod,
		PaymentStatus:   models.PaymentStatusPending,
	}
	if booking.PaymentMethod == "" {
		booking.PaymentMethod = models.PaymentMethodOnline
	}
	if total == 0 && input.WalletAmount > 0 {
		booking.PaymentMethod = models.PaymentMethodWallet
		booking.PaymentStatus = models.PaymentStatusPaid
	}

	booking, err = s.store.CreateBooking(booking)
	if err != nil {
		s.compensateSlot(input.ServiceID, input.BookingDate, input.BookingTime)
		return nil, err
	}

	if input.WalletAmount > 0 {
		err := s.wallet.Debit(input.CustomerID, input.WalletAmount,
			"Wallet payment for booking "+booking.BookingID, booking.BookingID)
		if err != nil {
			booking.IsDeleted = true
			if uerr := s.store.UpdateBooking(booking); uerr != nil {
				log.Printf("Failed to mark booking %s deleted after debit failure: %v", booking.BookingID, uerr)
			}
			s.compensateSlot(input.ServiceID, input.BookingDate, input.BookingTime)
			return nil, err
		}
	}

	// Exactly one increment per successful booking referencing the code
	if promo != nil {
		promo.UsageCount++
		if err := s.store.UpdatePromoCode(promo); err != nil {
			log.Printf("Failed to increment usage for promo %s: %v", promo.Code, err)
		}
	}

	s.events.Publish(BookingStatusChanged{
		Booking:   booking,
		OldStatus: "",
		NewStatus: booking.Status,
	})

	return booking, nil
}

func (s *BookingService) compensateSlot(serviceID, date, timeSlot string) {
	if err := s.slots.Release(serviceID, date, timeSlot); err != nil {
		log.Printf("Failed to release slot %s/%s/%s during compensation: %v", serviceID, date, timeSlot, err)
	}
}

// Accept marks the booking accepted by its worker.
func (s *BookingService) Accept(bookingID string) (*models.Booking, error) {
	return s.transition(bookingID, models.BookingStatusAccepted, func(b *models.Booking, now time.Time) {
		b.AcceptedAt = &now
	})
}

// MarkReached records the worker's arrival on site.
func (s *BookingService) MarkReached(bookingID string) (*models.Booking, error) {
	return s.transition(bookingID, models.BookingStatusReached, func(b *models.Booking, now time.Time) {
		b.ReachedAt = &now
	})
}

// StartWork moves the booking to in_progress, optionally attaching
// before-photos.
func (s *BookingService) StartWork(bookingID string, beforePhotos []string) (*models.Booking, error) {
	return s.transition(bookingID, models.BookingStatusInProgress, func(b *models.Booking, now time.Time) {
		b.StartedAt = &now
		if len(beforePhotos) > 0 {
			b.BeforePhotos = beforePhotos
		}
	})
}

// transition applies the shared guard (cancelled/completed block the event)
// and fires exactly one status-change notification.
func (s *BookingService) transition(bookingID, newStatus string, apply func(*models.Booking, time.Time)) (*models.Booking, error) {
	booking, err := s.store.GetBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.IsTerminal() {
		return nil, fmt.Errorf("%w: booking is %s", ErrInvalidStatus, booking.Status)
	}

	oldStatus := booking.Status
	now := time.Now()
	booking.Status = newStatus
	apply(booking, now)

	if err := s.store.UpdateBooking(booking); err != nil {
		return nil, err
	}

	s.events.Publish(BookingStatusChanged{Booking: booking, OldStatus: oldStatus, NewStatus: newStatus})
	return booking, nil
}

// Complete finishes the booking. Blocked only by cancelled. A cash-on-
// delivery booking still pending payment flips to paid here.
func (s *BookingService) Complete(bookingID string, afterPhotos []string) (*models.Booking, error) {
	booking, err := s.store.GetBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == models.BookingStatusCancelled {
		return nil, fmt.Errorf("%w: booking is cancelled", ErrInvalidStatus)
	}

	oldStatus := booking.Status
	now := time.Now()
	booking.Status = models.BookingStatusCompleted
	booking.CompletedAt = &now
	if len(afterPhotos) > 0 {
		booking.AfterPhotos = afterPhotos
	}
	if booking.PaymentMethod == models.PaymentMethodCOD && booking.PaymentStatus == models.PaymentStatusPending {
		booking.PaymentStatus = models.PaymentStatusPaid
	}

	if err := s.store.UpdateBooking(booking); err != nil {
		return nil, err
	}

	if booking.EmployeeID != "" {
		s.matching.RefreshWorkerLoad(booking.EmployeeID)
	}

	if oldStatus != models.BookingStatusCompleted {
		s.events.Publish(BookingStatusChanged{Booking: booking, OldStatus: oldStatus, NewStatus: booking.Status})
	}
	return booking, nil
}

// Cancel is terminal and idempotent-guarded: re-cancel and cancelling a
// completed booking are rejected, not silently repeated. Releases the slot
// and refunds any wallet contribution.
func (s *BookingService) Cancel(bookingID, reason, cancelledBy string) (*models.Booking, error) {
	booking, err := s.store.GetBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == models.BookingStatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	if booking.Status == models.BookingStatusCompleted {
		return nil, ErrCannotCancelCompleted
	}

	oldStatus := booking.Status
	now := time.Now()
	booking.Status = models.BookingStatusCancelled
	booking.CancelledAt = &now
	booking.CancellationReason = reason
	booking.CancelledBy = cancelledBy

	if err := s.store.UpdateBooking(booking); err != nil {
		return nil, err
	}

	if err := s.slots.Release(booking.ServiceID, booking.BookingDate, booking.BookingTime); err != nil {
		log.Printf("Failed to release slot for cancelled booking %s: %v", booking.BookingID, err)
	}

	if booking.WalletAmount > 0 {
		err := s.wallet.Refund(booking.CustomerID, booking.WalletAmount,
			"Refund for cancelled booking "+booking.BookingID, booking.BookingID)
		if err != nil {
			log.Printf("Failed to refund wallet for booking %s: %v", booking.BookingID, err)
		}
	}

	if booking.EmployeeID != "" {
		s.matching.RefreshWorkerLoad(booking.EmployeeID)
	}

	s.events.Publish(BookingStatusChanged{Booking: booking, OldStatus: oldStatus, NewStatus: booking.Status})
	return booking, nil
}

// Reschedule moves the booking to a new slot, all-or-nothing: the new
// window is reserved before the old is released, so a full target slot
// leaves the booking untouched. An assigned booking drops back to pending,
// forcing re-assignment.
func (s *BookingService) Reschedule(bookingID, newDate, newTimeSlot string) (*models.Booking, error) {
	booking, err := s.store.GetBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.IsTerminal() {
		return nil, fmt.Errorf("%w: booking is %s", ErrInvalidStatus, booking.Status)
	}

	err = s.slots.Move(booking.ServiceID, booking.BookingDate, booking.BookingTime, newDate, newTimeSlot)
	if err != nil {
		return nil, err
	}

	oldStatus := booking.Status
	booking.BookingDate = newDate
	booking.BookingTime = newTimeSlot

	displaced := ""
	if booking.Status == models.BookingStatusAssigned {
		displaced = booking.EmployeeID
		booking.EmployeeID = ""
		booking.Status = models.BookingStatusPending
		booking.AssignedAt = nil
	}

	if err := s.store.UpdateBooking(booking); err != nil {
		return nil, err
	}

	if displaced != "" {
		s.matching.RefreshWorkerLoad(displaced)
		s.events.Publish(BookingStatusChanged{Booking: booking, OldStatus: oldStatus, NewStatus: booking.Status})
	}

	return booking, nil
}

// SoftDelete hides a booking from reads. Never a hard delete on first pass.
func (s *BookingService) SoftDelete(bookingID string) error {
	booking, err := s.store.GetBooking(bookingID)
	if err != nil {
		return err
	}
	if booking.IsDeleted {
		return ErrAlreadyDeleted
	}
	booking.IsDeleted = true
	return s.store.UpdateBooking(booking)
}
