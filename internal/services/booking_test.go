package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UrbanMistri/urbanmistri-backend/internal/models"
	"github.com/UrbanMistri/urbanmistri-backend/internal/storage"
)

func baseInput(customerID string) CreateBookingInput {
	return CreateBookingInput{
		CustomerID:      customerID,
		ServiceID:       testService,
		BookingDate:     testDate,
		BookingTime:     models.TimeSlotMorning,
		CustomerAddress: "12 MG Road, Bengaluru",
		BasePrice:       1000,
	}
}

func TestCreateBookingWithPromoAndWallet(t *testing.T) {
	f := newFixture()
	customer := seedCustomer(t, f.store, 200)

	_, err := f.store.CreatePromoCode(&models.PromoCode{
		Code:          "SAVE10",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 10,
		IsActive:      true,
	})
	require.NoError(t, err)

	input := baseInput(customer.ProfileID)
	input.AddonPrice = 200
	input.WalletAmount = 200
	input.PromoCode = "SAVE10"
	// Client-side discount is ignored in favor of the resolved promo
	input.DiscountAmount = 999

	booking := f.createBooking(t, input)

	assert.Equal(t, 120.0, booking.DiscountAmount)
	assert.Equal(t, 880.0, booking.TotalPrice)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.Equal(t, models.PaymentStatusPending, booking.PaymentStatus)

	// Wallet debited and recorded
	profile, err := f.store.GetProfileByID(customer.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, profile.WalletBalance)
	txns, err := f.store.GetWalletTransactionsByUser(customer.ProfileID)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, models.TransactionDebit, txns[0].TransactionType)
	assert.Equal(t, booking.BookingID, txns[0].BookingID)

	// Exactly one usage increment per booking
	promo, err := f.store.GetPromoCode("SAVE10")
	require.NoError(t, err)
	assert.Equal(t, 1, promo.UsageCount)

	// Slot tracked and creation event fired
	slot, err := f.store.GetSlot(testService, testDate, models.TimeSlotMorning)
	require.NoError(t, err)
	assert.Equal(t, 1, slot.BookedCount)
	assert.Equal(t, 1, f.events.count())
}

func TestCreateBookingRequiresVerifiedPhone(t *testing.T) {
	f := newFixture()

	unverified, err := f.store.CreateProfile(&models.Profile{
		Role:  models.RoleCustomer,
		Phone: "+919999900002",
	})
	require.NoError(t, err)

	_, err = f.bookings.Create(baseInput(unverified.ProfileID))
	assert.ErrorIs(t, err, ErrPhoneNotVerified)
}

func TestCreateBookingInsufficientWallet(t *testing.T) {
	f := newFixture()
	customer := seedCustomer(t, f.store, 50)

	input := baseInput(customer.ProfileID)
	input.WalletAmount = 100

	_, err := f.bookings.Create(input)
	assert.ErrorIs(t, err, ErrInsufficientWalletBalance)

	// Rejected before any reservation
	_, err = f.store.GetSlot(testService, testDate, models.TimeSlotMorning)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCreateBookingWalletAboveSubtotal(t *testing.T) {
	f := newFixture()
	customer := seedCustomer(t, f.store, 5000)

	input := baseInput(customer.ProfileID)
	input.WalletAmount = 1500

	_, err := f.bookings.Create(input)
	assert.ErrorIs(t, err, ErrInvalidWalletAmount)
}

func TestCreateBookingSlotFull(t *testing.T) {
	f := newFixture()
	customer := seedCustomer(t, f.store, 0)

	_, err := f.store.CreateSlot(&models.Slot{
		ServiceID:     testService,
		Date:          testDate,
		TimeSlot:      models.TimeSlotMorning,
		TotalCapacity: 1,
		BookedCount:   1,
	})
	require.NoError(t, err)

	_, err = f.bookings.Create(baseInput(customer.ProfileID))
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestCreateBookingFullyWalletPaid(t *testing.T) {
	f := newFixture()
	customer := seedCustomer(t, f.store, 500)

	input := baseInput(customer.ProfileID)
	input.BasePrice = 500
	input.WalletAmount = 500

	booking := f.createBooking(t, input)

	assert.Equal(t, 0.0, booking.TotalPrice)
	assert.Equal(t, models.PaymentMethodWallet, booking.PaymentMethod)
	assert.Equal(t, models.PaymentStatusPaid, booking.PaymentStatus)
}

func TestLifecycleHappyPath(t *testing.T) {
	f := newFixture()
	customer := seedCustomer(t, f.store, 0)
	worker := seedWorker(t, f.store, workerOpts{phone: "+919800000101", location: "indiranagar"})

	input := baseInput(customer.ProfileID)
	input.PaymentMethod = models.PaymentMethodCOD
	booking := f.createBooking(t, input)

	_, err := f.matching.ManualAssign(booking.BookingID, worker.ProfileID)
	require.NoError(t, err)

	b, err := f.bookings.Accept(booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusAccepted, b.Status)
	assert.NotNil(t, b.AcceptedAt)

	b, err = f.bookings.MarkReached(booking.BookingID)
	require.NoError(t, err)
	assert.NotNil(t, b.ReachedAt)

	b, err = f.bookings.StartWork(booking.BookingID, []string{"before.jpg"})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusInProgress, b.Status)
	assert.Equal(t, models.StringList{"before.jpg"}, b.BeforePhotos)

	b, err = f.bookings.Complete(booking.BookingID, []string{"after.jpg"})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, b.Status)
	assert.NotNil(t, b.CompletedAt)
	assert.Equal(t, models.StringList{"after.jpg"}, b.AfterPhotos)

	// Cash collected on completion
	assert.Equal(t, models.PaymentStatusPaid, b.PaymentStatus)

	// Worker load drops once the job is done
	refreshed, err := f.store.GetProfileByID(worker.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, 0, refreshed.CurrentJobs)
}

func TestOutOfOrderReportingTolerated(t *testing.T) {
	f := newFixture()
	customer := seedCustomer(t, f.store, 0)

	booking := f.createBooking(t, baseInput(customer.ProfileID))

	// Worker never tapped accept; reached still lands
	b, err := f.bookings.MarkReached(booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusReached, b.Status)
}

func TestTransitionsBlockedAfterCancel(t *testing.T) {
	f := newFixture()
	customer := seedCustomer(t, f.store, 0)

	booking := f.createBooking(t, baseInput(customer.ProfileID))
	_, err := f.bookings.Cancel(booking.BookingID, "changed plans", "customer")
	require.NoError(t, err)

	_, err = f.bookings.Accept(booking.BookingID)
	assert.ErrorIs(t, err, ErrInvalidStatus)
	_, err = f.bookings.Complete(booking.BookingID, nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCancelGuards(t *testing.T) {
	f := newFixture()
	customer := seedCustomer(t, f.store, 0)

	booking := f.createBooking(t, baseInput(customer.ProfileID))
	_, err := f.bookings.Cancel(booking.BookingID, "dup", "customer")
	require.NoError(t, err)
	_, err = f.bookings.Cancel(booking.BookingID, "dup", "customer")
	assert.ErrorIs(t, err, ErrAlreadyCancelled)

	input := baseInput(customer.ProfileID)
	input.BookingTime = models.TimeSlotEvening
	done := f.createBooking(t, input)
	_, err = f.bookings.Complete(done.BookingID, nil)
	require.NoError(t, err)
	_, err = f.bookings.Cancel(done.BookingID, "too late", "customer")
	assert.ErrorIs(t, err, ErrCannotCancelCompleted)
}

func TestCancelReleasesSlotAndRefundsWallet(t *testing.T) {
	f := newFixture()
	customer := seedCustomer(t, f.store, 100)

	input := baseInput(customer.ProfileID)
	input.WalletAmount = 100
	booking := f.createBooking(t, input)

	profile, err := f.store.GetProfileByID(customer.ProfileID)
	require.NoError(t, err)
	require.Equal(t, 0.0, profile.WalletBalance)

	cancelled, err := f.bookings.Cancel(booking.BookingID, "rain", "customer")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, "rain", cancelled.CancellationReason)
	assert.Equal(t, "customer", cancelled.CancelledBy)
	assert.NotNil(t, cancelled.CancelledAt)

	// Wallet contribution comes back as a refund row
	profile, err = f.store.GetProfileByID(customer.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, profile.WalletBalance)
	txns, err := f.store.GetWalletTransactionsByUser(customer.ProfileID)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, models.TransactionRefund, txns[1].TransactionType)

	// Capacity returned
	slot, err := f.store.GetSlot(testService, testDate, models.TimeSlotMorning)
	require.NoError(t, err)
	assert.Equal(t, 0, slot.BookedCount)
}

func TestRescheduleResetsAssignment(t *testing.T) {
	f := newFixture()
	customer := seedCustomer(t, f.store, 0)
	worker := seedWorker(t, f.store, workerOpts{phone: "+919800000102", location: "indiranagar"})

	booking := f.createBooking(t, baseInput(customer.ProfileID))
	_, err := f.matching.ManualAssign(booking.BookingID, worker.ProfileID)
	require.NoError(t, err)

	moved, err := f.bookings.Reschedule(booking.BookingID, "2026-09-16", models.TimeSlotEvening)
	require.NoError(t, err)

	assert.Equal(t, "2026-09-16", moved.BookingDate)
	assert.Equal(t, models.TimeSlotEvening, moved.BookingTime)
	assert.Equal(t, models.BookingStatusPending, moved.Status)
	assert.Empty(t, moved.EmployeeID)
	assert.Nil(t, moved.AssignedAt)

	// Displaced worker load recomputed
	refreshed, err := f.store.GetProfileByID(worker.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, 0, refreshed.CurrentJobs)

	// Old slot freed, new one tracked
	old, err := f.store.GetSlot(testService, testDate, models.TimeSlotMorning)
	require.NoError(t, err)
	assert.Equal(t, 0, old.BookedCount)
	target, err := f.store.GetSlot(testService, "2026-09-16", models.TimeSlotEvening)
	require.NoError(t, err)
	assert.Equal(t, 1, target.BookedCount)
}

func TestRescheduleFullTargetLeavesBookingUntouched(t *testing.T) {
	f := newFixture()
	customer := seedCustomer(t, f.store, 0)

	_, err := f.store.CreateSlot(&models.Slot{
		ServiceID:     testService,
		Date:          testDate,
		TimeSlot:      models.TimeSlotEvening,
		TotalCapacity: 1,
		BookedCount:   1,
	})
	require.NoError(t, err)

	booking := f.createBooking(t, baseInput(customer.ProfileID))

	_, err = f.bookings.Reschedule(booking.BookingID, testDate, models.TimeSlotEvening)
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	unchanged, err := f.store.GetBooking(booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, testDate, unchanged.BookingDate)
	assert.Equal(t, models.TimeSlotMorning, unchanged.BookingTime)

	// Original reservation intact
	old, err := f.store.GetSlot(testService, testDate, models.TimeSlotMorning)
	require.NoError(t, err)
	assert.Equal(t, 1, old.BookedCount)
}

func TestRescheduleBlockedWhenTerminal(t *testing.T) {
	f := newFixture()
	customer := seedCustomer(t, f.store, 0)

	booking := f.createBooking(t, baseInput(customer.ProfileID))
	_, err := f.bookings.Complete(booking.BookingID, nil)
	require.NoError(t, err)

	_, err = f.bookings.Reschedule(booking.BookingID, "2026-09-16", models.TimeSlotEvening)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSoftDeleteHidesBooking(t *testing.T) {
	f := newFixture()
	customer := seedCustomer(t, f.store, 0)

	booking := f.createBooking(t, baseInput(customer.ProfileID))
	require.NoError(t, f.bookings.SoftDelete(booking.BookingID))

	_, err := f.store.GetBooking(booking.BookingID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
