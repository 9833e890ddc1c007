package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UrbanMistri/urbanmistri-backend/internal/models"
)

func TestBookingReadsAreSnapshots(t *testing.T) {
	m := NewMemoryStore()

	created, err := m.CreateBooking(&models.Booking{
		CustomerID: "CUS00001",
		ServiceID:  "svc_plumbing",
		Status:     models.BookingStatusPending,
	})
	require.NoError(t, err)

	// Mutating one read must not bleed into the store or other readers
	first, err := m.GetBooking(created.BookingID)
	require.NoError(t, err)
	first.Status = models.BookingStatusCancelled

	second, err := m.GetBooking(created.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, second.Status)
}

func TestUpdateBookingStoresSnapshot(t *testing.T) {
	m := NewMemoryStore()

	booking, err := m.CreateBooking(&models.Booking{
		CustomerID: "CUS00001",
		ServiceID:  "svc_plumbing",
		Status:     models.BookingStatusPending,
	})
	require.NoError(t, err)

	booking.Status = models.BookingStatusAccepted
	require.NoError(t, m.UpdateBooking(booking))

	// Caller keeps mutating its own copy after the write
	booking.Status = models.BookingStatusCancelled

	got, err := m.GetBooking(booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusAccepted, got.Status)
}

func TestProfileReadsAreSnapshots(t *testing.T) {
	m := NewMemoryStore()

	created, err := m.CreateProfile(&models.Profile{
		Role:          models.RoleCustomer,
		Phone:         "+919000000010",
		WalletBalance: 100,
	})
	require.NoError(t, err)

	first, err := m.GetProfileByID(created.ProfileID)
	require.NoError(t, err)
	first.WalletBalance = 0

	second, err := m.GetProfileByID(created.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, second.WalletBalance)

	byPhone, err := m.GetProfileByPhone(created.Phone)
	require.NoError(t, err)
	byPhone.WalletBalance = -1

	third, err := m.GetProfileByID(created.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, third.WalletBalance)
}

func TestGetWorkersReturnsSnapshots(t *testing.T) {
	m := NewMemoryStore()

	created, err := m.CreateProfile(&models.Profile{
		Role:  models.RoleWorker,
		Phone: "+919000000011",
	})
	require.NoError(t, err)

	workers, err := m.GetWorkers()
	require.NoError(t, err)
	require.Len(t, workers, 1)
	workers[0].CurrentJobs = 99

	got, err := m.GetProfileByID(created.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentJobs)
}
