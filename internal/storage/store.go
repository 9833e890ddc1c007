package storage

import (
	"errors"

	"github.com/UrbanMistri/urbanmistri-backend/internal/models"
)

// ErrNotFound is returned by all Get* methods when no record matches.
var ErrNotFound = errors.New("record not found")

var storeInstance Store

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Store defines the interface for storage operations. Implementations must
// provide atomic single-document read-modify-write; multi-document
// transactions are deliberately NOT part of the contract.
type Store interface {
	// Profile operations
	CreateProfile(profile *models.Profile) (*models.Profile, error)
	GetProfileByID(profileID string) (*models.Profile, error)
	GetProfileByPhone(phone string) (*models.Profile, error)
	UpdateProfile(profile *models.Profile) error
	GetWorkers() ([]*models.Profile, error)

	// OTP challenge operations - one active challenge per phone
	UpsertOTPChallenge(challenge *models.OTPChallenge) error
	GetOTPChallenge(phone string) (*models.OTPChallenge, error)
	UpdateOTPChallenge(challenge *models.OTPChallenge) error
	DeleteOTPChallenge(phone string) error
	DeleteExpiredOTPChallenges() (int64, error)

	// Booking operations
	CreateBooking(booking *models.Booking) (*models.Booking, error)
	GetBooking(bookingID string) (*models.Booking, error)
	UpdateBooking(booking *models.Booking) error
	GetBookingsByCustomer(customerID string) ([]*models.Booking, error)
	GetBookingsByEmployee(employeeID string) ([]*models.Booking, error)
	CountActiveBookingsByEmployee(employeeID string) (int, error)

	// Slot operations
	CreateSlot(slot *models.Slot) (*models.Slot, error)
	GetSlot(serviceID, date, timeSlot string) (*models.Slot, error)
	UpdateSlot(slot *models.Slot) error

	// Wallet ledger operations (append-only)
	CreateWalletTransaction(txn *models.WalletTransaction) (*models.WalletTransaction, error)
	GetWalletTransactionsByUser(userID string) ([]*models.WalletTransaction, error)

	// Promo code operations
	CreatePromoCode(promo *models.PromoCode) (*models.PromoCode, error)
	GetPromoCode(code string) (*models.PromoCode, error)
	UpdatePromoCode(promo *models.PromoCode) error
}
