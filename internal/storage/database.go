package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/UrbanMistri/urbanmistri-backend/internal/models"
)

// DatabaseStore implements Store on top of GORM/PostgreSQL
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func wrapNotFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

// Profile operations

func (d *DatabaseStore) CreateProfile(profile *models.Profile) (*models.Profile, error) {
	if err := d.db.Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func (d *DatabaseStore) GetProfileByID(profileID string) (*models.Profile, error) {
	var profile models.Profile
	err := d.db.Where("profile_id = ?", profileID).First(&profile).Error
	if err != nil {
		return nil, wrapNotFound(err, "profile "+profileID)
	}
	return &profile, nil
}

func (d *DatabaseStore) GetProfileByPhone(phone string) (*models.Profile, error) {
	var profile models.Profile
	err := d.db.Where("phone = ?", phone).First(&profile).Error
	if err != nil {
		return nil, wrapNotFound(err, "profile with phone "+phone)
	}
	return &profile, nil
}

func (d *DatabaseStore) UpdateProfile(profile *models.Profile) error {
	return d.db.Save(profile).Error
}

func (d *DatabaseStore) GetWorkers() ([]*models.Profile, error) {
	var workers []*models.Profile
	err := d.db.Where("role = ?", models.RoleWorker).Order("profile_id").Find(&workers).Error
	return workers, err
}

// OTP challenge operations

func (d *DatabaseStore) UpsertOTPChallenge(challenge *models.OTPChallenge) error {
	// Single active challenge per phone: replace any prior row
	if err := d.db.Where("phone = ?", challenge.Phone).Delete(&models.OTPChallenge{}).Error; err != nil {
		return err
	}
	return d.db.Create(challenge).Error
}

func (d *DatabaseStore) GetOTPChallenge(phone string) (*models.OTPChallenge, error) {
	var challenge models.OTPChallenge
	err := d.db.Where("phone = ?", phone).Order("created_at DESC").First(&challenge).Error
	if err != nil {
		return nil, wrapNotFound(err, "otp challenge for "+phone)
	}
	return &challenge, nil
}

func (d *DatabaseStore) UpdateOTPChallenge(challenge *models.OTPChallenge) error {
	return d.db.Save(challenge).Error
}

func (d *DatabaseStore) DeleteOTPChallenge(phone string) error {
	return d.db.Where("phone = ?", phone).Delete(&models.OTPChallenge{}).Error
}

func (d *DatabaseStore) DeleteExpiredOTPChallenges() (int64, error) {
	res := d.db.Where("expires_at < ?", time.Now()).Delete(&models.OTPChallenge{})
	return res.RowsAffected, res.Error
}

// Booking operations

func (d *DatabaseStore) CreateBooking(booking *models.Booking) (*models.Booking, error) {
	if err := d.db.Create(booking).Error; err != nil {
		return nil, err
	}
	return booking, nil
}

func (d *DatabaseStore) GetBooking(bookingID string) (*models.Booking, error) {
	var booking models.Booking
	err := d.db.Where("booking_id = ? AND is_deleted = ?", bookingID, false).First(&booking).Error
	if err != nil {
		return nil, wrapNotFound(err, "booking "+bookingID)
	}
	return &booking, nil
}

func (d *DatabaseStore) UpdateBooking(booking *models.Booking) error {
	return d.db.Save(booking).Error
}

func (d *DatabaseStore) GetBookingsByCustomer(customerID string) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := d.db.Where("customer_id = ? AND is_deleted = ?", customerID, false).
		Order("created_at DESC").Find(&bookings).Error
	return bookings, err
}

func (d *DatabaseStore) GetBookingsByEmployee(employeeID string) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := d.db.Where("employee_id = ? AND is_deleted = ?", employeeID, false).
		Order("created_at DESC").Find(&bookings).Error
	return bookings, err
}

func (d *DatabaseStore) CountActiveBookingsByEmployee(employeeID string) (int, error) {
	var count int64
	err := d.db.Model(&models.Booking{}).
		Where("employee_id = ? AND is_deleted = ? AND status IN ?",
			employeeID, false, models.ActiveBookingStatuses).
		Count(&count).Error
	return int(count), err
}

// Slot operations

func (d *DatabaseStore) CreateSlot(slot *models.Slot) (*models.Slot, error) {
	if err := d.db.Create(slot).Error; err != nil {
		return nil, err
	}
	return slot, nil
}

func (d *DatabaseStore) GetSlot(serviceID, date, timeSlot string) (*models.Slot, error) {
	var slot models.Slot
	err := d.db.Where("service_id = ? AND date = ? AND time_slot = ?", serviceID, date, timeSlot).
		First(&slot).Error
	if err != nil {
		return nil, wrapNotFound(err, "slot")
	}
	return &slot, nil
}

func (d *DatabaseStore) UpdateSlot(slot *models.Slot) error {
	return d.db.Save(slot).Error
}

// Wallet ledger operations

func (d *DatabaseStore) CreateWalletTransaction(txn *models.WalletTransaction) (*models.WalletTransaction, error) {
	if err := d.db.Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

func (d *DatabaseStore) GetWalletTransactionsByUser(userID string) ([]*models.WalletTransaction, error) {
	var txns []*models.WalletTransaction
	err := d.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&txns).Error
	return txns, err
}

// Promo code operations

func (d *DatabaseStore) CreatePromoCode(promo *models.PromoCode) (*models.PromoCode, error) {
	if err := d.db.Create(promo).Error; err != nil {
		return nil, err
	}
	return promo, nil
}

func (d *DatabaseStore) GetPromoCode(code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	err := d.db.Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&promo).Error
	if err != nil {
		return nil, wrapNotFound(err, "promo "+code)
	}
	return &promo, nil
}

func (d *DatabaseStore) UpdatePromoCode(promo *models.PromoCode) error {
	return d.db.Save(promo).Error
}
