package storage

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/UrbanMistri/urbanmistri-backend/internal/models"
)

// MemoryStore holds all data in memory - used for tests and local runs with
// USE_MEMORY_STORE=true. Each entity group has its own RW mutex so a
// read-modify-write on one document is serialized. Profile and booking reads
// hand out snapshots, and writes store snapshots: a row held by one goroutine
// (the event dispatcher in particular) is never mutated by another.
type MemoryStore struct {
	profiles   map[string]*models.Profile // keyed by ProfileID
	challenges map[string]*models.OTPChallenge
	bookings   map[string]*models.Booking
	slots      map[string]*models.Slot // keyed by service|date|window
	txns       []*models.WalletTransaction
	promos     map[string]*models.PromoCode

	profileMu sync.RWMutex
	otpMu     sync.RWMutex
	bookingMu sync.RWMutex
	slotMu    sync.RWMutex
	walletMu  sync.RWMutex
	promoMu   sync.RWMutex

	// Counters for ID generation
	profileCounter int
	bookingCounter int
	txnCounter     int
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles:   make(map[string]*models.Profile),
		challenges: make(map[string]*models.OTPChallenge),
		bookings:   make(map[string]*models.Booking),
		slots:      make(map[string]*models.Slot),
		promos:     make(map[string]*models.PromoCode),
	}
}

func slotKey(serviceID, date, timeSlot string) string {
	return serviceID + "|" + date + "|" + timeSlot
}

func cloneProfile(p *models.Profile) *models.Profile {
	c := *p
	return &c
}

func cloneBooking(b *models.Booking) *models.Booking {
	c := *b
	return &c
}

// Profile operations

func (m *MemoryStore) CreateProfile(profile *models.Profile) (*models.Profile, error) {
	m.profileMu.Lock()
	defer m.profileMu.Unlock()

	for _, p := range m.profiles {
		if p.Phone == profile.Phone {
			return nil, fmt.Errorf("phone already registered")
		}
	}

	m.profileCounter++
	if profile.ProfileID == "" {
		prefix := "CUS"
		if profile.Role == models.RoleWorker {
			prefix = "WKR"
		}
		profile.ProfileID = fmt.Sprintf("%s%05d", prefix, m.profileCounter)
	}
	if profile.Role == "" {
		profile.Role = models.RoleCustomer
	}
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = time.Now()

	m.profiles[profile.ProfileID] = cloneProfile(profile)
	return profile, nil
}

func (m *MemoryStore) GetProfileByID(profileID string) (*models.Profile, error) {
	m.profileMu.RLock()
	defer m.profileMu.RUnlock()

	profile, exists := m.profiles[profileID]
	if !exists {
		return nil, fmt.Errorf("profile %s: %w", profileID, ErrNotFound)
	}
	return cloneProfile(profile), nil
}

func (m *MemoryStore) GetProfileByPhone(phone string) (*models.Profile, error) {
	m.profileMu.RLock()
	defer m.profileMu.RUnlock()

	for _, p := range m.profiles {
		if p.Phone == phone {
			return cloneProfile(p), nil
		}
	}
	return nil, fmt.Errorf("profile with phone %s: %w", phone, ErrNotFound)
}

func (m *MemoryStore) UpdateProfile(profile *models.Profile) error {
	m.profileMu.Lock()
	defer m.profileMu.Unlock()

	if _, exists := m.profiles[profile.ProfileID]; !exists {
		return fmt.Errorf("profile %s: %w", profile.ProfileID, ErrNotFound)
	}
	profile.UpdatedAt = time.Now()
	m.profiles[profile.ProfileID] = cloneProfile(profile)
	return nil
}

func (m *MemoryStore) GetWorkers() ([]*models.Profile, error) {
	m.profileMu.RLock()
	defer m.profileMu.RUnlock()

	// Stable order by ProfileID so matching tie-breaks are deterministic
	var ids []string
	for id, p := range m.profiles {
		if p.Role == models.RoleWorker {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	workers := make([]*models.Profile, 0, len(ids))
	for _, id := range ids {
		workers = append(workers, cloneProfile(m.profiles[id]))
	}
	return workers, nil
}

// OTP challenge operations

func (m *MemoryStore) UpsertOTPChallenge(challenge *models.OTPChallenge) error {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	challenge.CreatedAt = time.Now()
	challenge.UpdatedAt = time.Now()
	m.challenges[challenge.Phone] = challenge
	return nil
}

func (m *MemoryStore) GetOTPChallenge(phone string) (*models.OTPChallenge, error) {
	m.otpMu.RLock()
	defer m.otpMu.RUnlock()

	challenge, exists := m.challenges[phone]
	if !exists {
		return nil, fmt.Errorf("otp challenge for %s: %w", phone, ErrNotFound)
	}
	return challenge, nil
}

func (m *MemoryStore) UpdateOTPChallenge(challenge *models.OTPChallenge) error {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	if _, exists := m.challenges[challenge.Phone]; !exists {
		return fmt.Errorf("otp challenge for %s: %w", challenge.Phone, ErrNotFound)
	}
	challenge.UpdatedAt = time.Now()
	m.challenges[challenge.Phone] = challenge
	return nil
}

func (m *MemoryStore) DeleteOTPChallenge(phone string) error {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	delete(m.challenges, phone)
	return nil
}

func (m *MemoryStore) DeleteExpiredOTPChallenges() (int64, error) {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	var removed int64
	now := time.Now()
	for phone, ch := range m.challenges {
		if ch.Expired(now) {
			delete(m.challenges, phone)
			removed++
		}
	}
	return removed, nil
}

// Booking operations

func (m *MemoryStore) CreateBooking(booking *models.Booking) (*models.Booking, error) {
	m.bookingMu.Lock()
	defer m.bookingMu.Unlock()

	m.bookingCounter++
	if booking.BookingID == "" {
		booking.BookingID = fmt.Sprintf("BK%05d", m.bookingCounter)
	}
	if booking.Status == "" {
		booking.Status = models.BookingStatusPending
	}
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()

	m.bookings[booking.BookingID] = cloneBooking(booking)
	return booking, nil
}

func (m *MemoryStore) GetBooking(bookingID string) (*models.Booking, error) {
	m.bookingMu.RLock()
	defer m.bookingMu.RUnlock()

	booking, exists := m.bookings[bookingID]
	if !exists || booking.IsDeleted {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}
	return cloneBooking(booking), nil
}

func (m *MemoryStore) UpdateBooking(booking *models.Booking) error {
	m.bookingMu.Lock()
	defer m.bookingMu.Unlock()

	if _, exists := m.bookings[booking.BookingID]; !exists {
		return fmt.Errorf("booking %s: %w", booking.BookingID, ErrNotFound)
	}
	booking.UpdatedAt = time.Now()
	m.bookings[booking.BookingID] = cloneBooking(booking)
	return nil
}

func (m *MemoryStore) GetBookingsByCustomer(customerID string) ([]*models.Booking, error) {
	m.bookingMu.RLock()
	defer m.bookingMu.RUnlock()

	var bookings []*models.Booking
	for _, b := range m.bookings {
		if b.CustomerID == customerID && !b.IsDeleted {
			bookings = append(bookings, cloneBooking(b))
		}
	}
	return bookings, nil
}

func (m *MemoryStore) GetBookingsByEmployee(employeeID string) ([]*models.Booking, error) {
	m.bookingMu.RLock()
	defer m.bookingMu.RUnlock()

	var bookings []*models.Booking
	for _, b := range m.bookings {
		if b.EmployeeID == employeeID && !b.IsDeleted {
			bookings = append(bookings, cloneBooking(b))
		}
	}
	return bookings, nil
}

func (m *MemoryStore) CountActiveBookingsByEmployee(employeeID string) (int, error) {
	m.bookingMu.RLock()
	defer m.bookingMu.RUnlock()

	count := 0
	for _, b := range m.bookings {
		if b.EmployeeID != employeeID || b.IsDeleted {
			continue
		}
		for _, s := range models.ActiveBookingStatuses {
			if b.Status == s {
				count++
				break
			}
		}
	}
	return count, nil
}

// Slot operations

func (m *MemoryStore) CreateSlot(slot *models.Slot) (*models.Slot, error) {
	m.slotMu.Lock()
	defer m.slotMu.Unlock()

	key := slotKey(slot.ServiceID, slot.Date, slot.TimeSlot)
	if _, exists := m.slots[key]; exists {
		return nil, fmt.Errorf("slot already exists")
	}
	slot.CreatedAt = time.Now()
	slot.UpdatedAt = time.Now()
	m.slots[key] = slot
	return slot, nil
}

func (m *MemoryStore) GetSlot(serviceID, date, timeSlot string) (*models.Slot, error) {
	m.slotMu.RLock()
	defer m.slotMu.RUnlock()

	slot, exists := m.slots[slotKey(serviceID, date, timeSlot)]
	if !exists {
		return nil, fmt.Errorf("slot: %w", ErrNotFound)
	}
	return slot, nil
}

func (m *MemoryStore) UpdateSlot(slot *models.Slot) error {
	m.slotMu.Lock()
	defer m.slotMu.Unlock()

	key := slotKey(slot.ServiceID, slot.Date, slot.TimeSlot)
	if _, exists := m.slots[key]; !exists {
		return fmt.Errorf("slot: %w", ErrNotFound)
	}
	slot.UpdatedAt = time.Now()
	m.slots[key] = slot
	return nil
}

// Wallet ledger operations

func (m *MemoryStore) CreateWalletTransaction(txn *models.WalletTransaction) (*models.WalletTransaction, error) {
	m.walletMu.Lock()
	defer m.walletMu.Unlock()

	m.txnCounter++
	if txn.TransactionID == "" {
		txn.TransactionID = fmt.Sprintf("TXN%05d", m.txnCounter)
	}
	txn.CreatedAt = time.Now()
	m.txns = append(m.txns, txn)
	return txn, nil
}

func (m *MemoryStore) GetWalletTransactionsByUser(userID string) ([]*models.WalletTransaction, error) {
	m.walletMu.RLock()
	defer m.walletMu.RUnlock()

	var txns []*models.WalletTransaction
	for _, t := range m.txns {
		if t.UserID == userID {
			txns = append(txns, t)
		}
	}
	return txns, nil
}

// Promo code operations

func (m *MemoryStore) CreatePromoCode(promo *models.PromoCode) (*models.PromoCode, error) {
	m.promoMu.Lock()
	defer m.promoMu.Unlock()

	code := strings.ToUpper(strings.TrimSpace(promo.Code))
	promo.Code = code
	if _, exists := m.promos[code]; exists {
		return nil, fmt.Errorf("promo code already exists")
	}
	promo.CreatedAt = time.Now()
	promo.UpdatedAt = time.Now()
	m.promos[code] = promo
	return promo, nil
}

func (m *MemoryStore) GetPromoCode(code string) (*models.PromoCode, error) {
	m.promoMu.RLock()
	defer m.promoMu.RUnlock()

	promo, exists := m.promos[strings.ToUpper(strings.TrimSpace(code))]
	if !exists {
		return nil, fmt.Errorf("promo %s: %w", code, ErrNotFound)
	}
	return promo, nil
}

func (m *MemoryStore) UpdatePromoCode(promo *models.PromoCode) error {
	m.promoMu.Lock()
	defer m.promoMu.Unlock()

	if _, exists := m.promos[promo.Code]; !exists {
		return fmt.Errorf("promo %s: %w", promo.Code, ErrNotFound)
	}
	promo.UpdatedAt = time.Now()
	m.promos[promo.Code] = promo
	return nil
}
