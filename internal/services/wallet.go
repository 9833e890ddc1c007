package services

import (
	"errors"

	"github.com/UrbanMistri/urbanmistri-backend/internal/models"
	"github.com/UrbanMistri/urbanmistri-backend/internal/storage"
)

// Wallet precondition errors
var (
	ErrInsufficientWalletBalance = errors.New("insufficient wallet balance")
	ErrInvalidTransactionAmount  = errors.New("transaction amount must be positive")
)

// WalletService maintains the per-user balance invariant via append-only
// transactions. The balance check happens before the ledger row is written,
// so the balance can never go negative through this path. Balance update and
// ledger append are two writes without a cross-document transaction - an
// accepted consistency gap of the target store.
type WalletService struct {
	store storage.Store
}

// NewWalletService creates the wallet ledger
func NewWalletService(store storage.Store) *WalletService {
	return &WalletService{store: store}
}

// Debit removes amount from the user's balance, rejecting overdrafts.
func (s *WalletService) Debit(userID string, amount float64, description, bookingID string) error {
	if amount <= 0 {
		return ErrInvalidTransactionAmount
	}

	profile, err := s.store.GetProfileByID(userID)
	if err != nil {
		return err
	}
	if amount > profile.WalletBalance {
		return ErrInsufficientWalletBalance
	}

	profile.WalletBalance -= amount
	if err := s.store.UpdateProfile(profile); err != nil {
		return err
	}

	_, err = s.store.CreateWalletTransaction(&models.WalletTransaction{
		UserID:          userID,
		Amount:          amount,
		TransactionType: models.TransactionDebit,
		Description:     description,
		BookingID:       bookingID,
	})
	return err
}

// Credit adds amount to the user's balance.
func (s *WalletService) Credit(userID string, amount float64, description, bookingID string) error {
	return s.add(userID, amount, models.TransactionCredit, description, bookingID)
}

// Refund returns amount to the user's balance, recorded as a refund row.
func (s *WalletService) Refund(userID string, amount float64, description, bookingID string) error {
	return s.add(userID, amount, models.TransactionRefund, description, bookingID)
}

func (s *WalletService) add(userID string, amount float64, txnType, description, bookingID string) error {
	if amount <= 0 {
		return ErrInvalidTransactionAmount
	}

	profile, err := s.store.GetProfileByID(userID)
	if err != nil {
		return err
	}

	profile.WalletBalance += amount
	if err := s.store.UpdateProfile(profile); err != nil {
		return err
	}

	_, err = s.store.CreateWalletTransaction(&models.WalletTransaction{
		UserID:          userID,
		Amount:          amount,
		TransactionType: txnType,
		Description:     description,
		BookingID:       bookingID,
	})
	return err
}
