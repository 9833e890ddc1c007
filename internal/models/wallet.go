package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Wallet transaction types. Credits and refunds add to the balance, debits
// subtract. The signed sum over a user's transactions equals their
// wallet_balance.
const (
	TransactionCredit = "credit"
	TransactionDebit  = "debit"
	TransactionRefund = "refund"
)

// WalletTransaction is an append-only ledger row. Amount is always positive;
// the type carries the sign.
type WalletTransaction struct {
	gorm.Model

	TransactionID   string  `json:"transaction_id" gorm:"uniqueIndex"`
	UserID          string  `json:"user_id" gorm:"index"`
	Amount          float64 `json:"amount"`
	TransactionType string  `json:"transaction_type"`
	Description     string  `json:"description"`
	BookingID       string  `json:"booking_id" gorm:"index"`
}

// BeforeCreate generates a TransactionID if not set
func (t *WalletTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.TransactionID == "" {
		t.TransactionID = fmt.Sprintf("TXN%d%03d", time.Now().Unix(), time.Now().Nanosecond()%1000)
	}
	return nil
}

// Signed returns the amount with the sign implied by the transaction type.
// Credits and refunds add to the balance, debits subtract.
func (t *WalletTransaction) Signed() float64 {
	if t.TransactionType == TransactionDebit {
		return -t.Amount
	}
	return t.Amount
}
