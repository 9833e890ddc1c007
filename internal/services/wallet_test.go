package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UrbanMistri/urbanmistri-backend/internal/models"
)

func TestDebitRejectsOverdraft(t *testing.T) {
	f := newFixture()
	customer := seedCustomer(t, f.store, 100)

	err := f.wallet.Debit(customer.ProfileID, 150, "test", "")
	assert.ErrorIs(t, err, ErrInsufficientWalletBalance)

	// No balance change and no ledger row on a rejected debit
	profile, err := f.store.GetProfileByID(customer.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, profile.WalletBalance)

	txns, err := f.store.GetWalletTransactionsByUser(customer.ProfileID)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestNonPositiveAmountsRejected(t *testing.T) {
	f := newFixture()
	customer := seedCustomer(t, f.store, 100)

	assert.ErrorIs(t, f.wallet.Debit(customer.ProfileID, 0, "test", ""), ErrInvalidTransactionAmount)
	assert.ErrorIs(t, f.wallet.Debit(customer.ProfileID, -5, "test", ""), ErrInvalidTransactionAmount)
	assert.ErrorIs(t, f.wallet.Credit(customer.ProfileID, 0, "test", ""), ErrInvalidTransactionAmount)
	assert.ErrorIs(t, f.wallet.Refund(customer.ProfileID, -1, "test", ""), ErrInvalidTransactionAmount)
}

func TestLedgerSumMatchesBalance(t *testing.T) {
	f := newFixture()
	customer := seedCustomer(t, f.store, 0)

	require.NoError(t, f.wallet.Credit(customer.ProfileID, 500, "topup", ""))
	require.NoError(t, f.wallet.Debit(customer.ProfileID, 300, "booking payment", "BK00001"))
	require.NoError(t, f.wallet.Refund(customer.ProfileID, 100, "cancelled booking", "BK00001"))

	profile, err := f.store.GetProfileByID(customer.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, 300.0, profile.WalletBalance)

	txns, err := f.store.GetWalletTransactionsByUser(customer.ProfileID)
	require.NoError(t, err)
	require.Len(t, txns, 3)

	var sum float64
	for _, txn := range txns {
		sum += txn.Signed()
	}
	assert.Equal(t, profile.WalletBalance, sum)
}

func TestRefundRecordsRefundRow(t *testing.T) {
	f := newFixture()
	customer := seedCustomer(t, f.store, 50)

	require.NoError(t, f.wallet.Refund(customer.ProfileID, 25, "refund", "BK00002"))

	txns, err := f.store.GetWalletTransactionsByUser(customer.ProfileID)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, models.TransactionRefund, txns[0].TransactionType)
	assert.Equal(t, "BK00002", txns[0].BookingID)
	assert.Equal(t, 25.0, txns[0].Signed())

	profile, err := f.store.GetProfileByID(customer.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, 75.0, profile.WalletBalance)
}
