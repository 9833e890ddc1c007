package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UrbanMistri/urbanmistri-backend/internal/models"
)

func TestComputeTotal(t *testing.T) {
	f := newFixture()

	total, err := f.pricing.ComputeTotal(1000, 200, 100, 300)
	require.NoError(t, err)
	assert.Equal(t, 800.0, total)

	// Wallet can cover the whole subtotal
	total, err = f.pricing.ComputeTotal(100, 0, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, 0.0, total)

	// Discount larger than the order floors the subtotal at zero
	total, err = f.pricing.ComputeTotal(100, 0, 500, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, total)
}

func TestComputeTotalRejectsWalletAboveSubtotal(t *testing.T) {
	f := newFixture()

	_, err := f.pricing.ComputeTotal(100, 0, 0, 150)
	assert.ErrorIs(t, err, ErrInvalidWalletAmount)
}

func TestResolvePromoUnknownOrInactive(t *testing.T) {
	f := newFixture()

	_, err := f.pricing.ResolvePromo("NOPE", 1000)
	assert.ErrorIs(t, err, ErrPromoInvalid)

	_, err = f.store.CreatePromoCode(&models.PromoCode{
		Code:          "DEAD10",
		DiscountType:  models.DiscountTypeFlat,
		DiscountValue: 10,
		IsActive:      false,
	})
	require.NoError(t, err)

	_, err = f.pricing.ResolvePromo("DEAD10", 1000)
	assert.ErrorIs(t, err, ErrPromoInvalid)
}

func TestResolvePromoValidityWindow(t *testing.T) {
	f := newFixture()

	future := time.Now().Add(24 * time.Hour)
	past := time.Now().Add(-24 * time.Hour)

	_, err := f.store.CreatePromoCode(&models.PromoCode{
		Code:          "SOON",
		DiscountType:  models.DiscountTypeFlat,
		DiscountValue: 50,
		IsActive:      true,
		ValidFrom:     &future,
	})
	require.NoError(t, err)
	_, err = f.pricing.ResolvePromo("SOON", 1000)
	assert.ErrorIs(t, err, ErrPromoNotYetValid)

	_, err = f.store.CreatePromoCode(&models.PromoCode{
		Code:          "GONE",
		DiscountType:  models.DiscountTypeFlat,
		DiscountValue: 50,
		IsActive:      true,
		ValidUntil:    &past,
	})
	require.NoError(t, err)
	_, err = f.pricing.ResolvePromo("GONE", 1000)
	assert.ErrorIs(t, err, ErrPromoExpired)
}

func TestResolvePromoMinOrderAndUsage(t *testing.T) {
	f := newFixture()

	_, err := f.store.CreatePromoCode(&models.PromoCode{
		Code:          "BIG50",
		DiscountType:  models.DiscountTypeFlat,
		DiscountValue: 50,
		MinOrderValue: 500,
		IsActive:      true,
	})
	require.NoError(t, err)

	_, err = f.pricing.ResolvePromo("BIG50", 499)
	assert.ErrorIs(t, err, ErrPromoMinOrder)

	promo, err := f.pricing.ResolvePromo("BIG50", 500)
	require.NoError(t, err)

	// Exhaust the usage budget
	promo.MaxUsage = 1
	promo.UsageCount = 1
	require.NoError(t, f.store.UpdatePromoCode(promo))

	_, err = f.pricing.ResolvePromo("BIG50", 500)
	assert.ErrorIs(t, err, ErrPromoUsageLimit)
}

func TestDiscountForPercentageCap(t *testing.T) {
	f := newFixture()

	promo := &models.PromoCode{
		Code:          "PCT20",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 20,
		MaxDiscount:   150,
	}

	// 20% of 1000 is 200, capped at 150
	assert.Equal(t, 150.0, f.pricing.DiscountFor(promo, 1000))

	// Below the cap the raw percentage applies
	assert.Equal(t, 100.0, f.pricing.DiscountFor(promo, 500))

	// No cap configured
	promo.MaxDiscount = 0
	assert.Equal(t, 200.0, f.pricing.DiscountFor(promo, 1000))
}

func TestDiscountForFlatClampedToSubtotal(t *testing.T) {
	f := newFixture()

	promo := &models.PromoCode{
		Code:          "FLAT300",
		DiscountType:  models.DiscountTypeFlat,
		DiscountValue: 300,
	}

	assert.Equal(t, 300.0, f.pricing.DiscountFor(promo, 1000))
	assert.Equal(t, 200.0, f.pricing.DiscountFor(promo, 200))
}
