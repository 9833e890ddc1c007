package services

import (
	"errors"
	"time"

	"github.com/UrbanMistri/urbanmistri-backend/internal/models"
	"github.com/UrbanMistri/urbanmistri-backend/internal/storage"
)

// Pricing precondition errors
var (
	ErrPromoInvalid        = errors.New("invalid promo code")
	ErrPromoNotYetValid    = errors.New("promo code not yet valid")
	ErrPromoExpired        = errors.New("promo code expired")
	ErrPromoMinOrder       = errors.New("order below promo minimum")
	ErrPromoUsageLimit     = errors.New("promo usage limit exceeded")
	ErrInvalidWalletAmount = errors.New("wallet amount exceeds order subtotal")
)

// PricingService computes the authoritative booking total and validates
// promo codes. Client-submitted totals are never trusted for settlement.
type PricingService struct {
	store storage.Store
}

// NewPricingService creates the pricing resolver
func NewPricingService(store storage.Store) *PricingService {
	return &PricingService{store: store}
}

// ResolvePromo validates a promo code against the subtotal. Read-only:
// usage_count is incremented exactly once, at booking-creation commit, by
// the caller.
func (s *PricingService) ResolvePromo(code string, subtotal float64) (*models.PromoCode, error) {
	promo, err := s.store.GetPromoCode(code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrPromoInvalid
		}
		return nil, err
	}
	if !promo.IsActive {
		return nil, ErrPromoInvalid
	}

	now := time.Now()
	if promo.ValidFrom != nil && now.Before(*promo.ValidFrom) {
		return nil, ErrPromoNotYetValid
	}
	if promo.ValidUntil != nil && now.After(*promo.ValidUntil) {
		return nil, ErrPromoExpired
	}
	if subtotal < promo.MinOrderValue {
		return nil, ErrPromoMinOrder
	}
	if promo.MaxUsage > 0 && promo.UsageCount >= promo.MaxUsage {
		return nil, ErrPromoUsageLimit
	}

	return promo, nil
}

// DiscountFor computes the discount a resolved promo grants on a subtotal:
// percentage capped by max_discount, or flat. Never above the subtotal.
func (s *PricingService) DiscountFor(promo *models.PromoCode, subtotal float64) float64 {
	var discount float64
	switch promo.DiscountType {
	case models.DiscountTypePercentage:
		discount = subtotal * promo.DiscountValue / 100
		if promo.MaxDiscount > 0 && discount > promo.MaxDiscount {
			discount = promo.MaxDiscount
		}
	case models.DiscountTypeFlat:
		discount = promo.DiscountValue
	}
	if discount > subtotal {
		discount = subtotal
	}
	return discount
}

// ComputeTotal derives the settlement total from trusted component prices:
// subtotal = max(0, base+addon-discount), total = max(0, subtotal-wallet).
// Fails when the wallet contribution exceeds the subtotal.
func (s *PricingService) ComputeTotal(base, addon, discount, wallet float64) (float64, error) {
	subtotal := base + addon - discount
	if subtotal < 0 {
		subtotal = 0
	}
	if wallet > subtotal {
		return 0, ErrInvalidWalletAmount
	}
	total := subtotal - wallet
	if total < 0 {
		total = 0
	}
	return total, nil
}
