package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Promo discount types
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFlat       = "flat"
)

// PromoCode is a discount token with an eligibility window and usage cap.
// usage_count only moves up: admin CRUD aside, the single mutation is the
// +1 increment when a booking referencing the code is created.
type PromoCode struct {
	gorm.Model

	Code          string     `json:"code" gorm:"uniqueIndex"`
	DiscountType  string     `json:"discount_type"`
	DiscountValue float64    `json:"discount_value"`
	MaxDiscount   float64    `json:"max_discount"`    // cap for percentage type, 0 = no cap
	MinOrderValue float64    `json:"min_order_value"` // subtotal threshold
	ValidFrom     *time.Time `json:"valid_from"`
	ValidUntil    *time.Time `json:"valid_until"`
	IsActive      bool       `json:"is_active" gorm:"default:true"`
	UsageCount    int        `json:"usage_count" gorm:"default:0"`
	MaxUsage      int        `json:"max_usage"` // 0 = unlimited
}

// BeforeCreate normalizes the code to uppercase
func (p *PromoCode) BeforeCreate(tx *gorm.DB) error {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	return nil
}
