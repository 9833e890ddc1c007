package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Booking statuses form a closed enum. Lifecycle:
// pending -> assigned -> accepted -> reached -> in_progress -> completed,
// with cancelled reachable from any non-terminal state.
const (
	BookingStatusPending    = "pending"
	BookingStatusAssigned   = "assigned"
	BookingStatusAccepted   = "accepted"
	BookingStatusReached    = "reached"
	BookingStatusInProgress = "in_progress"
	BookingStatusCompleted  = "completed"
	BookingStatusCancelled  = "cancelled"

	PaymentStatusUnpaid  = "unpaid"
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"

	PaymentMethodOnline = "online"
	PaymentMethodCOD    = "cod"
	PaymentMethodWallet = "wallet"
)

// ActiveBookingStatuses are the states that count toward a worker's
// current_jobs load.
var ActiveBookingStatuses = []string{
	BookingStatusAssigned,
	BookingStatusAccepted,
	BookingStatusReached,
	BookingStatusInProgress,
}

// Booking represents a customer's service request through its whole lifecycle
type Booking struct {
	gorm.Model

	BookingID  string `json:"booking_id" gorm:"uniqueIndex"`
	CustomerID string `json:"customer_id" gorm:"index"`
	ServiceID  string `json:"service_id" gorm:"index"`
	EmployeeID string `json:"employee_id" gorm:"index"` // assigned worker, empty until assignment
	PartnerID  string `json:"partner_id"`

	Status string `json:"status" gorm:"default:pending;index"`

	BookingDate     string `json:"booking_date"` // day granularity, "2006-01-02"
	BookingTime     string `json:"booking_time"` // morning / afternoon / evening
	CustomerAddress string `json:"customer_address"`

	// Pricing - total is always recomputed server-side from the components
	BasePrice      float64 `json:"base_price"`
	AddonPrice     float64 `json:"addon_price"`
	DiscountAmount float64 `json:"discount_amount"`
	WalletAmount   float64 `json:"wallet_amount"`
	PlatformFee    float64 `json:"platform_fee"`
	TotalPrice     float64 `json:"total_price"`
	PromoCode      string  `json:"promo_code"`

	PaymentStatus  string `json:"payment_status" gorm:"default:pending"`
	PaymentMethod  string `json:"payment_method" gorm:"default:online"`
	PaymentID      string `json:"payment_id"`       // gateway payment reference
	PaymentOrderID string `json:"payment_order_id"` // gateway order reference

	CancellationReason string `json:"cancellation_reason"`
	CancelledBy        string `json:"cancelled_by"` // customer / admin

	BeforePhotos StringList `json:"before_photos" gorm:"type:text"`
	AfterPhotos  StringList `json:"after_photos" gorm:"type:text"`

	IsDeleted bool `json:"is_deleted" gorm:"default:false"`

	// One timestamp per transition
	AssignedAt  *time.Time `json:"assigned_at"`
	AcceptedAt  *time.Time `json:"accepted_at"`
	ReachedAt   *time.Time `json:"reached_at"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
}

// BeforeCreate generates a BookingID if not set
func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.BookingID == "" {
		b.BookingID = fmt.Sprintf("BK%d%03d", time.Now().Unix(), time.Now().Nanosecond()%1000)
	}
	return nil
}

// IsTerminal reports whether the booking reached an absorbing state.
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusCompleted || b.Status == BookingStatusCancelled
}
