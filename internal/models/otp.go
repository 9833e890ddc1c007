package models

import (
	"time"

	"gorm.io/gorm"
)

// OTPChallenge is the single active one-time-code challenge for a phone
// number. The code itself is never stored - only its sha256 hex digest.
// A new request-OTP upserts by phone, replacing any prior challenge.
type OTPChallenge struct {
	gorm.Model

	Phone      string    `gorm:"uniqueIndex;not null"`
	CodeHash   string    `gorm:"not null"`
	Purpose    string    `gorm:"default:login"`
	ExpiresAt  time.Time `gorm:"not null"`
	Attempts   int       `gorm:"default:0"`
	LastSentAt time.Time
}

// Expired reports whether the challenge is past its expiry.
func (o *OTPChallenge) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
