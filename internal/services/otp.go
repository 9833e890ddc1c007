package services

import (
	"errors"
	"log"
	"time"

	"github.com/UrbanMistri/urbanmistri-backend/internal/models"
	"github.com/UrbanMistri/urbanmistri-backend/internal/storage"
	"github.com/UrbanMistri/urbanmistri-backend/internal/utils"
)

// OTP precondition errors
var (
	ErrOTPRateLimited      = errors.New("otp requested too recently")
	ErrOTPNotFound         = errors.New("no otp challenge found")
	ErrOTPExpired          = errors.New("otp expired")
	ErrOTPAttemptsExceeded = errors.New("otp attempts exceeded")
	ErrOTPInvalid          = errors.New("invalid otp code")
)

const (
	otpResendWindow = 45 * time.Second
	otpTTL          = 5 * time.Minute
	otpMaxAttempts  = 5
)

// OTPService issues and verifies one-time codes per phone number. The code
// is stored only as a sha256 digest, one active challenge per phone, and a
// challenge dies after otpMaxAttempts failed verifies until a new one is
// requested.
type OTPService struct {
	store    storage.Store
	notifier Notifier
}

// NewOTPService creates the OTP authenticator
func NewOTPService(store storage.Store, notifier Notifier) *OTPService {
	return &OTPService{store: store, notifier: notifier}
}

// RequestChallenge generates a fresh code for the phone, replacing any prior
// challenge. Rejects with ErrOTPRateLimited when the previous challenge was
// created less than 45 seconds ago.
func (s *OTPService) RequestChallenge(phone string) error {
	if prev, err := s.store.GetOTPChallenge(phone); err == nil {
		if time.Since(prev.LastSentAt) < otpResendWindow {
			return ErrOTPRateLimited
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	code, err := utils.GenerateSecureOTP()
	if err != nil {
		return err
	}

	now := time.Now()
	challenge := &models.OTPChallenge{
		Phone:      phone,
		CodeHash:   utils.HashOTP(code),
		Purpose:    "login",
		ExpiresAt:  now.Add(otpTTL),
		Attempts:   0,
		LastSentAt: now,
	}
	if err := s.store.UpsertOTPChallenge(challenge); err != nil {
		return err
	}

	body, _ := RenderTemplate("otp_code", map[string]string{"code": code})
	if err := s.notifier.Send(phone, body); err != nil {
		// Dispatch failure does not fail the request - the code stays valid.
		// Logged so support can recover it manually.
		log.Printf("⚠️  OTP dispatch failed for %s (code %s): %v", phone, code, err)
	}

	return nil
}

// VerifyChallenge checks the code for the phone. On success the challenge is
// deleted (single use) and the customer profile is found or created with the
// phone marked verified. The second return value reports whether a new
// profile was created.
func (s *OTPService) VerifyChallenge(phone, code string) (*models.Profile, bool, error) {
	challenge, err := s.store.GetOTPChallenge(phone)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, false, ErrOTPNotFound
		}
		return nil, false, err
	}

	if challenge.Expired(time.Now()) {
		return nil, false, ErrOTPExpired
	}

	// Attempt cap is checked before the hash so a correct code cannot revive
	// a dead challenge
	if challenge.Attempts >= otpMaxAttempts {
		return nil, false, ErrOTPAttemptsExceeded
	}

	if challenge.CodeHash != utils.HashOTP(code) {
		challenge.Attempts++
		if err := s.store.UpdateOTPChallenge(challenge); err != nil {
			return nil, false, err
		}
		return nil, false, ErrOTPInvalid
	}

	// Single use: delete before anything else can replay it
	if err := s.store.DeleteOTPChallenge(phone); err != nil {
		return nil, false, err
	}

	profile, err := s.store.GetProfileByPhone(phone)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, false, err
		}
		profile, err = s.store.CreateProfile(&models.Profile{
			Phone:         phone,
			Role:          models.RoleCustomer,
			PhoneVerified: true,
		})
		if err != nil {
			return nil, false, err
		}
		return profile, true, nil
	}

	if !profile.PhoneVerified {
		profile.PhoneVerified = true
		if err := s.store.UpdateProfile(profile); err != nil {
			return nil, false, err
		}
	}
	return profile, false, nil
}
