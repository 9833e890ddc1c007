package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Profile roles
const (
	RoleCustomer = "customer"
	RoleWorker   = "worker"
	RoleAdmin    = "admin"
)

// Approval / background check statuses
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// StringList stores a list of strings as JSON in a single column.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *StringList) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
}

// Profile represents any account in the system - customers, workers and admins
// share one table, distinguished by Role. Worker-only fields stay zero-valued
// for customers.
type Profile struct {
	gorm.Model

	ProfileID string `json:"profile_id" gorm:"uniqueIndex"`
	Role      string `json:"role" gorm:"default:customer;index"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone" gorm:"uniqueIndex"`

	// A profile may only create bookings once the phone is OTP-verified
	PhoneVerified bool `json:"phone_verified" gorm:"default:false"`

	Address  string `json:"address"`
	Location string `json:"location"` // area/locality used for worker matching

	WalletBalance float64 `json:"wallet_balance" gorm:"default:0"`

	// Worker verification & availability
	IsAvailable           bool       `json:"is_available" gorm:"default:true"`
	ApprovalStatus        string     `json:"approval_status" gorm:"default:pending"`
	IDVerified            bool       `json:"id_verified" gorm:"default:false"`
	SkillsVerified        bool       `json:"skills_verified" gorm:"default:false"`
	BackgroundCheckStatus string     `json:"background_check_status" gorm:"default:pending"`
	Skills                StringList `json:"skills" gorm:"type:text"` // service IDs; empty = any service
	Rating                float64    `json:"rating" gorm:"default:0"`
	ExperienceYears       int        `json:"experience_years" gorm:"default:0"`
	MaxCapacity           int        `json:"max_capacity" gorm:"default:3"`

	// Derived: recomputed from active bookings after every assignment change,
	// never mutated independently
	CurrentJobs int `json:"current_jobs" gorm:"default:0"`
}

// BeforeCreate normalizes phone numbers and generates a ProfileID
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ProfileID == "" {
		prefix := "CUS"
		if p.Role == RoleWorker {
			prefix = "WKR"
		}
		p.ProfileID = fmt.Sprintf("%s%d%03d", prefix, time.Now().Unix(), time.Now().Nanosecond()%1000)
	}

	// Ensure phone starts with +91 (Indian market)
	if p.Phone != "" && !strings.HasPrefix(p.Phone, "+") {
		p.Phone = "+91" + strings.TrimPrefix(p.Phone, "91")
	}

	return nil
}

// HasSkill reports whether the worker can serve the given service.
// An empty skill set means the worker takes any service.
func (p *Profile) HasSkill(serviceID string) bool {
	if len(p.Skills) == 0 {
		return true
	}
	for _, s := range p.Skills {
		if s == serviceID {
			return true
		}
	}
	return false
}

// IsVerifiedWorker checks the full verification predicate used by both
// auto and manual assignment.
func (p *Profile) IsVerifiedWorker() bool {
	return p.Role == RoleWorker &&
		p.ApprovalStatus == ApprovalApproved &&
		p.IDVerified &&
		p.SkillsVerified &&
		p.BackgroundCheckStatus == ApprovalApproved
}

// IsEligibleForService adds availability and capacity on top of verification -
// the predicate auto-assignment filters by.
func (p *Profile) IsEligibleForService(serviceID string) bool {
	return p.IsVerifiedWorker() &&
		p.IsAvailable &&
		p.CurrentJobs < p.MaxCapacity &&
		p.HasSkill(serviceID)
}
