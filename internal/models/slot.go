package models

import "gorm.io/gorm"

// Time windows for bookings, each mapped to a fixed range
const (
	TimeSlotMorning   = "morning"
	TimeSlotAfternoon = "afternoon"
	TimeSlotEvening   = "evening"
)

// TimeSlotRanges maps a window name to its display range
var TimeSlotRanges = map[string]string{
	TimeSlotMorning:   "08:00-12:00",
	TimeSlotAfternoon: "12:00-16:00",
	TimeSlotEvening:   "16:00-20:00",
}

// ValidTimeSlot reports whether the window name is a known one.
func ValidTimeSlot(window string) bool {
	_, ok := TimeSlotRanges[window]
	return ok
}

// Slot bounds capacity for one (service, date, window) tuple.
// TotalCapacity of 0 means unlimited - a slot row that only exists to track
// booked_count. If no row exists at all, capacity is also unconstrained.
type Slot struct {
	gorm.Model

	ServiceID     string `json:"service_id" gorm:"index:idx_slot_key,unique"`
	Date          string `json:"date" gorm:"index:idx_slot_key,unique"` // "2006-01-02"
	TimeSlot      string `json:"time_slot" gorm:"index:idx_slot_key,unique"`
	TotalCapacity int    `json:"total_capacity" gorm:"default:0"`
	BookedCount   int    `json:"booked_count" gorm:"default:0"`
	IsAvailable   bool   `json:"is_available" gorm:"default:true"`
}

// Capped reports whether the slot actually bounds capacity.
func (s *Slot) Capped() bool {
	return s.TotalCapacity > 0
}

// Full reports whether one more reservation would exceed capacity.
func (s *Slot) Full() bool {
	return s.Capped() && s.BookedCount >= s.TotalCapacity
}
