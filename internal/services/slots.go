package services

import (
	"errors"
	"log"

	"github.com/UrbanMistri/urbanmistri-backend/internal/models"
	"github.com/UrbanMistri/urbanmistri-backend/internal/storage"
)

// Slot precondition errors
var (
	ErrSlotUnavailable = errors.New("slot unavailable")
	ErrInvalidTimeSlot = errors.New("invalid time slot")
)

// SlotService tracks booked-vs-total capacity per (service, date, window).
// A missing slot row means unconstrained capacity - reserving one lazily
// creates an uncapped row so booked_count is still tracked.
type SlotService struct {
	store storage.Store
}

// NewSlotService creates the capacity manager
func NewSlotService(store storage.Store) *SlotService {
	return &SlotService{store: store}
}

// Reserve takes one unit of capacity, failing with ErrSlotUnavailable when
// the slot is full.
func (s *SlotService) Reserve(serviceID, date, timeSlot string) error {
	if !models.ValidTimeSlot(timeSlot) {
		return ErrInvalidTimeSlot
	}

	slot, err := s.store.GetSlot(serviceID, date, timeSlot)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		// No slot configured: capacity is unlimited, create an uncapped row
		_, err := s.store.CreateSlot(&models.Slot{
			ServiceID:   serviceID,
			Date:        date,
			TimeSlot:    timeSlot,
			BookedCount: 1,
			IsAvailable: true,
		})
		return err
	}

	if slot.Full() {
		return ErrSlotUnavailable
	}

	slot.BookedCount++
	slot.IsAvailable = !slot.Full()
	return s.store.UpdateSlot(slot)
}

// Release returns one unit of capacity (floor 0). Used on cancel and on the
// old-slot side of a reschedule.
func (s *SlotService) Release(serviceID, date, timeSlot string) error {
	slot, err := s.store.GetSlot(serviceID, date, timeSlot)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Nothing reserved - nothing to release
			log.Printf("⚠️  Release for unknown slot %s/%s/%s", serviceID, date, timeSlot)
			return nil
		}
		return err
	}

	if slot.BookedCount > 0 {
		slot.BookedCount--
	}
	slot.IsAvailable = !slot.Full()
	return s.store.UpdateSlot(slot)
}

// Move transfers a reservation between windows for a reschedule. The new
// window is reserved BEFORE the old one is released, so a failed reserve
// leaves the original reservation intact - reschedule is all-or-nothing.
func (s *SlotService) Move(serviceID, oldDate, oldTimeSlot, newDate, newTimeSlot string) error {
	if oldDate == newDate && oldTimeSlot == newTimeSlot {
		return nil
	}
	if err := s.Reserve(serviceID, newDate, newTimeSlot); err != nil {
		return err
	}
	return s.Release(serviceID, oldDate, oldTimeSlot)
}
