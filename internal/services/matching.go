package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/UrbanMistri/urbanmistri-backend/internal/models"
	"github.com/UrbanMistri/urbanmistri-backend/internal/storage"
)

// Matching precondition errors
var (
	ErrAlreadyAssigned   = errors.New("booking already assigned")
	ErrNoEligibleWorkers = errors.New("no eligible workers available")
	ErrWorkerNotVerified = errors.New("worker not verified")
	ErrNotAWorker        = errors.New("profile is not a worker")
)

// Publisher receives booking status events. Satisfied by EventDispatcher;
// tests inject a recorder.
type Publisher interface {
	Publish(BookingStatusChanged)
}

// MatchingService selects the best-fit available, verified worker for a
// booking using a deterministic priority score.
type MatchingService struct {
	store  storage.Store
	events Publisher
}

// NewMatchingService creates the worker matcher
func NewMatchingService(store storage.Store, events Publisher) *MatchingService {
	return &MatchingService{store: store, events: events}
}

// Score is the deterministic weighted ranking: location match dominates,
// then rating, experience, and remaining slack capacity as tie-breaker
// toward less-loaded workers.
func Score(w *models.Profile, serviceID, customerLocation string) float64 {
	score := 0.0
	if customerLocation != "" && w.Location == customerLocation {
		score += 100
	}
	score += 10 * w.Rating
	score += 5 * float64(w.ExperienceYears)
	score += 2 * float64(w.MaxCapacity-w.CurrentJobs)
	return score
}

// FindEligible returns workers passing the eligibility predicate, in stable
// store order.
func (s *MatchingService) FindEligible(serviceID, customerLocation string) ([]*models.Profile, error) {
	workers, err := s.store.GetWorkers()
	if err != nil {
		return nil, err
	}

	var eligible []*models.Profile
	for _, w := range workers {
		if w.IsEligibleForService(serviceID) {
			eligible = append(eligible, w)
		}
	}
	return eligible, nil
}

// AutoAssign picks the top-scored eligible worker for the booking. Ties go
// to the first candidate found (stable input order).
func (s *MatchingService) AutoAssign(bookingID string) (*models.Booking, error) {
	booking, err := s.store.GetBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.IsTerminal() {
		return nil, fmt.Errorf("%w: booking is %s", ErrInvalidStatus, booking.Status)
	}
	if booking.EmployeeID != "" {
		return nil, ErrAlreadyAssigned
	}

	customer, err := s.store.GetProfileByID(booking.CustomerID)
	if err != nil {
		return nil, err
	}

	eligible, err := s.FindEligible(booking.ServiceID, customer.Location)
	if err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		return nil, ErrNoEligibleWorkers
	}

	best := eligible[0]
	bestScore := Score(best, booking.ServiceID, customer.Location)
	for _, w := range eligible[1:] {
		if sc := Score(w, booking.ServiceID, customer.Location); sc > bestScore {
			best, bestScore = w, sc
		}
	}

	log.Printf("🔧 Auto-assigning booking %s to %s (score %.1f, %d candidates)",
		booking.BookingID, best.ProfileID, bestScore, len(eligible))

	return s.assign(booking, best)
}

// ManualAssign assigns a caller-specified worker. The verification predicate
// is still enforced, but availability and capacity are deliberately NOT
// re-checked - the admin override may load a worker past max_capacity.
func (s *MatchingService) ManualAssign(bookingID, workerID string) (*models.Booking, error) {
	booking, err := s.store.GetBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.IsTerminal() {
		return nil, fmt.Errorf("%w: booking is %s", ErrInvalidStatus, booking.Status)
	}

	worker, err := s.store.GetProfileByID(workerID)
	if err != nil {
		return nil, err
	}
	if worker.Role != models.RoleWorker {
		return nil, ErrNotAWorker
	}
	if !worker.IsVerifiedWorker() {
		return nil, ErrWorkerNotVerified
	}

	previous := booking.EmployeeID
	b, err := s.assign(booking, worker)
	if err != nil {
		return nil, err
	}
	// Reassignment: the displaced worker's load shrank
	if previous != "" && previous != workerID {
		s.RefreshWorkerLoad(previous)
	}
	return b, nil
}

func (s *MatchingService) assign(booking *models.Booking, worker *models.Profile) (*models.Booking, error) {
	oldStatus := booking.Status
	now := time.Now()

	booking.EmployeeID = worker.ProfileID
	booking.Status = models.BookingStatusAssigned
	booking.AssignedAt = &now
	if err := s.store.UpdateBooking(booking); err != nil {
		return nil, err
	}

	s.RefreshWorkerLoad(worker.ProfileID)

	s.events.Publish(BookingStatusChanged{
		Booking:   booking,
		OldStatus: oldStatus,
		NewStatus: booking.Status,
	})
	return booking, nil
}

// RefreshWorkerLoad recomputes current_jobs from the worker's active
// bookings. The field is derived, never incremented in place.
func (s *MatchingService) RefreshWorkerLoad(workerID string) {
	worker, err := s.store.GetProfileByID(workerID)
	if err != nil {
		log.Printf("Failed to refresh load for worker %s: %v", workerID, err)
		return
	}
	count, err := s.store.CountActiveBookingsByEmployee(workerID)
	if err != nil {
		log.Printf("Failed to count active bookings for worker %s: %v", workerID, err)
		return
	}
	if worker.CurrentJobs != count {
		worker.CurrentJobs = count
		if err := s.store.UpdateProfile(worker); err != nil {
			log.Printf("Failed to update load for worker %s: %v", workerID, err)
		}
	}
}
