package jobs

import (
	"log"
	"time"

	"github.com/UrbanMistri/urbanmistri-backend/internal/storage"
)

// CleanupJob runs periodic housekeeping sweeps
type CleanupJob struct {
	store     storage.Store
	interval  time.Duration
	isRunning bool
	done      chan struct{}
}

// NewCleanupJob creates the background sweeper
func NewCleanupJob(store storage.Store) *CleanupJob {
	return &CleanupJob{
		store:    store,
		interval: 10 * time.Minute,
		done:     make(chan struct{}),
	}
}

// Start begins the scheduled sweeps
func (j *CleanupJob) Start() {
	if j.isRunning {
		log.Println("Cleanup job already running")
		return
	}
	j.isRunning = true
	log.Println("Starting cleanup job...")

	go j.scheduleOTPSweep()
}

// Stop halts the scheduled sweeps
func (j *CleanupJob) Stop() {
	if !j.isRunning {
		return
	}
	j.isRunning = false
	close(j.done)
	log.Println("Stopping cleanup job...")
}

// Expired OTP challenges are also rejected at verify time; the sweep keeps
// the table from growing unbounded.
func (j *CleanupJob) scheduleOTPSweep() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed, err := j.store.DeleteExpiredOTPChallenges()
			if err != nil {
				log.Printf("OTP sweep failed: %v", err)
				continue
			}
			if removed > 0 {
				log.Printf("🧹 Purged %d expired OTP challenges", removed)
			}
		case <-j.done:
			return
		}
	}
}
