package services

import (
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/UrbanMistri/urbanmistri-backend/internal/models"
	"github.com/UrbanMistri/urbanmistri-backend/internal/storage"
)

// stubNotifier records sent messages instead of dispatching them
type stubNotifier struct {
	mu   sync.Mutex
	sent []struct{ To, Body string }
	fail bool
}

var errDispatch = errors.New("dispatch failed")

func (n *stubNotifier) Send(to, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errDispatch
	}
	n.sent = append(n.sent, struct{ To, Body string }{to, body})
	return nil
}

// recordingPublisher captures booking events synchronously
type recordingPublisher struct {
	mu     sync.Mutex
	events []BookingStatusChanged
}

func (p *recordingPublisher) Publish(ev BookingStatusChanged) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

var codePattern = regexp.MustCompile(`\d{6}`)

func (n *stubNotifier) lastCode(t *testing.T) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sent, "expected at least one sent message")
	code := codePattern.FindString(n.sent[len(n.sent)-1].Body)
	require.NotEmpty(t, code, "expected a 6-digit code in the message body")
	return code
}

func seedCustomer(t *testing.T, store storage.Store, balance float64) *models.Profile {
	t.Helper()
	profile, err := store.CreateProfile(&models.Profile{
		Role:          models.RoleCustomer,
		Phone:         "+919999900001",
		FullName:      "Test Customer",
		Location:      "indiranagar",
		PhoneVerified: true,
		WalletBalance: balance,
	})
	require.NoError(t, err)
	return profile
}

type workerOpts struct {
	phone      string
	location   string
	rating     float64
	experience int
	maxCap     int
	skills     []string
	unverified bool
	busy       bool
}

func seedWorker(t *testing.T, store storage.Store, opts workerOpts) *models.Profile {
	t.Helper()
	if opts.maxCap == 0 {
		opts.maxCap = 3
	}
	w := &models.Profile{
		Role:            models.RoleWorker,
		Phone:           opts.phone,
		FullName:        "Worker " + opts.phone,
		Location:        opts.location,
		Rating:          opts.rating,
		ExperienceYears: opts.experience,
		MaxCapacity:     opts.maxCap,
		Skills:          opts.skills,
		IsAvailable:     !opts.busy,
	}
	if !opts.unverified {
		w.ApprovalStatus = models.ApprovalApproved
		w.IDVerified = true
		w.SkillsVerified = true
		w.BackgroundCheckStatus = models.ApprovalApproved
	}
	profile, err := store.CreateProfile(w)
	require.NoError(t, err)
	return profile
}

// fixture wires the full service graph over a memory store
type fixture struct {
	store    *storage.MemoryStore
	notifier *stubNotifier
	events   *recordingPublisher
	otp      *OTPService
	pricing  *PricingService
	wallet   *WalletService
	slots    *SlotService
	matching *MatchingService
	bookings *BookingService
}

func newFixture() *fixture {
	store := storage.NewMemoryStore()
	notifier := &stubNotifier{}
	events := &recordingPublisher{}
	pricing := NewPricingService(store)
	wallet := NewWalletService(store)
	slots := NewSlotService(store)
	matching := NewMatchingService(store, events)
	return &fixture{
		store:    store,
		notifier: notifier,
		events:   events,
		otp:      NewOTPService(store, notifier),
		pricing:  pricing,
		wallet:   wallet,
		slots:    slots,
		matching: matching,
		bookings: NewBookingService(store, pricing, wallet, slots, matching, events),
	}
}

func (f *fixture) createBooking(t *testing.T, input CreateBookingInput) *models.Booking {
	t.Helper()
	booking, err := f.bookings.Create(input)
	require.NoError(t, err)
	return booking
}
