package services

import (
	"fmt"
	"log"

	"github.com/UrbanMistri/urbanmistri-backend/internal/models"
	"github.com/UrbanMistri/urbanmistri-backend/internal/storage"
)

// BookingStatusChanged is emitted once per customer-visible status change.
type BookingStatusChanged struct {
	Booking   *models.Booking
	OldStatus string
	NewStatus string
}

// EventDispatcher consumes booking events asynchronously and turns them into
// notifications. The channel is buffered and Publish never blocks - if the
// buffer is full the event is dropped and logged, since notification
// delivery must never gate booking state.
type EventDispatcher struct {
	store    storage.Store
	notifier Notifier
	events   chan BookingStatusChanged
	done     chan struct{}
}

// NewEventDispatcher creates a dispatcher with a buffered event queue
func NewEventDispatcher(store storage.Store, notifier Notifier) *EventDispatcher {
	return &EventDispatcher{
		store:    store,
		notifier: notifier,
		events:   make(chan BookingStatusChanged, 256),
		done:     make(chan struct{}),
	}
}

// Start begins consuming events
func (d *EventDispatcher) Start() {
	go func() {
		for {
			select {
			case ev := <-d.events:
				d.handle(ev)
			case <-d.done:
				return
			}
		}
	}()
	log.Println("✅ Booking event dispatcher started")
}

// Stop halts the dispatcher
func (d *EventDispatcher) Stop() {
	close(d.done)
}

// Publish queues an event without blocking.
func (d *EventDispatcher) Publish(ev BookingStatusChanged) {
	select {
	case d.events <- ev:
	default:
		log.Printf("⚠️  Event queue full, dropping event for booking %s (%s -> %s)",
			ev.Booking.BookingID, ev.OldStatus, ev.NewStatus)
	}
}

var statusTemplates = map[string]string{
	models.BookingStatusPending:    "booking_created",
	models.BookingStatusAccepted:   "booking_accepted",
	models.BookingStatusReached:    "booking_reached",
	models.BookingStatusInProgress: "booking_started",
	models.BookingStatusCompleted:  "booking_completed",
	models.BookingStatusCancelled:  "booking_cancelled",
}

func (d *EventDispatcher) handle(ev BookingStatusChanged) {
	b := ev.Booking

	customer, err := d.store.GetProfileByID(b.CustomerID)
	if err != nil {
		log.Printf("Event for booking %s: customer lookup failed: %v", b.BookingID, err)
		return
	}

	params := map[string]string{
		"booking_id": b.BookingID,
		"date":       b.BookingDate,
		"window":     b.BookingTime,
		"total":      fmt.Sprintf("%.0f", b.TotalPrice),
		"address":    b.CustomerAddress,
		"reason":     b.CancellationReason,
	}

	if ev.NewStatus == models.BookingStatusAssigned {
		// Assignment notifies both sides
		worker, err := d.store.GetProfileByID(b.EmployeeID)
		if err != nil {
			log.Printf("Event for booking %s: worker lookup failed: %v", b.BookingID, err)
			return
		}
		params["worker_name"] = worker.FullName

		if body, err := RenderTemplate("booking_assigned", params); err == nil {
			if err := d.notifier.Send(customer.Phone, body); err != nil {
				log.Printf("Failed to notify customer for booking %s: %v", b.BookingID, err)
			}
		}
		if body, err := RenderTemplate("worker_assigned", params); err == nil {
			if err := d.notifier.Send(worker.Phone, body); err != nil {
				log.Printf("Failed to notify worker for booking %s: %v", b.BookingID, err)
			}
		}
		return
	}

	tmpl, ok := statusTemplates[ev.NewStatus]
	if !ok {
		return
	}
	body, err := RenderTemplate(tmpl, params)
	if err != nil {
		log.Printf("Event for booking %s: %v", b.BookingID, err)
		return
	}
	if err := d.notifier.Send(customer.Phone, body); err != nil {
		log.Printf("Failed to notify customer for booking %s: %v", b.BookingID, err)
	}
}
