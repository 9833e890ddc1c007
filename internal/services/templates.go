package services

import (
	"fmt"
	"strings"
)

// SMS template catalog. Bodies use {placeholder} parameters.
var smsTemplates = map[string]string{
	"otp_code":          "Your UrbanMistri verification code is {code}. Valid for 5 minutes. Do not share it with anyone.",
	"booking_created":   "Booking {booking_id} confirmed for {date} ({window}). Total: ₹{total}. We'll assign a technician shortly.",
	"booking_assigned":  "Technician {worker_name} has been assigned to booking {booking_id} for {date} ({window}).",
	"worker_assigned":   "New job! Booking {booking_id} on {date} ({window}) at {address}. Open the app to accept.",
	"booking_accepted":  "Your technician confirmed booking {booking_id}. See you on {date} ({window}).",
	"booking_reached":   "Your technician has arrived for booking {booking_id}.",
	"booking_started":   "Work has started on booking {booking_id}.",
	"booking_completed": "Booking {booking_id} is complete. Amount: ₹{total}. Thank you for choosing UrbanMistri!",
	"booking_cancelled": "Booking {booking_id} has been cancelled. Reason: {reason}.",
	"payment_received":  "Payment of ₹{amount} received for booking {booking_id}.",
}

// RenderTemplate fills a template's placeholders with params.
func RenderTemplate(name string, params map[string]string) (string, error) {
	body, ok := smsTemplates[name]
	if !ok {
		return "", fmt.Errorf("unknown template: %s", name)
	}
	for k, v := range params {
		body = strings.ReplaceAll(body, "{"+k+"}", v)
	}
	return body, nil
}
