package services

import (
	"fmt"
	"log"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Notifier is the external notification boundary. Delivery is always
// best-effort: callers log failures and move on, a failed send never blocks
// or rolls back a state transition.
type Notifier interface {
	Send(to string, body string) error
}

// TwilioNotifier sends SMS via Twilio
type TwilioNotifier struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioNotifier creates a Twilio-backed notifier from environment credentials
func NewTwilioNotifier() (*TwilioNotifier, error) {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_PHONE_NUMBER")

	if accountSid == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("missing Twilio credentials in environment variables")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	return &TwilioNotifier{client: client, from: from}, nil
}

// Send sends an SMS message via Twilio
func (t *TwilioNotifier) Send(to string, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(to)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("❌ Failed to send SMS to %s: %v", to, err)
		return err
	}

	log.Printf("✅ SMS sent! SID: %s", *resp.Sid)
	return nil
}

// LogNotifier writes messages to the log instead of sending them. Used when
// Twilio credentials are absent (local development, tests).
type LogNotifier struct{}

func (LogNotifier) Send(to string, body string) error {
	log.Printf("📨 [notify] to=%s body=%q", to, body)
	return nil
}

// NewNotifierFromEnv returns a Twilio notifier when credentials are present,
// falling back to the log notifier otherwise.
func NewNotifierFromEnv() Notifier {
	n, err := NewTwilioNotifier()
	if err != nil {
		log.Println("⚠️  Twilio not configured - notifications will be logged only")
		return LogNotifier{}
	}
	return n
}
