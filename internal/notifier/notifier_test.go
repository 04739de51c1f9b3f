package notifier

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kestrelhq/kestrel/internal/events"
	"github.com/kestrelhq/kestrel/pkg/mailer"
	"github.com/kestrelhq/kestrel/pkg/sms"
)

// ---- mock implementations ----

type mockMailer struct {
	sendFn func(ctx context.Context, msg mailer.Message) error
	sent   []mailer.Message
}

func (m *mockMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.sent = append(m.sent, msg)
	if m.sendFn != nil {
		return m.sendFn(ctx, msg)
	}
	return nil
}

type mockTexter struct {
	sendFn func(ctx context.Context, msg sms.Message) error
	sent   []sms.Message
}

func (m *mockTexter) Send(ctx context.Context, msg sms.Message) error {
	m.sent = append(m.sent, msg)
	if m.sendFn != nil {
		return m.sendFn(ctx, msg)
	}
	return nil
}

// ---- helpers ----

// wireEvent mimics what a subscriber hands the dispatcher: after the JSON
// round trip, Data is a map, not the typed struct.
func wireEvent(eventType string, data map[string]any) events.Event {
	return events.Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// ---- tests ----

func TestHandleUserEventSendsWelcome(t *testing.T) {
	tests := []struct {
		name      string
		eventType string
	}{
		{"registered user", events.UserRegistered},
		{"created user", events.UserCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mail := &mockMailer{}
			texts := &mockTexter{}
			d := NewDispatcher(mail, texts, "https://app.kestrel.local/")

			err := d.HandleUserEvent(context.Background(), wireEvent(tt.eventType, map[string]any{
				"userId":           "usr-a1B2c3D4e5",
				"organizationId":   "org-f6G7h8I9j0",
				"organizationName": "Acme Corp",
				"email":            "ada@example.com",
				"name":             "Ada Lovelace",
			}))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(mail.sent) != 1 {
				t.Fatalf("expected 1 email, got %d", len(mail.sent))
			}
			msg := mail.sent[0]
			if msg.To != "ada@example.com" {
				t.Errorf("expected ada@example.com, got %s", msg.To)
			}
			if msg.Subject != "Welcome to Acme Corp" {
				t.Errorf("expected welcome subject, got %s", msg.Subject)
			}
			if !strings.Contains(msg.Body, "Ada Lovelace") {
				t.Errorf("expected the body to greet the user, got %q", msg.Body)
			}
			if len(texts.sent) != 0 {
				t.Errorf("expected no sms, got %d", len(texts.sent))
			}
		})
	}
}

func TestHandleUserEventIgnoresOtherTypes(t *testing.T) {
	mail := &mockMailer{}
	d := NewDispatcher(mail, &mockTexter{}, "https://app.kestrel.local")

	err := d.HandleUserEvent(context.Background(), wireEvent(events.UserUpdated, map[string]any{
		"userId": "usr-a1B2c3D4e5",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mail.sent) != 0 {
		t.Errorf("expected no email, got %d", len(mail.sent))
	}
}

func TestHandleAuthEventEmailsAndTexts(t *testing.T) {
	mail := &mockMailer{}
	texts := &mockTexter{}
	d := NewDispatcher(mail, texts, "https://app.kestrel.local")

	expires := time.Now().UTC().Add(30 * time.Minute)
	err := d.HandleAuthEvent(context.Background(), wireEvent(events.PasswordResetRequested, map[string]any{
		"userId":      "usr-a1B2c3D4e5",
		"email":       "ada@example.com",
		"name":        "Ada Lovelace",
		"phoneNumber": "+15552223333",
		"token":       "a1b2c3d4",
		"expiresAt":   expires.Format(time.RFC3339),
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(mail.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(mail.sent))
	}
	if !strings.Contains(mail.sent[0].Body, "https://app.kestrel.local/reset-password?token=a1b2c3d4") {
		t.Errorf("expected the reset link in the body, got %q", mail.sent[0].Body)
	}

	if len(texts.sent) != 1 {
		t.Fatalf("expected 1 sms, got %d", len(texts.sent))
	}
	if texts.sent[0].To != "+15552223333" {
		t.Errorf("expected +15552223333, got %s", texts.sent[0].To)
	}
	if !strings.Contains(texts.sent[0].Body, "reset-password?token=a1b2c3d4") {
		t.Errorf("expected the reset link in the sms, got %q", texts.sent[0].Body)
	}
}

func TestHandleAuthEventSkipsSMSWithoutPhone(t *testing.T) {
	mail := &mockMailer{}
	texts := &mockTexter{}
	d := NewDispatcher(mail, texts, "https://app.kestrel.local")

	err := d.HandleAuthEvent(context.Background(), wireEvent(events.PasswordResetRequested, map[string]any{
		"userId":    "usr-a1B2c3D4e5",
		"email":     "ada@example.com",
		"name":      "Ada Lovelace",
		"token":     "a1b2c3d4",
		"expiresAt": time.Now().UTC().Add(30 * time.Minute).Format(time.RFC3339),
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(mail.sent) != 1 {
		t.Errorf("expected 1 email, got %d", len(mail.sent))
	}
	if len(texts.sent) != 0 {
		t.Errorf("expected no sms, got %d", len(texts.sent))
	}
}

func TestHandleAuthEventFailedEmailRedelivers(t *testing.T) {
	mail := &mockMailer{
		sendFn: func(ctx context.Context, msg mailer.Message) error {
			return fmt.Errorf("smtp unreachable")
		},
	}
	texts := &mockTexter{}
	d := NewDispatcher(mail, texts, "https://app.kestrel.local")

	err := d.HandleAuthEvent(context.Background(), wireEvent(events.PasswordResetRequested, map[string]any{
		"userId":      "usr-a1B2c3D4e5",
		"email":       "ada@example.com",
		"name":        "Ada Lovelace",
		"phoneNumber": "+15552223333",
		"token":       "a1b2c3d4",
		"expiresAt":   time.Now().UTC().Add(30 * time.Minute).Format(time.RFC3339),
	}))
	if err == nil {
		t.Fatal("expected an error so the message is not acked")
	}
	if len(texts.sent) != 0 {
		t.Errorf("expected no sms after a failed email, got %d", len(texts.sent))
	}
}

func TestHandleAuthEventFailedSMSDoesNotRedeliver(t *testing.T) {
	mail := &mockMailer{}
	texts := &mockTexter{
		sendFn: func(ctx context.Context, msg sms.Message) error {
			return fmt.Errorf("sms endpoint answered 401 Unauthorized")
		},
	}
	d := NewDispatcher(mail, texts, "https://app.kestrel.local")

	err := d.HandleAuthEvent(context.Background(), wireEvent(events.PasswordResetRequested, map[string]any{
		"userId":      "usr-a1B2c3D4e5",
		"email":       "ada@example.com",
		"name":        "Ada Lovelace",
		"phoneNumber": "+15552223333",
		"token":       "a1b2c3d4",
		"expiresAt":   time.Now().UTC().Add(30 * time.Minute).Format(time.RFC3339),
	}))
	if err != nil {
		t.Fatalf("expected the email delivery to stand, got %v", err)
	}
	if len(mail.sent) != 1 {
		t.Errorf("expected 1 email, got %d", len(mail.sent))
	}
}
