package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kestrelhq/kestrel/internal/events"
	"github.com/kestrelhq/kestrel/internal/metrics"
	"github.com/kestrelhq/kestrel/pkg/mailer"
	"github.com/kestrelhq/kestrel/pkg/sms"
)

// Dispatcher turns stream events into outbound email and SMS.
type Dispatcher struct {
	mail   mailer.Sender
	texts  sms.Sender
	appURL string
}

func NewDispatcher(mail mailer.Sender, texts sms.Sender, appURL string) *Dispatcher {
	return &Dispatcher{
		mail:   mail,
		texts:  texts,
		appURL: strings.TrimRight(appURL, "/"),
	}
}

// HandleUserEvent is the user.events subscriber handler. New users get a
// welcome email.
func (d *Dispatcher) HandleUserEvent(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.UserRegistered:
		dataBytes, _ := json.Marshal(event.Data)
		var data events.UserRegisteredEvent
		if err := json.Unmarshal(dataBytes, &data); err != nil {
			return fmt.Errorf("failed to unmarshal user.registered event: %w", err)
		}
		return d.sendWelcome(ctx, data.Email, data.Name, data.OrganizationName)
	case events.UserCreated:
		dataBytes, _ := json.Marshal(event.Data)
		var data events.UserCreatedEvent
		if err := json.Unmarshal(dataBytes, &data); err != nil {
			return fmt.Errorf("failed to unmarshal user.created event: %w", err)
		}
		return d.sendWelcome(ctx, data.Email, data.Name, data.OrganizationName)
	}
	return nil
}

// HandleAuthEvent is the auth.events subscriber handler. Password reset
// requests go out by email, and by SMS when the account has a phone number.
func (d *Dispatcher) HandleAuthEvent(ctx context.Context, event events.Event) error {
	if event.Type != events.PasswordResetRequested {
		return nil
	}
	dataBytes, _ := json.Marshal(event.Data)
	var data events.PasswordResetRequestedEvent
	if err := json.Unmarshal(dataBytes, &data); err != nil {
		return fmt.Errorf("failed to unmarshal auth.password_reset_requested event: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", d.appURL, url.QueryEscape(data.Token))

	err := d.mail.Send(ctx, mailer.Message{
		To:      data.Email,
		Subject: "Reset your password",
		Body:    resetEmailBody(data.Name, link, data.ExpiresAt),
	})
	metrics.RecordNotification("email", err)
	if err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	if data.PhoneNumber != "" {
		err := d.texts.Send(ctx, sms.Message{
			To:   data.PhoneNumber,
			Body: fmt.Sprintf("Reset your password: %s", link),
		})
		metrics.RecordNotification("sms", err)
		if err != nil {
			// The email already went out; failing here would redeliver it.
			log.Error().Err(err).Str("user_id", data.UserID).Msg("failed to send reset sms")
		}
	}
	return nil
}

func (d *Dispatcher) sendWelcome(ctx context.Context, email, name, orgName string) error {
	err := d.mail.Send(ctx, mailer.Message{
		To:      email,
		Subject: fmt.Sprintf("Welcome to %s", orgName),
		Body:    welcomeEmailBody(name, orgName, d.appURL),
	})
	metrics.RecordNotification("email", err)
	if err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

func welcomeEmailBody(name, orgName, appURL string) string {
	return fmt.Sprintf(
		"Hi %s,\n\nYour account at %s is ready. Sign in at %s to get started.\n",
		name, orgName, appURL,
	)
}

func resetEmailBody(name, link string, expiresAt time.Time) string {
	return fmt.Sprintf(
		"Hi %s,\n\nReset your password here: %s\n\nThe link expires at %s. If you did not request a reset, you can ignore this message.\n",
		name, link, expiresAt.UTC().Format(time.RFC1123),
	)
}
