// Package mailer sends transactional email. The preview driver logs messages
// instead of delivering them, which is the development default.
package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers email messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers mail through a plain SMTP relay. Authentication is
// PLAIN and only used when a username is configured.
type SMTPSender struct {
	addr string
	from string
	auth smtp.Auth
}

func NewSMTPSender(addr, from, username, password string) *SMTPSender {
	var auth smtp.Auth
	if username != "" {
		host := addr
		if h, _, err := net.SplitHostPort(addr); err == nil {
			host = h
		}
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPSender{addr: addr, from: from, auth: auth}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	// net/smtp has no context support, so honor cancellation before dialing.
	if err := ctx.Err(); err != nil {
		return err
	}
	payload := buildPayload(s.from, msg)
	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{msg.To}, payload); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildPayload(from string, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

// PreviewSender logs messages instead of delivering them and keeps them
// available for inspection.
type PreviewSender struct {
	mu   sync.Mutex
	sent []Message
}

func NewPreviewSender() *PreviewSender {
	return &PreviewSender{}
}

func (s *PreviewSender) Send(ctx context.Context, msg Message) error {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()

	log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("email preview")
	return nil
}

// Sent returns a copy of every message handed to the sender so far.
func (s *PreviewSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
