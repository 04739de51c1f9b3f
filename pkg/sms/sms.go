// Package sms sends text messages through a Twilio-style REST endpoint. The
// preview driver logs messages instead of delivering them.
package sms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Message is one outbound text message.
type Message struct {
	To   string
	Body string
}

// Sender delivers text messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// HTTPSender posts form-encoded messages to a REST endpoint, authenticating
// with the account SID and auth token when configured.
type HTTPSender struct {
	client     *http.Client
	apiURL     string
	from       string
	accountSID string
	authToken  string
}

func NewHTTPSender(apiURL, from, accountSID, authToken string) *HTTPSender {
	return &HTTPSender{
		client:     &http.Client{Timeout: 10 * time.Second},
		apiURL:     apiURL,
		from:       from,
		accountSID: accountSID,
		authToken:  authToken,
	}
}

func (s *HTTPSender) Send(ctx context.Context, msg Message) error {
	form := url.Values{}
	form.Set("To", msg.To)
	form.Set("From", s.from)
	form.Set("Body", msg.Body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if s.accountSID != "" {
		req.SetBasicAuth(s.accountSID, s.authToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms endpoint answered %s", resp.Status)
	}
	return nil
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
		Str("body", msg.Body).
		Msg("sms preview")
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
