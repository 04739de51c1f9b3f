package sms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPSenderPostsForm(t *testing.T) {
	var got struct {
		to, from, body string
		sid, token     string
		authOK         bool
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		got.to = r.PostFormValue("To")
		got.from = r.PostFormValue("From")
		got.body = r.PostFormValue("Body")
		got.sid, got.token, got.authOK = r.BasicAuth()
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL, "+15550001111", "AC0123456789", "secret-token")
	err := sender.Send(context.Background(), Message{
		To:   "+15552223333",
		Body: "Your reset code",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.to != "+15552223333" {
		t.Errorf("expected +15552223333, got %s", got.to)
	}
	if got.from != "+15550001111" {
		t.Errorf("expected +15550001111, got %s", got.from)
	}
	if got.body != "Your reset code" {
		t.Errorf("expected body to arrive, got %s", got.body)
	}
	if !got.authOK || got.sid != "AC0123456789" || got.token != "secret-token" {
		t.Errorf("expected basic auth with the account SID, got %s/%s ok=%v", got.sid, got.token, got.authOK)
	}
}

func TestHTTPSenderRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL, "+15550001111", "AC0123456789", "wrong")
	if err := sender.Send(context.Background(), Message{To: "+15552223333", Body: "x"}); err == nil {
		t.Error("expected an error for a non-2xx response")
	}
}

func TestPreviewSenderCapturesMessages(t *testing.T) {
	sender := NewPreviewSender()

	if err := sender.Send(context.Background(), Message{To: "+15552223333", Body: "hello"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent := sender.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sent))
	}
	if sent[0].To != "+15552223333" {
		t.Errorf("expected +15552223333, got %s", sent[0].To)
	}
}
