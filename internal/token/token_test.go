package token

import (
	"strings"
	"testing"
	"time"
)

var testParams = AccessTokenParams{
	UserID:         "usr-a1B2c3D4e5",
	OrganizationID: "org-f6G7h8I9j0",
	Role:           "admin",
	SessionID:      "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
	Email:          "jane@acme.test",
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewService("test-secret", 15*time.Minute)

	signed, err := svc.GenerateAccessToken(testParams)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := svc.VerifyAccessToken(signed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != testParams.UserID {
		t.Errorf("expected user %s, got %s", testParams.UserID, claims.UserID)
	}
	if claims.OrganizationID != testParams.OrganizationID {
		t.Errorf("expected org %s, got %s", testParams.OrganizationID, claims.OrganizationID)
	}
	if claims.Role != "admin" {
		t.Errorf("expected role admin, got %s", claims.Role)
	}
	if claims.SessionID != testParams.SessionID {
		t.Errorf("expected session %s, got %s", testParams.SessionID, claims.SessionID)
	}
	if claims.Subject != testParams.UserID {
		t.Errorf("expected subject %s, got %s", testParams.UserID, claims.Subject)
	}
}

func TestVerifyAccessTokenRejections(t *testing.T) {
	svc := NewService("test-secret", 15*time.Minute)
	signed, err := svc.GenerateAccessToken(testParams)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("wrong secret", func(t *testing.T) {
		other := NewService("other-secret", 15*time.Minute)
		if _, err := other.VerifyAccessToken(signed); err == nil {
			t.Error("expected verification to fail with a different secret")
		}
	})

	t.Run("tampered payload", func(t *testing.T) {
		parts := strings.Split(signed, ".")
		tampered := parts[0] + ".eyJ1c2VySWQiOiJ1c3ItZXZpbCJ9." + parts[2]
		if _, err := svc.VerifyAccessToken(tampered); err == nil {
			t.Error("expected verification to fail for a tampered token")
		}
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewService("test-secret", -time.Minute)
		signed, err := expired.GenerateAccessToken(testParams)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := expired.VerifyAccessToken(signed); err == nil {
			t.Error("expected verification to fail for an expired token")
		}
	})

	t.Run("garbage input", func(t *testing.T) {
		if _, err := svc.VerifyAccessToken("not-a-jwt"); err == nil {
			t.Error("expected verification to fail for malformed input")
		}
	})
}

func TestNewRefreshToken(t *testing.T) {
	svc := NewService("test-secret", 15*time.Minute)

	raw, hash, err := svc.NewRefreshToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(raw) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(raw))
	}
	if HashToken(raw) != hash {
		t.Error("expected hash to be reproducible from the raw token")
	}

	raw2, _, err := svc.NewRefreshToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw == raw2 {
		t.Error("expected distinct refresh tokens across calls")
	}
}
