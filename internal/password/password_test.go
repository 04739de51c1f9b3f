package password

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2-but-longer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "hunter2-but-longer" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword("hunter2-but-longer", hash) {
		t.Error("expected password to match its hash")
	}
	if CheckPassword("wrong-password", hash) {
		t.Error("expected mismatched password to fail")
	}
}

func TestNewResetToken(t *testing.T) {
	raw, hash, err := NewResetToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(raw) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(raw))
	}
	if hash == raw {
		t.Error("stored hash must differ from the raw token")
	}
	if HashResetToken(raw) != hash {
		t.Error("expected hash to be reproducible from the raw token")
	}

	raw2, _, err := NewResetToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw == raw2 {
		t.Error("expected distinct tokens across calls")
	}
}
