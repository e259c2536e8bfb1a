package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func newTestGate(t *testing.T, pinHash, pin string) (*Gate, *MemoryTokenStore, *Manager) {
	t.Helper()
	tokens := NewMemoryTokenStore()
	sessions := NewManager(time.Minute, time.Hour, NewInMemorySessionStore())
	return NewGate(pinHash, pin, "remote-api-token", sessions, tokens), tokens, sessions
}

func TestGateRejectsMalformedEntries(t *testing.T) {
	gate, tokens, _ := newTestGate(t, "", "123456")

	for _, entry := range []string{"", "12345", "1234567", "12345a", "12 456"} {
		if _, err := gate.Unlock(context.Background(), entry); !errors.Is(err, ErrMalformedPIN) {
			t.Fatalf("entry %q: expected ErrMalformedPIN got %v", entry, err)
		}
	}

	if _, ok := tokens.Token(); ok {
		t.Fatal("malformed entries must not seed the token store")
	}
}

func TestGateRejectsWrongPIN(t *testing.T) {
	gate, tokens, _ := newTestGate(t, "", "123456")

	if _, err := gate.Unlock(context.Background(), "654321"); !errors.Is(err, ErrInvalidPIN) {
		t.Fatalf("expected ErrInvalidPIN got %v", err)
	}
	if _, ok := tokens.Token(); ok {
		t.Fatal("a wrong PIN must not seed the token store")
	}
}

func TestGateUnlocksWithPlainPIN(t *testing.T) {
	gate, tokens, sessions := newTestGate(t, "", "123456")

	issued, err := gate.Unlock(context.Background(), "123456")
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if issued.AccessToken == "" || issued.RefreshToken == "" {
		t.Fatalf("expected session tokens, got %+v", issued)
	}

	token, ok := tokens.Token()
	if !ok || token != "remote-api-token" {
		t.Fatalf("expected the remote token to be seeded, got %q ok=%v", token, ok)
	}
	if !sessions.Validate(issued.AccessToken) {
		t.Fatal("issued access token should validate")
	}
}

func TestGatePrefersBcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	// The plain pin disagrees with the hash on purpose: the hash must win.
	gate, _, _ := newTestGate(t, string(hash), "999999")

	if _, err := gate.Unlock(context.Background(), "123456"); err != nil {
		t.Fatalf("unlock with hashed pin: %v", err)
	}
	if _, err := gate.Unlock(context.Background(), "999999"); !errors.Is(err, ErrInvalidPIN) {
		t.Fatalf("expected the plain fallback to be ignored, got %v", err)
	}
}
