package security

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	signer := NewTokenSigner("test-secret")

	sessionID := GenerateSessionID()
	token, err := signer.Sign(sessionID, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Sign() failed: %v", err)
	}

	got, err := signer.Parse(token)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if got != sessionID {
		t.Errorf("Parse() = %q, want %q", got, sessionID)
	}
}

func TestTokenTampered(t *testing.T) {
	signer := NewTokenSigner("test-secret")

	token, err := signer.Sign("session-1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Sign() failed: %v", err)
	}

	if _, err := signer.Parse(token + "x"); err == nil {
		t.Error("Parse() should reject a tampered token")
	}
}

func TestTokenWrongSecret(t *testing.T) {
	signer := NewTokenSigner("secret-a")
	other := NewTokenSigner("secret-b")

	token, err := signer.Sign("session-1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Sign() failed: %v", err)
	}

	if _, err := other.Parse(token); err == nil {
		t.Error("Parse() should reject a token signed with a different secret")
	}
}

func TestTokenExpired(t *testing.T) {
	signer := NewTokenSigner("test-secret")

	token, err := signer.Sign("session-1", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("Sign() failed: %v", err)
	}

	if _, err := signer.Parse(token); err == nil {
		t.Error("Parse() should reject an expired token")
	}
}

func TestRandomSecretStillSigns(t *testing.T) {
	signer := NewTokenSigner("")

	token, err := signer.Sign("session-1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Sign() with generated secret failed: %v", err)
	}
	if got, err := signer.Parse(token); err != nil || got != "session-1" {
		t.Errorf("Parse() = %q, %v; want session-1, nil", got, err)
	}
}
