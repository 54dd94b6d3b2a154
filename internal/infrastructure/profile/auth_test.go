package profile

import (
	"errors"
	"testing"
	"time"

	"cryptofolio/internal/application"
)

func TestTokenRoundTrip(t *testing.T) {
	mgr := NewTokenManager("session-secret", time.Hour)

	token, err := mgr.Mint("42")
	if err != nil {
		t.Fatal(err)
	}

	userID, err := mgr.Verify(token)
	if err != nil {
		t.Fatal(err)
	}
	if userID != "42" {
		t.Fatalf("userID = %s, want 42", userID)
	}
}

func TestTokenWrongSecretRejected(t *testing.T) {
	token, err := NewTokenManager("secret-a", time.Hour).Mint("42")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewTokenManager("secret-b", time.Hour).Verify(token); !errors.Is(err, application.ErrAuthRequired) {
		t.Fatalf("Verify() = %v, want ErrAuthRequired", err)
	}
}

func TestTokenExpiryRejected(t *testing.T) {
	token, err := NewTokenManager("secret", -time.Minute).Mint("42")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewTokenManager("secret", time.Hour).Verify(token); !errors.Is(err, application.ErrAuthRequired) {
		t.Fatalf("Verify() = %v, want ErrAuthRequired for expired token", err)
	}
}

func TestTokenGarbageRejected(t *testing.T) {
	mgr := NewTokenManager("secret", time.Hour)
	if _, err := mgr.Verify("not.a.token"); !errors.Is(err, application.ErrAuthRequired) {
		t.Fatalf("Verify() = %v, want ErrAuthRequired", err)
	}
}
