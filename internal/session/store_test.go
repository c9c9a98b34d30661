package session

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "session.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveGetClear(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.Get(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("empty store should report ErrNoSession, got %v", err)
	}

	cred := Credential{
		Token:    "tok-abc",
		UserID:   7,
		Email:    "doc@example.com",
		FullName: "Doc Example",
	}
	if err := store.Save(cred); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Token != "tok-abc" || got.UserID != 7 || got.Email != "doc@example.com" {
		t.Fatalf("unexpected credential: %+v", got)
	}
	if got.ExpiresAt.IsZero() {
		t.Fatal("save should stamp an expiry")
	}
	wantExpiry := time.Now().Add(Lifetime)
	if diff := wantExpiry.Sub(got.ExpiresAt); diff < -time.Minute || diff > time.Minute {
		t.Fatalf("expiry not ~30 days out: %v", got.ExpiresAt)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := store.Get(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("cleared store should report ErrNoSession, got %v", err)
	}
	// Clearing twice is fine.
	if err := store.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestSaveReplacesExistingCredential(t *testing.T) {
	store := openTestStore(t)

	if err := store.Save(Credential{Token: "old", UserID: 1, Email: "a@example.com"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(Credential{Token: "new", UserID: 2, Email: "b@example.com"}); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get()
	if err != nil {
		t.Fatal(err)
	}
	if got.Token != "new" || got.UserID != 2 {
		t.Fatalf("expected replacement, got %+v", got)
	}
}

func TestExpiredCredentialIsCleared(t *testing.T) {
	store := openTestStore(t)

	if err := store.Save(Credential{
		Token:     "tok",
		UserID:    1,
		Email:     "a@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}); err != nil {
		t.Fatal(err)
	}

	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := store.Get(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expired credential should report ErrNoSession, got %v", err)
	}
	if _, err := store.Token(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Token should fail for an expired session, got %v", err)
	}

	// The row is gone even when the clock moves back.
	store.now = time.Now
	if _, err := store.Get(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expired row should have been cleared, got %v", err)
	}
}

func TestTokenSource(t *testing.T) {
	store := openTestStore(t)
	if err := store.Save(Credential{Token: "bearer-me", UserID: 1, Email: "a@example.com"}); err != nil {
		t.Fatal(err)
	}
	tok, err := store.Token()
	if err != nil {
		t.Fatal(err)
	}
	if tok != "bearer-me" {
		t.Fatalf("unexpected token %q", tok)
	}
}
