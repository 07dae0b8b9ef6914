package userauth

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterGuestCreatesNewGuest(t *testing.T) {
	users := newMemoryUserStore()
	env := newTestService(t, testConfig(), users)

	m := env.manager("10.0.0.1")
	guest, err := m.RegisterGuest(context.Background(), Credentials{
		"email": "guest@example.com",
		"name":  "Gwen",
	})
	if err != nil {
		t.Fatalf("RegisterGuest failed: %v", err)
	}

	if !guest.IsGuest {
		t.Fatal("expected guest flag")
	}
	if guest.IsActivated {
		t.Fatal("expected guest to be unactivated")
	}
	if !guest.InGroup("guest") {
		t.Fatal("expected guest group membership")
	}
	if guest.ID == "" {
		t.Fatal("expected generated id")
	}
	if m.User() != guest {
		t.Fatal("expected manager to hold the guest")
	}
	if users.createCalls != 1 {
		t.Fatalf("expected one create, got %d", users.createCalls)
	}
}

func TestRegisterGuestRequiresEmail(t *testing.T) {
	users := newMemoryUserStore()
	env := newTestService(t, testConfig(), users)

	m := env.manager("10.0.0.1")
	if _, err := m.RegisterGuest(context.Background(), Credentials{"name": "Gwen"}); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}

func TestRegisterGuestReusesExistingGuest(t *testing.T) {
	users := newMemoryUserStore()
	env := newTestService(t, testConfig(), users)

	ctx := context.Background()
	m := env.manager("10.0.0.1")

	first, err := m.RegisterGuest(ctx, Credentials{"email": "guest@example.com"})
	if err != nil {
		t.Fatalf("first RegisterGuest failed: %v", err)
	}
	second, err := m.RegisterGuest(ctx, Credentials{"email": "guest@example.com", "name": "Gwen"})
	if err != nil {
		t.Fatalf("second RegisterGuest failed: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("expected guest reuse, got %s and %s", first.ID, second.ID)
	}
	if second.Name != "Gwen" {
		t.Fatal("expected merged attributes")
	}
	if users.createCalls != 1 {
		t.Fatalf("expected a single create, got %d", users.createCalls)
	}
	if !users.lastSaveOpts.SkipPasswordValidation {
		t.Fatal("expected passwordless guest save to skip password validation")
	}
}

func TestRegisterGuestWithPasswordHashes(t *testing.T) {
	users := newMemoryUserStore()
	env := newTestService(t, testConfig(), users)

	m := env.manager("10.0.0.1")
	guest, err := m.RegisterGuest(context.Background(), Credentials{
		"email":    "guest@example.com",
		"password": "guest secret",
	})
	if err != nil {
		t.Fatalf("RegisterGuest failed: %v", err)
	}

	if guest.Password == "" || guest.Password == "guest secret" {
		t.Fatal("expected stored password to be hashed")
	}
	ok, err := env.service.hasher.Verify("guest secret", guest.Password)
	if err != nil || !ok {
		t.Fatalf("expected stored hash to verify, ok=%v err=%v", ok, err)
	}
}

func TestConvertGuestToUser(t *testing.T) {
	users := newMemoryUserStore()
	env := newTestService(t, testConfig(), users)

	ctx := context.Background()
	m := env.manager("10.0.0.1")

	guest, err := m.RegisterGuest(ctx, Credentials{"email": "guest@example.com"})
	if err != nil {
		t.Fatalf("RegisterGuest failed: %v", err)
	}

	user, err := m.ConvertGuestToUser(ctx, guest, Credentials{
		"username": "gwen",
		"password": "member secret",
	}, true)
	if err != nil {
		t.Fatalf("ConvertGuestToUser failed: %v", err)
	}

	if user.ID != guest.ID {
		t.Fatal("expected conversion in place")
	}
	if user.IsGuest {
		t.Fatal("expected guest flag cleared")
	}
	if user.InGroup("guest") {
		t.Fatal("expected guest group removed")
	}
	if !user.IsActivated || user.ActivatedAt == nil {
		t.Fatal("expected converted user to be activated")
	}
	if user.ActivationCode != "" {
		t.Fatal("expected activation code consumed")
	}

	// The merged account can now log in normally.
	auth := env.manager("10.0.0.1")
	logged, err := auth.Authenticate(ctx, Credentials{
		"email":    "guest@example.com",
		"password": "member secret",
	}, false)
	if err != nil {
		t.Fatalf("post-conversion login failed: %v", err)
	}
	if logged.ID != guest.ID {
		t.Fatal("expected login to resolve the converted account")
	}
}

func TestConvertGuestToUserWithoutActivation(t *testing.T) {
	users := newMemoryUserStore()
	env := newTestService(t, testConfig(), users)

	ctx := context.Background()
	m := env.manager("10.0.0.1")

	guest, err := m.RegisterGuest(ctx, Credentials{"email": "guest@example.com"})
	if err != nil {
		t.Fatalf("RegisterGuest failed: %v", err)
	}
	user, err := m.ConvertGuestToUser(ctx, guest, Credentials{"password": "member secret"}, false)
	if err != nil {
		t.Fatalf("ConvertGuestToUser failed: %v", err)
	}
	if user.IsActivated {
		t.Fatal("expected user to stay unactivated")
	}
}

func TestConvertGuestToUserRejectsNonGuest(t *testing.T) {
	users := newMemoryUserStore()
	env := newTestService(t, testConfig(), users)
	member := activatedUser(t, env.service, "u1", "alice@example.com", "alice", "correct horse")
	users.add(member)

	m := env.manager("10.0.0.1")
	if _, err := m.ConvertGuestToUser(context.Background(), member, Credentials{}, true); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField for non-guest, got %v", err)
	}
}

func TestFindGuestUserScopesToGuests(t *testing.T) {
	users := newMemoryUserStore()
	env := newTestService(t, testConfig(), users)
	users.add(activatedUser(t, env.service, "u1", "shared@example.com", "alice", "correct horse"))

	m := env.manager("10.0.0.1")
	found, err := m.FindGuestUser(context.Background(), "shared@example.com")
	if err != nil {
		t.Fatalf("FindGuestUser failed: %v", err)
	}
	if found != nil {
		t.Fatal("expected member account not to be returned as guest")
	}
}
