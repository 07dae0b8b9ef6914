package throttle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestTracker(t *testing.T, cfg Config) (*Tracker, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client, cfg), mr
}

func TestCheckPassesWithoutAttempts(t *testing.T) {
	tr, _ := newTestTracker(t, Config{MaxAttempts: 5, AttemptWindow: time.Minute, LockoutWindow: 15 * time.Minute})

	if err := tr.Check(context.Background(), "alice@example.com", "10.0.0.1"); err != nil {
		t.Fatalf("Check failed: %v", err)
	}
}

func TestLockoutAtThreshold(t *testing.T) {
	tr, _ := newTestTracker(t, Config{MaxAttempts: 3, AttemptWindow: time.Minute, LockoutWindow: 15 * time.Minute})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := tr.AddLoginAttempt(ctx, "alice@example.com", "10.0.0.1"); err != nil {
			t.Fatalf("AddLoginAttempt %d failed: %v", i, err)
		}
		if err := tr.Check(ctx, "alice@example.com", "10.0.0.1"); err != nil {
			t.Fatalf("Check should pass below threshold, got %v", err)
		}
	}

	if err := tr.AddLoginAttempt(ctx, "alice@example.com", "10.0.0.1"); err != nil {
		t.Fatalf("AddLoginAttempt at threshold failed: %v", err)
	}
	if err := tr.Check(ctx, "alice@example.com", "10.0.0.1"); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestLockoutExpiresAfterWindow(t *testing.T) {
	tr, mr := newTestTracker(t, Config{MaxAttempts: 2, AttemptWindow: time.Minute, LockoutWindow: 15 * time.Minute})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := tr.AddLoginAttempt(ctx, "alice@example.com", "10.0.0.1"); err != nil {
			t.Fatalf("AddLoginAttempt failed: %v", err)
		}
	}
	if err := tr.Check(ctx, "alice@example.com", "10.0.0.1"); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}

	mr.FastForward(15*time.Minute + time.Second)

	if err := tr.Check(ctx, "alice@example.com", "10.0.0.1"); err != nil {
		t.Fatalf("expected lockout to expire, got %v", err)
	}

	// Counter was reset when the lockout started, so one fresh failure must
	// not lock again immediately.
	if err := tr.AddLoginAttempt(ctx, "alice@example.com", "10.0.0.1"); err != nil {
		t.Fatalf("AddLoginAttempt after expiry failed: %v", err)
	}
	if err := tr.Check(ctx, "alice@example.com", "10.0.0.1"); err != nil {
		t.Fatalf("single attempt after expiry should not lock, got %v", err)
	}
}

func TestClearLoginAttempts(t *testing.T) {
	tr, _ := newTestTracker(t, Config{MaxAttempts: 3, AttemptWindow: time.Minute, LockoutWindow: 15 * time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := tr.AddLoginAttempt(ctx, "alice@example.com", "10.0.0.1"); err != nil {
			t.Fatalf("AddLoginAttempt failed: %v", err)
		}
	}
	if err := tr.ClearLoginAttempts(ctx, "alice@example.com", "10.0.0.1"); err != nil {
		t.Fatalf("ClearLoginAttempts failed: %v", err)
	}

	if err := tr.Check(ctx, "alice@example.com", "10.0.0.1"); err != nil {
		t.Fatalf("Check after clear failed: %v", err)
	}
	count, err := tr.GetLoginAttempts(ctx, "alice@example.com", "10.0.0.1")
	if err != nil {
		t.Fatalf("GetLoginAttempts failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected zero attempts after clear, got %d", count)
	}
}

func TestPairsAreIndependent(t *testing.T) {
	tr, _ := newTestTracker(t, Config{MaxAttempts: 2, AttemptWindow: time.Minute, LockoutWindow: 15 * time.Minute})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := tr.AddLoginAttempt(ctx, "alice@example.com", "10.0.0.1"); err != nil {
			t.Fatalf("AddLoginAttempt failed: %v", err)
		}
	}

	if err := tr.Check(ctx, "alice@example.com", "10.0.0.1"); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked for locked pair, got %v", err)
	}
	if err := tr.Check(ctx, "alice@example.com", "10.0.0.2"); err != nil {
		t.Fatalf("same login from another IP should pass, got %v", err)
	}
	if err := tr.Check(ctx, "bob@example.com", "10.0.0.1"); err != nil {
		t.Fatalf("another login from same IP should pass, got %v", err)
	}
}

func TestAttemptWindowRolls(t *testing.T) {
	tr, mr := newTestTracker(t, Config{MaxAttempts: 3, AttemptWindow: time.Minute, LockoutWindow: 15 * time.Minute})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := tr.AddLoginAttempt(ctx, "alice@example.com", "10.0.0.1"); err != nil {
			t.Fatalf("AddLoginAttempt failed: %v", err)
		}
	}

	mr.FastForward(time.Minute + time.Second)

	count, err := tr.GetLoginAttempts(ctx, "alice@example.com", "10.0.0.1")
	if err != nil {
		t.Fatalf("GetLoginAttempts failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected counter to expire with window, got %d", count)
	}
}
