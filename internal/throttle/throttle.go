package throttle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrLocked indicates the (login, IP) pair is inside an active lockout window.
	ErrLocked = errors.New("login throttled")
	// ErrUnavailable indicates the throttle backend is unreachable.
	ErrUnavailable = errors.New("throttle backend unavailable")
)

// Config holds throttle tuning parameters.
type Config struct {
	MaxAttempts   int
	AttemptWindow time.Duration // rolling window for counting failures
	LockoutWindow time.Duration // suspension length once MaxAttempts is reached
	KeyPrefix     string
}

// Tracker records failed login attempts per (login identifier, source address)
// pair using Redis counters and decides lockout. Pairs are independent; there
// is no global lockout.
type Tracker struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a [Tracker] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Tracker {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "th"
	}
	return &Tracker{
		redis:  redisClient,
		config: cfg,
	}
}

func (t *Tracker) attemptKey(login, ip string) string {
	return t.config.KeyPrefix + ":a:" + login + ":" + ip
}

func (t *Tracker) lockoutKey(login, ip string) string {
	return t.config.KeyPrefix + ":l:" + login + ":" + ip
}

// Check fails with [ErrLocked] while the pair's lockout window is active.
// It performs no writes, so a locked-out caller costs one Redis read.
func (t *Tracker) Check(ctx context.Context, login, ip string) error {
	locked, err := t.redis.Exists(ctx, t.lockoutKey(login, ip)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if locked > 0 {
		return ErrLocked
	}
	return nil
}

// AddLoginAttempt increments the failure counter for the pair. Reaching
// MaxAttempts starts a lockout window and resets the counter, so attempts
// after the window expires start from zero.
func (t *Tracker) AddLoginAttempt(ctx context.Context, login, ip string) error {
	key := t.attemptKey(login, ip)

	count, err := t.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// Rolling-window semantics: set TTL only for the first hit in the window.
	if count == 1 && t.config.AttemptWindow > 0 {
		if err := t.redis.Expire(ctx, key, t.config.AttemptWindow).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	if count < int64(t.config.MaxAttempts) {
		return nil
	}

	if err := t.redis.Set(ctx, t.lockoutKey(login, ip), "1", t.config.LockoutWindow).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := t.redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// ClearLoginAttempts resets the counter and any lockout for the pair
// unconditionally. Called after successful authentication.
func (t *Tracker) ClearLoginAttempts(ctx context.Context, login, ip string) error {
	if err := t.redis.Del(ctx, t.attemptKey(login, ip), t.lockoutKey(login, ip)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// GetLoginAttempts returns the current failure counter for the pair.
// Missing keys return zero and do not reveal account existence.
func (t *Tracker) GetLoginAttempts(ctx context.Context, login, ip string) (int, error) {
	count, err := t.redis.Get(ctx, t.attemptKey(login, ip)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}
