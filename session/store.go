package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrUnavailable indicates the session backend is unreachable.
	ErrUnavailable = errors.New("session backend unavailable")
	// ErrNotFound is returned when a session record does not exist or has expired.
	ErrNotFound = errors.New("session not found")
)

// Record is a persisted login session.
type Record struct {
	SessionID string `json:"sid"`
	UserID    string `json:"uid"`
	Email     string `json:"email,omitempty"`
	Remember  bool   `json:"remember,omitempty"`
	CreatedAt int64  `json:"created_at"`
	ExpiresAt int64  `json:"expires_at"`
}

// Store persists session records in Redis. Each record lives under its own
// key with a TTL, and a per-user index set supports bulk eviction.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a session [Store]. An empty prefix defaults to "us".
func NewStore(redisClient redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "us"
	}
	return &Store{redis: redisClient, prefix: prefix}
}

func (s *Store) sessionKey(sessionID string) string {
	return s.prefix + ":s:" + sessionID
}

func (s *Store) userKey(userID string) string {
	return s.prefix + ":u:" + userID
}

// Save writes the record and registers it in the user index. The index TTL
// is raised to at least the record TTL so it covers the user's
// longest-lived session.
func (s *Store) Save(ctx context.Context, rec *Record, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.sessionKey(rec.SessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := s.redis.SAdd(ctx, s.userKey(rec.UserID), rec.SessionID).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// The index must outlive its longest session: only extend the TTL,
	// never shorten it, or a short login after a remember-me login would
	// leave the long session untracked once the index expires.
	current, err := s.redis.TTL(ctx, s.userKey(rec.UserID)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if current < ttl {
		if err := s.redis.Expire(ctx, s.userKey(rec.UserID), ttl).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return nil
}

// Get fetches a record by session ID. Missing or expired records return
// [ErrNotFound].
func (s *Store) Get(ctx context.Context, sessionID string) (*Record, error) {
	data, err := s.redis.Get(ctx, s.sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: corrupt session record", ErrNotFound)
	}
	return &rec, nil
}

// Delete removes one session and its index entry. Deleting an absent
// session is a no-op.
func (s *Store) Delete(ctx context.Context, userID, sessionID string) error {
	if err := s.redis.Del(ctx, s.sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := s.redis.SRem(ctx, s.userKey(userID), sessionID).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// DeleteAllForUser evicts every session of the user and returns how many
// records were removed. Used for single-session enforcement.
func (s *Store) DeleteAllForUser(ctx context.Context, userID string) (int, error) {
	ids, err := s.redis.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	removed := 0
	for _, id := range ids {
		n, err := s.redis.Del(ctx, s.sessionKey(id)).Result()
		if err != nil {
			return removed, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		removed += int(n)
	}

	if err := s.redis.Del(ctx, s.userKey(userID)).Err(); err != nil {
		return removed, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return removed, nil
}
