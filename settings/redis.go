package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable indicates the settings backend is unreachable.
var ErrUnavailable = errors.New("settings backend unavailable")

// RedisStore persists settings in a single Redis hash.
type RedisStore struct {
	redis redis.UniversalClient
	key   string
}

// NewRedisStore creates a [RedisStore] under the given hash key.
// An empty key defaults to "user_settings".
func NewRedisStore(redisClient redis.UniversalClient, key string) *RedisStore {
	if key == "" {
		key = "user_settings"
	}
	return &RedisStore{redis: redisClient, key: key}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.redis.HGet(ctx, s.key, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.redis.HSet(ctx, s.key, key, value).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
