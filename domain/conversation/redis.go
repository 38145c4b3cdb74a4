package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces conversation keys in Redis.
const DefaultKeyPrefix = "todofrog:conversation:"

// RedisStore keeps conversation states in Redis so they survive restarts
// and are shared between replicas. A non-zero ttl expires abandoned
// dialogues back to idle.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a store over an existing client.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Get returns the user's state, idle when the key is missing.
func (s *RedisStore) Get(ctx context.Context, userID int64) (State, error) {
	value, err := s.client.Get(ctx, s.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return StateIdle, nil
		}
		return StateIdle, fmt.Errorf("conversation get error: %w", err)
	}
	return ParseState(value)
}

// Set stores the user's state; idle deletes the key.
func (s *RedisStore) Set(ctx context.Context, userID int64, state State) error {
	if state == StateIdle {
		if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
			return fmt.Errorf("conversation delete error: %w", err)
		}
		return nil
	}
	if err := s.client.Set(ctx, s.key(userID), string(state), s.ttl).Err(); err != nil {
		return fmt.Errorf("conversation set error: %w", err)
	}
	return nil
}

// Ping checks if the Redis connection is healthy.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(userID int64) string {
	return s.prefix + strconv.FormatInt(userID, 10)
}
