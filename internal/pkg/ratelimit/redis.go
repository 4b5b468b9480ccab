package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrWithTTL increments a counter and attaches the TTL only on creation.
// INCR and PEXPIRE run in one script so concurrent callers cannot observe a
// counter without an expiry or reset one that already has it.
var incrWithTTL = redis.NewScript(`
local value = redis.call("INCR", KEYS[1])
if value == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return value
`)

// Redis is a Store implementation backed by a shared Redis cluster.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a Redis-backed rate-limit store.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{
		client: client,
		prefix: "ratelimit:",
	}
}

// SetFlagNX sets a flag only when absent and reports whether this call set it.
func (s *Redis) SetFlagNX(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, s.prefix+key, "1", ttl).Result()
}

// HasFlag reports whether the flag currently exists.
func (s *Redis) HasFlag(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+key).Result()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// Increment atomically increments a counter with TTL-on-create.
func (s *Redis) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return incrWithTTL.Run(ctx, s.client, []string{s.prefix + key}, ttl.Milliseconds()).Int64()
}

// Count returns the current counter value, or 0 when absent.
func (s *Redis) Count(ctx context.Context, key string) (int64, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return value, nil
}

// Delete removes the given keys.
func (s *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	fks := make([]string, 0, len(keys))
	for _, key := range keys {
		fks = append(fks, s.prefix+key)
	}

	return s.client.Del(ctx, fks...).Err()
}
