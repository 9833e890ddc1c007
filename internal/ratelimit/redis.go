package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounter backs the Counter contract with Redis so rate-limit windows
// survive restarts and are shared across instances.
type RedisCounter struct {
	client *redis.Client
	prefix string
}

// NewRedisCounter creates a Redis-backed counter
func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client, prefix: "ratelimit:"}
}

func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	k := c.prefix + key
	count, err := c.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		// First hit in this window - set the TTL
		if err := c.client.Expire(ctx, k, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}
