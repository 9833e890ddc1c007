package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCounterWindow(t *testing.T) {
	c := NewMemoryCounter()
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := c.Incr(ctx, "k1", 100*time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// Keys are independent
	got, err := c.Incr(ctx, "k2", 100*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)

	// A fresh window starts once the old one lapses
	time.Sleep(120 * time.Millisecond)
	got, err = c.Incr(ctx, "k1", 100*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestRedisCounterWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCounter(client)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := c.Incr(ctx, "login:1.2.3.4", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// TTL set on the first hit only
	assert.Greater(t, mr.TTL("ratelimit:login:1.2.3.4"), time.Duration(0))

	mr.FastForward(2 * time.Minute)
	got, err := c.Incr(ctx, "login:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}
