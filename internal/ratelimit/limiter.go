package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Counter is a keyed counter with a TTL window. The contract is deliberately
// small so it can be backed by a process-local map (single instance) or a
// shared store like Redis (multi-instance) without changing callers.
type Counter interface {
	// Incr increments the counter for key, starting a fresh window of the
	// given duration if none is active, and returns the new count.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

// MemoryCounter is the in-process Counter. Counters do not survive a
// restart, which is acceptable for single-instance operation.
type MemoryCounter struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

// NewMemoryCounter creates a process-local counter
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{entries: make(map[string]*memoryEntry)}
}

func (c *MemoryCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	e, ok := c.entries[key]
	if !ok || now.After(e.expiresAt) {
		e = &memoryEntry{expiresAt: now.Add(window)}
		c.entries[key] = e
	}
	e.count++

	// Opportunistic cleanup of dead windows
	if len(c.entries) > 1024 {
		for k, v := range c.entries {
			if now.After(v.expiresAt) {
				delete(c.entries, k)
			}
		}
	}

	return e.count, nil
}
