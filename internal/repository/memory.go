package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryOccupancyCache keeps the latest occupancy snapshot in process
// memory with a TTL. Fallback for when redis is unavailable.
type MemoryOccupancyCache struct {
	mu        sync.RWMutex
	counts    map[string]int
	expiresAt time.Time
	ttl       time.Duration
}

func NewMemoryOccupancyCache(ttl time.Duration) *MemoryOccupancyCache {
	return &MemoryOccupancyCache{ttl: ttl}
}

func (c *MemoryOccupancyCache) GetCounts(ctx context.Context) (map[string]int, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.counts == nil || time.Now().After(c.expiresAt) {
		return nil, false, nil
	}
	out := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out, true, nil
}

func (c *MemoryOccupancyCache) SetCounts(ctx context.Context, counts map[string]int) error {
	copied := make(map[string]int, len(counts))
	for k, v := range counts {
		copied[k] = v
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts = copied
	c.expiresAt = time.Now().Add(c.ttl)
	return nil
}

func (c *MemoryOccupancyCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts = nil
	return nil
}
