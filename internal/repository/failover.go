package repository

import (
	"context"
	"sync/atomic"
	"time"

	"couchage/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverOccupancyCache serves from the primary (redis) cache until it
// errors, then falls back to memory and retries the primary after a
// minute. lastFailure is UnixNano so concurrent request goroutines can
// update it without a lock.
type FailoverOccupancyCache struct {
	primary     domain.OccupancyCache
	fallback    domain.OccupancyCache
	logger      *zerolog.Logger
	isDown      atomic.Bool
	lastFailure atomic.Int64
}

func NewFailoverOccupancyCache(primary, fallback domain.OccupancyCache, logger *zerolog.Logger) *FailoverOccupancyCache {
	return &FailoverOccupancyCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (c *FailoverOccupancyCache) markDown(err error) {
	c.logger.Error().Err(err).Msg("Primary occupancy cache failed, falling back to memory")
	c.isDown.Store(true)
	c.lastFailure.Store(time.Now().UnixNano())
}

func (c *FailoverOccupancyCache) retryWindowPassed() bool {
	return time.Since(time.Unix(0, c.lastFailure.Load())) > time.Minute
}

func (c *FailoverOccupancyCache) GetCounts(ctx context.Context) (map[string]int, bool, error) {
	if !c.isDown.Load() {
		counts, ok, err := c.primary.GetCounts(ctx)
		if err == nil {
			return counts, ok, nil
		}
		c.markDown(err)
	}

	// Try to recover after 1 minute
	if c.retryWindowPassed() {
		counts, ok, err := c.primary.GetCounts(ctx)
		if err == nil {
			c.isDown.Store(false)
			return counts, ok, nil
		}
		c.lastFailure.Store(time.Now().UnixNano())
	}

	return c.fallback.GetCounts(ctx)
}

func (c *FailoverOccupancyCache) SetCounts(ctx context.Context, counts map[string]int) error {
	if !c.isDown.Load() {
		err := c.primary.SetCounts(ctx, counts)
		if err == nil {
			return c.fallback.SetCounts(ctx, counts)
		}
		c.markDown(err)
	}

	return c.fallback.SetCounts(ctx, counts)
}

func (c *FailoverOccupancyCache) Invalidate(ctx context.Context) error {
	if !c.isDown.Load() {
		if err := c.primary.Invalidate(ctx); err != nil {
			c.markDown(err)
		}
	}

	// Both sides must drop the snapshot so a stale primary cannot
	// resurface after recovery.
	return c.fallback.Invalidate(ctx)
}
