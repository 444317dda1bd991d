package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"couchage/internal/config"

	"github.com/redis/go-redis/v9"
)

const occupancyKey = "occupancy:counts"

type RedisOccupancyCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisOccupancyCache(client *redis.Client, ttl time.Duration) *RedisOccupancyCache {
	return &RedisOccupancyCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisOccupancyCache) GetCounts(ctx context.Context) (map[string]int, bool, error) {
	if c.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}
	val, err := c.client.Get(ctx, occupancyKey).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get occupancy from redis: %w", err)
	}

	var counts map[string]int
	if err := json.Unmarshal([]byte(val), &counts); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal occupancy: %w", err)
	}

	return counts, true, nil
}

func (c *RedisOccupancyCache) SetCounts(ctx context.Context, counts map[string]int) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("failed to marshal occupancy: %w", err)
	}

	if err := c.client.Set(ctx, occupancyKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set occupancy in redis: %w", err)
	}

	return nil
}

func (c *RedisOccupancyCache) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := c.client.Del(ctx, occupancyKey).Err(); err != nil {
		return fmt.Errorf("failed to delete occupancy from redis: %w", err)
	}
	return nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
