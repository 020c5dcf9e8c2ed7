// Package redis caches computed dashboard statistics in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/diabetesguard/backend/internal/domain"
)

// DefaultKeyPrefix namespaces every key this package writes
const DefaultKeyPrefix = "diabetesguard:"

// NewClient creates a go-redis client
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// StatsCache implements domain.StatsCache
type StatsCache struct {
	client *redis.Client
	prefix string
}

// NewStatsCache creates a cache over client. An empty prefix uses DefaultKeyPrefix.
func NewStatsCache(client *redis.Client, prefix string) *StatsCache {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &StatsCache{client: client, prefix: prefix}
}

func (c *StatsCache) summaryKey() string {
	return c.prefix + "dashboard:summary"
}

// GetSummary returns ok=false when no summary is cached
func (c *StatsCache) GetSummary(ctx context.Context) (domain.DatasetSummary, bool, error) {
	var s domain.DatasetSummary

	data, err := c.client.Get(ctx, c.summaryKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return s, false, nil
	}
	if err != nil {
		return s, false, fmt.Errorf("redis: failed to get summary: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, false, fmt.Errorf("redis: failed to decode summary: %w", err)
	}
	return s, true, nil
}

// SetSummary stores the summary with ttl
func (c *StatsCache) SetSummary(ctx context.Context, s domain.DatasetSummary, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("redis: failed to encode summary: %w", err)
	}
	if err := c.client.Set(ctx, c.summaryKey(), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to set summary: %w", err)
	}
	return nil
}

// Health pings the server
func (c *StatsCache) Health(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: health check failed: %w", err)
	}
	return nil
}
