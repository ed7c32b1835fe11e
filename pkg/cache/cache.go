// Package cache provides the Redis-backed cache of rendered reports used by
// the serving surface. The engine itself stays cache-free apart from its
// per-pass resolution context; this cache only short-circuits identical
// HTTP render requests.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/finstmt/fsg/pkg/observability"
	"github.com/finstmt/fsg/pkg/report"
)

// ErrAddressRequired is returned when the cache is enabled without a Redis
// address
var ErrAddressRequired = errors.New("cache redis address is required")

// Config holds rendered-report cache configuration
type Config struct {
	Enabled bool          `yaml:"enabled" default:"false"`
	Address string        `yaml:"address"`
	Prefix  string        `yaml:"prefix" default:"fsg"`
	TTL     time.Duration `yaml:"ttl" default:"10m"`
}

// Validate checks the cache configuration
func (c *Config) Validate() error {
	if c.Enabled && c.Address == "" {
		return ErrAddressRequired
	}
	return nil
}

// Cache stores rendered reports in Redis keyed by report id, dataset
// fingerprint and window parameters.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New creates a cache against a Redis client
func New(client *redis.Client, cfg *Config) *Cache {
	return &Cache{client: client, prefix: cfg.Prefix, ttl: cfg.TTL}
}

// Key builds the cache key for one render request
func (c *Cache) Key(reportID, fingerprint, window string) string {
	return fmt.Sprintf("%s:rendered:%s:%s:%s", c.prefix, reportID, fingerprint, window)
}

// Get returns the cached rendered report, or nil on a miss
func (c *Cache) Get(ctx context.Context, key string) (*report.Rendered, error) {
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			observability.CacheRequests.WithLabelValues("miss").Inc()
			return nil, nil
		}
		observability.CacheRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("cache get failed: %w", err)
	}

	var rendered report.Rendered
	if err := json.Unmarshal([]byte(data), &rendered); err != nil {
		observability.CacheRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("cache entry decode failed: %w", err)
	}

	observability.CacheRequests.WithLabelValues("hit").Inc()
	return &rendered, nil
}

// Set stores a rendered report under a key with the configured TTL
func (c *Cache) Set(ctx context.Context, key string, rendered *report.Rendered) error {
	data, err := json.Marshal(rendered)
	if err != nil {
		return fmt.Errorf("cache entry encode failed: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}
	return nil
}

// Invalidate removes one cached report
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
