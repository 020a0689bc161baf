package storage

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tourscan/internal/models"
)

// DiscoveryCache keeps recent discovery results in Redis so repeated
// identical queries skip the database. A nil cache is valid and means
// caching is disabled; every method is nil-safe.
type DiscoveryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDiscoveryCache wires a Redis client for discovery results.
func NewDiscoveryCache(addr, password string, db int, ttl time.Duration) *DiscoveryCache {
	if addr == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	return &DiscoveryCache{client: client, ttl: ttl}
}

// CacheKey derives a stable key from discovery criteria.
func CacheKey(criteria models.DiscoveryCriteria) string {
	payload, _ := json.Marshal(criteria)
	sum := sha1.Sum(payload)
	return "discover:" + hex.EncodeToString(sum[:])
}

// Get returns cached tours for the key, or (nil, false) on miss or any
// Redis failure.
func (c *DiscoveryCache) Get(ctx context.Context, key string) ([]models.Tour, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}
	var tours []models.Tour
	if err := json.Unmarshal([]byte(raw), &tours); err != nil {
		return nil, false
	}
	return tours, true
}

// Set stores tours under the key; failures are swallowed, caching is
// best-effort.
func (c *DiscoveryCache) Set(ctx context.Context, key string, tours []models.Tour) {
	if c == nil {
		return
	}
	payload, err := json.Marshal(tours)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, payload, c.ttl).Err()
}

// Ping verifies the Redis connection.
func (c *DiscoveryCache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *DiscoveryCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
