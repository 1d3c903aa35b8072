package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/learnhub/course-marketplace/internal/core/domain"
)

const catalogKey = "catalog:courses"

// CatalogCache is a read-through cache for the public course catalog, backed
// by a single Redis key holding the JSON-encoded course list. Admin writes
// invalidate it; the TTL bounds staleness when invalidation is missed.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache creates a CatalogCache wrapping the given Redis client.
func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CatalogCache{client: client, ttl: ttl}
}

// Get returns the cached catalog, or nil on a miss.
func (c *CatalogCache) Get(ctx context.Context) ([]*domain.Course, error) {
	raw, err := c.client.Get(ctx, catalogKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("catalog cache get: %w", err)
	}

	var courses []*domain.Course
	if err := json.Unmarshal(raw, &courses); err != nil {
		return nil, fmt.Errorf("catalog cache decode: %w", err)
	}
	return courses, nil
}

// Set stores the catalog with the configured TTL.
func (c *CatalogCache) Set(ctx context.Context, courses []*domain.Course) error {
	raw, err := json.Marshal(courses)
	if err != nil {
		return fmt.Errorf("catalog cache encode: %w", err)
	}
	return c.client.Set(ctx, catalogKey, raw, c.ttl).Err()
}

// Invalidate drops the cached catalog.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, catalogKey).Err()
}
