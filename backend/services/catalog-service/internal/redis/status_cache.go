package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"evcharge/backend/services/catalog-service/internal/models"
)

// StatusCache keeps the latest sync result per source so the admin status
// endpoint answers without a database round-trip.
type StatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatusCache returns redis-backed cache.
func NewStatusCache(client *redis.Client, ttl time.Duration) *StatusCache {
	return &StatusCache{client: client, ttl: ttl}
}

func (c *StatusCache) key(sourceID string) string {
	return fmt.Sprintf("catalog:sync:last:%s", sourceID)
}

// Save caches the latest result for its source.
func (c *StatusCache) Save(ctx context.Context, result models.SyncResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(result.SourceID), data, c.ttl).Err()
}

// Latest returns the cached result for one source, redis.Nil when absent.
func (c *StatusCache) Latest(ctx context.Context, sourceID string) (*models.SyncResult, error) {
	raw, err := c.client.Get(ctx, c.key(sourceID)).Result()
	if err != nil {
		return nil, err
	}
	var result models.SyncResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
