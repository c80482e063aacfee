package refdata

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// snapshotCacheKey stores the most recently loaded snapshot so restarts and
// worker refreshes can share one copy.
const snapshotCacheKey = "shipcalc:refdata:snapshot"

// Cache wraps Redis helpers for snapshot JSON payloads.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// GetSnapshot fetches the cached snapshot. It reports whether the key existed.
func (c *Cache) GetSnapshot(ctx context.Context) (*Snapshot, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	data, err := c.client.Get(ctx, snapshotCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false, err
	}
	return &snap, true, nil
}

// SetSnapshot serialises the snapshot and stores it with the configured TTL.
func (c *Cache) SetSnapshot(ctx context.Context, snap *Snapshot) error {
	if c == nil || c.client == nil || snap == nil {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, snapshotCacheKey, data, c.ttl).Err()
}
