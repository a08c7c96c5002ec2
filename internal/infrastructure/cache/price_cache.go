// Package cache holds the price snapshot cache and the crypto quote challenge store.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	goredis "github.com/redis/go-redis/v9"
	"propdesk.backend/internal/domain/entities"
)

const priceSnapshotKey = "prices:snapshot"

// MemoryPriceCache keeps the last snapshot in process memory.
type MemoryPriceCache struct {
	mu   sync.RWMutex
	snap *entities.PriceSnapshot
}

// NewMemoryPriceCache creates an empty in-memory price cache.
func NewMemoryPriceCache() *MemoryPriceCache {
	return &MemoryPriceCache{}
}

// Get returns the cached snapshot and whether one exists.
func (c *MemoryPriceCache) Get(_ context.Context) (entities.PriceSnapshot, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return entities.PriceSnapshot{}, false, nil
	}
	return *c.snap, true, nil
}

// Set replaces the cached snapshot.
func (c *MemoryPriceCache) Set(_ context.Context, snap entities.PriceSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = &snap
	return nil
}

// RedisPriceCache shares the snapshot across instances.
// The key has no expiry so an old snapshot stays available as stale data.
type RedisPriceCache struct {
	client *goredis.Client
}

// NewRedisPriceCache creates a redis-backed price cache.
func NewRedisPriceCache(client *goredis.Client) *RedisPriceCache {
	return &RedisPriceCache{client: client}
}

// Get returns the cached snapshot and whether one exists.
func (c *RedisPriceCache) Get(ctx context.Context) (entities.PriceSnapshot, bool, error) {
	raw, err := c.client.Get(ctx, priceSnapshotKey).Bytes()
	if err == goredis.Nil {
		return entities.PriceSnapshot{}, false, nil
	}
	if err != nil {
		return entities.PriceSnapshot{}, false, err
	}
	var snap entities.PriceSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return entities.PriceSnapshot{}, false, fmt.Errorf("corrupt price snapshot: %w", err)
	}
	return snap, true, nil
}

// Set replaces the cached snapshot.
func (c *RedisPriceCache) Set(ctx context.Context, snap entities.PriceSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, priceSnapshotKey, raw, 0).Err()
}
