// Copyright 2025 A2A Registry
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache key space:
//   agent:<agent_id> -> serialized RegistryEntry
//   agents:list      -> sentinel marker, deleted (never read) on every write
const (
	cacheKeyPrefix = "agent:"
	cacheKeyList   = "agents:list"
)

// DefaultCacheTTL is the fixed time-to-live for cached entries.
const DefaultCacheTTL = time.Hour

// EntryCache is a fixed-TTL Redis mirror of individual registry entries.
//
// It is not authoritative: on any disagreement with the store, the store
// wins. Invalidation is single-key delete-on-write; there is no
// pattern-based invalidation, so any derived view beyond the list marker
// would go stale silently.
type EntryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewEntryCache creates a cache mirror over an existing Redis client.
// A zero ttl falls back to DefaultCacheTTL.
func NewEntryCache(client *redis.Client, ttl time.Duration) *EntryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &EntryCache{client: client, ttl: ttl}
}

// NewEntryCacheFromURL connects a new Redis client from a redis:// URL
// and verifies it with a ping.
func NewEntryCacheFromURL(ctx context.Context, redisURL string, ttl time.Duration) (*EntryCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewEntryCache(client, ttl), nil
}

// Get returns the cached entry for agentID, or (nil, nil) on a miss.
func (c *EntryCache) Get(ctx context.Context, agentID string) (*RegistryEntry, error) {
	val, err := c.client.Get(ctx, cacheKeyPrefix+agentID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get failed: %w", err)
	}

	var entry RegistryEntry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		// A corrupt record is treated as a miss; the store repopulates it.
		return nil, nil
	}
	return &entry, nil
}

// Set stores the entry under agent:<agent_id> with the fixed TTL.
func (c *EntryCache) Set(ctx context.Context, entry *RegistryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to serialize entry: %w", err)
	}

	if err := c.client.Set(ctx, cacheKeyPrefix+entry.AgentID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}
	return nil
}

// Delete removes the cached record for agentID.
func (c *EntryCache) Delete(ctx context.Context, agentID string) error {
	if err := c.client.Del(ctx, cacheKeyPrefix+agentID).Err(); err != nil {
		return fmt.Errorf("cache delete failed: %w", err)
	}
	return nil
}

// InvalidateList deletes the list-view marker. Callers holding a cached
// list view must recompute it once the marker is gone.
func (c *EntryCache) InvalidateList(ctx context.Context) error {
	if err := c.client.Del(ctx, cacheKeyList).Err(); err != nil {
		return fmt.Errorf("cache delete failed: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (c *EntryCache) Close() error {
	return c.client.Close()
}
