package utils

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"org-registry-backend/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// QueryCache is a redis-backed cache for query results, keyed by a hash of
// the query shape. It keeps hit/miss counters and can log cache statistics on
// every lookup when enabled (toggleable at runtime from the admin surface).
type QueryCache struct {
	rdb *redis.Client

	hits       atomic.Int64
	misses     atomic.Int64
	statsLog   atomic.Bool
	defaultTTL time.Duration
}

func NewQueryCache(rdb *redis.Client) *QueryCache {
	c := &QueryCache{rdb: rdb, defaultTTL: 5 * time.Minute}
	c.statsLog.Store(true)
	return c
}

// GenerateQueryHash builds a deterministic cache key for a filtered listing.
// Filter keys are sorted so equivalent queries share a key.
func GenerateQueryHash(resourceType string, filters map[string]string, page, pageSize int) string {
	query := fmt.Sprintf("resource=%s&page=%d&page_size=%d", resourceType, page, pageSize)

	keys := make([]string, 0, len(filters))
	for key := range filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		query += fmt.Sprintf("&%s=%s", key, filters[key])
	}

	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("%s:%s", resourceType, hex.EncodeToString(sum[:]))
}

// Get returns the cached payload and whether it was present, updating the
// hit/miss counters.
func (c *QueryCache) Get(ctx context.Context, key string) (string, bool) {
	payload, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		c.misses.Add(1)
		c.maybeLogStats(key, false)
		return "", false
	}
	c.hits.Add(1)
	c.maybeLogStats(key, true)
	return payload, true
}

func (c *QueryCache) Set(ctx context.Context, key string, payload string) error {
	return c.rdb.Set(ctx, key, payload, c.defaultTTL).Err()
}

// Invalidate removes every cached key for the given resource type.
func (c *QueryCache) Invalidate(ctx context.Context, resourceType string) error {
	pattern := fmt.Sprintf("%s:*", resourceType)
	iter := c.rdb.Scan(ctx, 0, pattern, 0).Iterator()

	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete key %s: %v", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("error during SCAN iteration: %v", err)
	}
	return nil
}

// InvalidateAsync invalidates the cache for a resource type without blocking
// the caller.
func (c *QueryCache) InvalidateAsync(resourceType string) {
	go func() {
		if err := c.Invalidate(context.Background(), resourceType); err != nil {
			config.Logger.Warn("Cache invalidation failed",
				zap.String("resource_type", resourceType),
				zap.Error(err))
		}
	}()
}

// Stats returns the cumulative hit and miss counts.
func (c *QueryCache) Stats() (hits int64, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// SetStatsLogging toggles per-lookup cache statistics logging.
func (c *QueryCache) SetStatsLogging(enabled bool) {
	c.statsLog.Store(enabled)
}

func (c *QueryCache) StatsLoggingEnabled() bool {
	return c.statsLog.Load()
}

func (c *QueryCache) maybeLogStats(key string, hit bool) {
	if !c.statsLog.Load() {
		return
	}
	config.Logger.Info("Query cache lookup",
		zap.String("key", key),
		zap.Bool("hit", hit),
		zap.Int64("total_hits", c.hits.Load()),
		zap.Int64("total_misses", c.misses.Load()))
}
