package movies

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// listCachePrefix is the Redis key prefix for cached listing results.
const listCachePrefix = "movies:list:"

// listCacheTTL bounds how stale a cached listing can get. Catalog writes
// also invalidate eagerly; the TTL is the backstop.
const listCacheTTL = 5 * time.Minute

// ListingCache caches catalog listing results in Redis, keyed by filter.
// The listing endpoints are the read-heaviest surface of the API and
// their results change only on seeding, so a short cache absorbs most of
// the traffic before it reaches MariaDB.
//
// Cache failures are never surfaced to callers: a broken cache degrades
// to hitting the database, nothing more.
type ListingCache struct {
	redis *redis.Client
}

// NewListingCache creates a listing cache on the given Redis client.
func NewListingCache(rdb *redis.Client) *ListingCache {
	return &ListingCache{redis: rdb}
}

// Get returns the cached listing for the filter, or ok=false on a miss.
func (c *ListingCache) Get(ctx context.Context, filter ListFilter) ([]Movie, bool) {
	data, err := c.redis.Get(ctx, cacheKey(filter)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("listing cache read failed", slog.Any("error", err))
		return nil, false
	}

	var result []Movie
	if err := json.Unmarshal(data, &result); err != nil {
		slog.Warn("listing cache decode failed", slog.Any("error", err))
		return nil, false
	}

	return result, true
}

// Set stores a listing result for the filter.
func (c *ListingCache) Set(ctx context.Context, filter ListFilter, result []Movie) {
	data, err := json.Marshal(result)
	if err != nil {
		slog.Warn("listing cache encode failed", slog.Any("error", err))
		return
	}

	if err := c.redis.Set(ctx, cacheKey(filter), data, listCacheTTL).Err(); err != nil {
		slog.Warn("listing cache write failed", slog.Any("error", err))
	}
}

// Invalidate drops every cached listing. Called after catalog writes.
func (c *ListingCache) Invalidate(ctx context.Context) {
	iter := c.redis.Scan(ctx, 0, listCachePrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.Warn("listing cache scan failed", slog.Any("error", err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("listing cache invalidation failed", slog.Any("error", err))
	}
}

// cacheKey derives a stable Redis key from the filter fields.
func cacheKey(filter ListFilter) string {
	featured := "any"
	if filter.Featured != nil {
		featured = strconv.FormatBool(*filter.Featured)
	}
	return fmt.Sprintf("%sg=%s;d=%s;f=%s;l=%d;o=%d",
		listCachePrefix, filter.Genre, filter.Director, featured, filter.Limit, filter.Offset)
}
