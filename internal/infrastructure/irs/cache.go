package irs

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/gnavadev/fraud-watch/internal/domain/port"
)

const cacheKeyPrefix = "fraudwatch:irs:"

// CachedLookup memoizes registry answers in Redis. Misses are cached too, so
// a holder absent from the registry is not searched again until the entry
// expires. Lookup errors are never cached.
type CachedLookup struct {
	next   port.NonprofitLookup
	rdb    redis.UniversalClient
	logger *slog.Logger
	ttl    time.Duration
}

// NewCachedLookup wraps next with a Redis cache.
func NewCachedLookup(next port.NonprofitLookup, rdb redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *CachedLookup {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedLookup{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

// Lookup serves name from the cache, falling back to the wrapped lookup. A
// Redis failure degrades to an uncached lookup.
func (c *CachedLookup) Lookup(ctx context.Context, name string) (port.NonprofitMatch, error) {
	key := cacheKey(name)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var match port.NonprofitMatch
		if err := json.Unmarshal(raw, &match); err == nil {
			return match, nil
		}
		c.logger.Warn("discarding corrupt irs cache entry", "key", key)
	case err != redis.Nil:
		c.logger.Warn("irs cache read failed", "key", key, "error", err)
	}

	match, err := c.next.Lookup(ctx, name)
	if err != nil {
		return port.NonprofitMatch{}, err
	}

	payload, err := json.Marshal(match)
	if err == nil {
		err = c.rdb.Set(ctx, key, payload, c.ttl).Err()
	}
	if err != nil {
		c.logger.Warn("irs cache write failed", "key", key, "error", err)
	}
	return match, nil
}

func cacheKey(name string) string {
	return cacheKeyPrefix + strings.ToLower(strings.Join(strings.Fields(name), " "))
}
