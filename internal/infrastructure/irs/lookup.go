package irs

import (
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/gnavadev/fraud-watch/internal/domain/port"
)

// LookupConfig configures the registry lookup chain.
type LookupConfig struct {
	Client    ClientConfig
	RedisAddr string
	CacheTTL  time.Duration
}

// NewLookup builds the registry client, wrapped in a Redis cache when
// RedisAddr is set. The returned close func releases the Redis connection
// and is never nil.
func NewLookup(cfg LookupConfig, logger *slog.Logger) (port.NonprofitLookup, func() error) {
	client := NewClient(cfg.Client, logger)
	if cfg.RedisAddr == "" {
		return client, func() error { return nil }
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return NewCachedLookup(client, rdb, cfg.CacheTTL, logger), rdb.Close
}
