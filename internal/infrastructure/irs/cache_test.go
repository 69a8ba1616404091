package irs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnavadev/fraud-watch/internal/domain/port"
	"github.com/gnavadev/fraud-watch/internal/infrastructure/irs"
)

type countingLookup struct {
	match port.NonprofitMatch
	err   error
	calls int
}

func (l *countingLookup) Lookup(_ context.Context, _ string) (port.NonprofitMatch, error) {
	l.calls++
	return l.match, l.err
}

func setupCache(t *testing.T, next port.NonprofitLookup) (*miniredis.Miniredis, *irs.CachedLookup) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, irs.NewCachedLookup(next, rdb, time.Hour, nil)
}

func TestCachedLookup_ServesRepeatsFromCache(t *testing.T) {
	revenue := decimal.NewFromInt(650_000)
	next := &countingLookup{match: port.NonprofitMatch{Found: true, EIN: "411234567", Name: "SHELL HOLDINGS", Revenue: &revenue}}
	mr, cache := setupCache(t, next)
	ctx := context.Background()

	first, err := cache.Lookup(ctx, "Shell Holdings Inc")
	require.NoError(t, err)
	second, err := cache.Lookup(ctx, "  shell   holdings INC ")
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, first.EIN, second.EIN)
	require.NotNil(t, second.Revenue)
	assert.True(t, revenue.Equal(*second.Revenue))

	const key = "fraudwatch:irs:shell holdings inc"
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))
}

func TestCachedLookup_CachesMisses(t *testing.T) {
	next := &countingLookup{}
	_, cache := setupCache(t, next)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		match, err := cache.Lookup(ctx, "Northside Kids LLC")
		require.NoError(t, err)
		assert.False(t, match.Found)
	}
	assert.Equal(t, 1, next.calls)
}

func TestCachedLookup_ErrorsAreNotCached(t *testing.T) {
	next := &countingLookup{err: errors.New("registry down")}
	_, cache := setupCache(t, next)
	ctx := context.Background()

	_, err := cache.Lookup(ctx, "Shell Holdings Inc")
	assert.Error(t, err)
	_, err = cache.Lookup(ctx, "Shell Holdings Inc")
	assert.Error(t, err)

	assert.Equal(t, 2, next.calls)
}

func TestCachedLookup_RedisUnavailable(t *testing.T) {
	next := &countingLookup{match: port.NonprofitMatch{Found: true, EIN: "1"}}
	mr, cache := setupCache(t, next)
	mr.Close()

	match, err := cache.Lookup(context.Background(), "Shell Holdings Inc")

	require.NoError(t, err)
	assert.True(t, match.Found)
	assert.Equal(t, 1, next.calls)
}

func TestCachedLookup_CorruptEntry(t *testing.T) {
	next := &countingLookup{match: port.NonprofitMatch{Found: true, EIN: "1"}}
	mr, cache := setupCache(t, next)
	require.NoError(t, mr.Set("fraudwatch:irs:shell holdings inc", "{not json"))

	match, err := cache.Lookup(context.Background(), "Shell Holdings Inc")

	require.NoError(t, err)
	assert.Equal(t, "1", match.EIN)
	assert.Equal(t, 1, next.calls)
}
