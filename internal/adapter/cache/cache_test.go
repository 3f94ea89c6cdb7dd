package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rediscache "github.com/raxzrrr/mockinvi/internal/adapter/cache"
	"github.com/raxzrrr/mockinvi/internal/domain"
)

func newTestCache(t *testing.T) (*rediscache.Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rediscache.New(rdb), mr
}

func TestGetOrCompute_ComputesOnceThenHits(t *testing.T) {
	t.Parallel()
	c, _ := newTestCache(t)
	ctx := context.Background()

	computes := 0
	compute := func(domain.Context) (string, error) {
		computes++
		return "value-1", nil
	}

	v, err := c.GetOrCompute(ctx, "k", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, "value-1", v)

	v, err = c.GetOrCompute(ctx, "k", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, "value-1", v)
	assert.Equal(t, 1, computes)
}

func TestGetOrCompute_TTLExpiry(t *testing.T) {
	t.Parallel()
	c, mr := newTestCache(t)
	ctx := context.Background()

	computes := 0
	compute := func(domain.Context) (string, error) {
		computes++
		return "v", nil
	}
	_, err := c.GetOrCompute(ctx, "k", time.Minute, compute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = c.GetOrCompute(ctx, "k", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, computes)
}

func TestGetOrCompute_ComputeErrorNotCached(t *testing.T) {
	t.Parallel()
	c, _ := newTestCache(t)
	ctx := context.Background()

	boom := errors.New("boom")
	_, err := c.GetOrCompute(ctx, "k", time.Minute, func(domain.Context) (string, error) { return "", boom })
	require.ErrorIs(t, err, boom)

	v, err := c.GetOrCompute(ctx, "k", time.Minute, func(domain.Context) (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestGetOrCompute_RedisDownDegradesToCompute(t *testing.T) {
	t.Parallel()
	c, mr := newTestCache(t)
	mr.Close()

	v, err := c.GetOrCompute(context.Background(), "k", time.Minute, func(domain.Context) (string, error) { return "direct", nil })
	require.NoError(t, err)
	assert.Equal(t, "direct", v)
}

func TestInvalidate_ExactKey(t *testing.T) {
	t.Parallel()
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, err := c.GetOrCompute(ctx, "settings:k", time.Minute, func(domain.Context) (string, error) { return "v1", nil })
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, "settings:k"))

	v, err := c.GetOrCompute(ctx, "settings:k", time.Minute, func(domain.Context) (string, error) { return "v2", nil })
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
}

func TestInvalidate_PrefixPattern(t *testing.T) {
	t.Parallel()
	c, mr := newTestCache(t)
	ctx := context.Background()

	for _, k := range []string{"catalog:courses", "catalog:featured", "settings:key"} {
		_, err := c.GetOrCompute(ctx, k, time.Minute, func(domain.Context) (string, error) { return "v", nil })
		require.NoError(t, err)
	}
	require.NoError(t, c.Invalidate(ctx, "catalog:*"))

	assert.False(t, mr.Exists("catalog:courses"))
	assert.False(t, mr.Exists("catalog:featured"))
	assert.True(t, mr.Exists("settings:key"))
}
