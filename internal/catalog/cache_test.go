package catalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kasir-scan/internal/catalog"
)

type countingCatalog struct {
	inner catalog.Catalog
	calls int
}

func (c *countingCatalog) Lookup(ctx context.Context, code string) (catalog.Product, error) {
	c.calls++
	return c.inner.Lookup(ctx, code)
}

func TestCachedLookupReadsThrough(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	backing := &countingCatalog{inner: catalog.Default()}
	cached := catalog.Cached{Next: backing, Cache: catalog.NewCache(client, time.Minute)}
	ctx := context.Background()

	first, err := cached.Lookup(ctx, "8905631870560")
	require.NoError(t, err)
	second, err := cached.Lookup(ctx, "8905631870560")
	require.NoError(t, err)

	require.Equal(t, 1, backing.calls)
	require.Equal(t, first.Title, second.Title)
	require.True(t, second.UnitPrice.Equal(decimal.NewFromInt(799)))
	require.True(t, mr.Exists("kasir:catalog:8905631870560"))

	mr.FastForward(2 * time.Minute)
	_, err = cached.Lookup(ctx, "8905631870560")
	require.NoError(t, err)
	require.Equal(t, 2, backing.calls)
}

func TestCachedLookupDoesNotCacheMisses(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	backing := &countingCatalog{inner: catalog.Default()}
	cached := catalog.Cached{Next: backing, Cache: catalog.NewCache(client, time.Minute), Prefix: "test:"}

	for i := 0; i < 2; i++ {
		_, err := cached.Lookup(context.Background(), "000000")
		require.True(t, errors.Is(err, catalog.ErrNotFound))
	}
	require.Equal(t, 2, backing.calls)
	require.False(t, mr.Exists("test:000000"))
}

func TestCachedLookupSurvivesRedisOutage(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	cached := catalog.Cached{Next: catalog.Default(), Cache: catalog.NewCache(client, time.Minute)}
	p, err := cached.Lookup(context.Background(), "101883388759")
	require.NoError(t, err)
	require.Equal(t, "Technosports Kitchenware", p.Title)
}

func TestNilCacheIsPassThrough(t *testing.T) {
	cached := catalog.Cached{Next: catalog.Default()}
	_, err := cached.Lookup(context.Background(), "8905639127604")
	require.NoError(t, err)
}
