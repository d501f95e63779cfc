package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const defaultCachePrefix = "kasir:catalog:"

// Cache wraps Redis helpers for JSON payloads.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// GetJSON unmarshals a cached JSON payload into dst. It reports whether the key existed.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	if c == nil || c.client == nil || key == "" {
		return false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON serialises v as JSON and stores it with the configured TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	if c == nil || c.client == nil || key == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Cached is a read-through Redis cache in front of another catalog. Misses are
// not cached so newly registered codes become visible immediately.
type Cached struct {
	Next   Catalog
	Cache  *Cache
	Prefix string
	Logger *zerolog.Logger
}

// Lookup implements Catalog. Cache failures degrade to the underlying catalog.
func (c Cached) Lookup(ctx context.Context, code string) (Product, error) {
	if c.Next == nil {
		return Product{}, errors.New("catalog: cached lookup has no backing catalog")
	}
	key := c.key(code)
	var p Product
	hit, err := c.Cache.GetJSON(ctx, key, &p)
	if err != nil {
		c.warn(err, code, "catalog cache read")
	}
	if hit {
		return p, nil
	}
	p, err = c.Next.Lookup(ctx, code)
	if err != nil {
		return Product{}, err
	}
	if err := c.Cache.SetJSON(ctx, key, p); err != nil {
		c.warn(err, code, "catalog cache write")
	}
	return p, nil
}

// List implements Lister when the backing catalog does.
func (c Cached) List(ctx context.Context) ([]Entry, error) {
	lister, ok := c.Next.(Lister)
	if !ok {
		return nil, errors.New("catalog: listing not supported")
	}
	return lister.List(ctx)
}

func (c Cached) key(code string) string {
	prefix := c.Prefix
	if prefix == "" {
		prefix = defaultCachePrefix
	}
	return prefix + code
}

func (c Cached) warn(err error, code, msg string) {
	if c.Logger == nil {
		return
	}
	c.Logger.Warn().Err(err).Str("code", code).Msg(msg)
}
