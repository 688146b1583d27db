package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"govlink/internal/registry"
)

// RedisCache decorates a Provider with a checksum-keyed chunk cache. Cache
// failures are logged and bypassed; the cache never turns a readable corpus
// into an error.
type RedisCache struct {
	inner  Provider
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// RedisCacheOption configures a RedisCache.
type RedisCacheOption func(*RedisCache)

// WithLogger sets a logger for cache bypass reporting.
func WithLogger(logger *slog.Logger) RedisCacheOption {
	return func(c *RedisCache) {
		c.logger = logger
	}
}

// WithTTL overrides the default cache entry lifetime.
func WithTTL(ttl time.Duration) RedisCacheOption {
	return func(c *RedisCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewRedisCache wraps inner with a Redis chunk cache.
func NewRedisCache(inner Provider, client *redis.Client, opts ...RedisCacheOption) *RedisCache {
	c := &RedisCache{
		inner:  inner,
		client: client,
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisCache) Chunks(ctx context.Context, doc *registry.Document) ([]Chunk, error) {
	key := cacheKey(doc)

	if key != "" {
		raw, err := c.client.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var chunks []Chunk
			if jsonErr := json.Unmarshal(raw, &chunks); jsonErr == nil {
				return chunks, nil
			}
			// Corrupt entries fall through to a fresh fetch.
		case !errors.Is(err, redis.Nil):
			c.log(ctx, "corpus cache read bypassed", doc, err)
		}
	}

	chunks, err := c.inner.Chunks(ctx, doc)
	if err != nil {
		return nil, err
	}

	if key != "" {
		if raw, jsonErr := json.Marshal(chunks); jsonErr == nil {
			if setErr := c.client.Set(ctx, key, raw, c.ttl).Err(); setErr != nil {
				c.log(ctx, "corpus cache write bypassed", doc, setErr)
			}
		}
	}
	return chunks, nil
}

func (c *RedisCache) log(ctx context.Context, msg string, doc *registry.Document, err error) {
	if c.logger != nil {
		c.logger.WarnContext(ctx, msg, "document_id", doc.ID.String(), "error", err)
	}
}

// cacheKey keys entries by content checksum so edits invalidate naturally.
// Documents without a checksum are not cached.
func cacheKey(doc *registry.Document) string {
	if doc.Checksum == "" {
		return ""
	}
	return fmt.Sprintf("govlink:corpus:%s", doc.Checksum)
}
