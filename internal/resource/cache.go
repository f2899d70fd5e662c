package resource

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
)

// Entry is a cached value together with the moment it was fetched.
type Entry[T any] struct {
	Value     T         `json:"value"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Cache stores fetched entries. Implementations treat every error as a miss.
type Cache[T any] interface {
	Get(ctx context.Context, key string) (Entry[T], bool)
	Set(ctx context.Context, key string, entry Entry[T])
	Delete(ctx context.Context, key string)
}

// MemoryCache is a size bounded in-process cache whose entries expire after a TTL.
type MemoryCache[T any] struct {
	lru *expirable.LRU[string, Entry[T]]
}

// NewMemoryCache returns a MemoryCache holding at most size entries for ttl.
func NewMemoryCache[T any](size int, ttl time.Duration) *MemoryCache[T] {
	if size <= 0 {
		size = 256
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &MemoryCache[T]{lru: expirable.NewLRU[string, Entry[T]](size, nil, ttl)}
}

func (c *MemoryCache[T]) Get(_ context.Context, key string) (Entry[T], bool) {
	return c.lru.Get(key)
}

func (c *MemoryCache[T]) Set(_ context.Context, key string, entry Entry[T]) {
	c.lru.Add(key, entry)
}

func (c *MemoryCache[T]) Delete(_ context.Context, key string) {
	c.lru.Remove(key)
}

// Len reports the number of live entries.
func (c *MemoryCache[T]) Len() int {
	return c.lru.Len()
}

// RedisCache shares entries between dashboard instances through Redis.
// Unreachable servers and undecodable payloads degrade to cache misses.
type RedisCache[T any] struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCache stores entries under prefix with the given ttl.
func NewRedisCache[T any](client redis.Cmdable, prefix string, ttl time.Duration, logger *slog.Logger) *RedisCache[T] {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache[T]{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.With("component", "resource.redis"),
	}
}

func (c *RedisCache[T]) Get(ctx context.Context, key string) (Entry[T], bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "redis get failed", "key", key, "error", err)
		}
		return Entry[T]{}, false
	}
	var entry Entry[T]
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.WarnContext(ctx, "discarding undecodable cache entry", "key", key, "error", err)
		return Entry[T]{}, false
	}
	return entry, true
}

func (c *RedisCache[T]) Set(ctx context.Context, key string, entry Entry[T]) {
	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.WarnContext(ctx, "cache entry not encodable", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "redis set failed", "key", key, "error", err)
	}
}

func (c *RedisCache[T]) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		c.logger.WarnContext(ctx, "redis delete failed", "key", key, "error", err)
	}
}

// Key builds a cache key scoped to the caller. The token is reduced to a
// BLAKE2b fingerprint so it never appears in cache storage.
func Key(token string, parts ...string) string {
	sum := blake2b.Sum256([]byte(token))
	builder := strings.Builder{}
	builder.WriteString(hex.EncodeToString(sum[:8]))
	for _, part := range parts {
		builder.WriteString("|")
		builder.WriteString(part)
	}
	return builder.String()
}
