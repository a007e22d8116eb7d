// Package cache provides an optional Redis-backed cache sitting in front of
// the Embedder, keyed by content hash, so that re-indexing identical bytes
// does not re-invoke the embedding model.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// EmbeddingCache stores embedding vectors keyed by the sha256 of their
// source content. A nil *EmbeddingCache is valid and behaves as "disabled".
type EmbeddingCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// Config configures the Redis connection backing the cache.
type Config struct {
	Enabled bool
	Addr    string
	Password string
	DB      int
	TTL     time.Duration
}

// New builds an EmbeddingCache when enabled; returns (nil, nil) when disabled
// so callers can treat a nil *EmbeddingCache as a pass-through no-op.
func New(cfg Config) (*EmbeddingCache, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &EmbeddingCache{client: client, ttl: ttl}, nil
}

func key(sha256Hex string) string {
	return "embedding:" + sha256Hex
}

// Get returns the cached vector for a content hash, or (nil, false) on a miss
// or when the cache is disabled (receiver is nil).
func (c *EmbeddingCache) Get(ctx context.Context, sha256Hex string) ([]float32, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key(sha256Hex)).Bytes()
	if err != nil {
		return nil, false
	}
	var vec []float32
	if err := json.Unmarshal(raw, &vec); err != nil {
		return nil, false
	}
	return vec, true
}

// Set stores a vector for a content hash. A no-op when the cache is disabled.
func (c *EmbeddingCache) Set(ctx context.Context, sha256Hex string, vec []float32) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(vec)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key(sha256Hex), raw, c.ttl).Err()
}
