// Package cache provides the Redis-backed prediction cache. Caching is
// an optimization, never a correctness dependency: callers treat every
// error from this package as a cache miss.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidRecord indicates the stored value could not be decoded
	// as a prediction record.
	ErrInvalidRecord = errors.New("invalid cache record")
)

// PredictionRecord is the cache value: one computed price keyed by a
// feature-vector fingerprint.
type PredictionRecord struct {
	// Price is the predicted price in monetary units (inverse transform
	// already applied).
	Price float64 `json:"price"`

	// ComputedAt is when the live inference ran.
	ComputedAt time.Time `json:"computed_at"`
}

// Client handles prediction caching with a Redis backend.
type Client struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewClient creates a cache client. ttl of 0 stores entries without
// expiry; retrain invalidation does not depend on it because cache
// keys embed the artifact run ID.
func NewClient(redisClient *redis.Client, ttl time.Duration) *Client {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Client{
		redis: redisClient,
		ttl:   ttl,
	}
}

// Get retrieves a prediction record by key. Returns ErrCacheMiss if the
// key doesn't exist. Stored values are decoded with a strict
// schema-bound parser; anything malformed is ErrInvalidRecord.
func (c *Client) Get(ctx context.Context, key string) (*PredictionRecord, error) {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var rec PredictionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	CacheHits.WithLabelValues("redis").Inc()
	return &rec, nil
}

// Set stores a prediction record under key.
func (c *Client) Set(ctx context.Context, key string, rec *PredictionRecord) error {
	if rec == nil {
		return fmt.Errorf("prediction record cannot be nil")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal prediction record: %w", err)
	}

	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Delete removes a cached prediction.
func (c *Client) Delete(ctx context.Context, key string) error {
	if err := c.redis.Del(ctx, key).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
