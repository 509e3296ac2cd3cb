package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/priceworks/carprice/pkg/logging"
)

// RateLimiter applies a fixed-window per-client request budget backed
// by Redis. Like the prediction cache, it is best-effort: a limiter
// backend failure never rejects a request.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	logger zerolog.Logger
}

// NewRateLimiter creates a limiter allowing limit requests per window.
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
		logger: logging.NewLogger("ratelimit"),
	}
}

// Allow reports whether the client identified by key is within budget.
func (r *RateLimiter) Allow(ctx context.Context, key string) bool {
	redisKey := "ratelimit:" + key

	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		r.logger.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
		return true
	}
	if count == 1 {
		if err := r.client.Expire(ctx, redisKey, r.window).Err(); err != nil {
			r.logger.Warn().Err(err).Msg("rate limiter expire failed")
		}
	}
	return count <= int64(r.limit)
}

// Middleware enforces the limit per client IP.
func (r *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !r.Allow(c.Context(), c.IP()) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		}
		return c.Next()
	}
}
