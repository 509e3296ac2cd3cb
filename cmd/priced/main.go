// Command priced serves vehicle resale price predictions over HTTP.
//
// Startup order matters: the trained artifact must load before any
// listener starts. Artifact load failure is fatal; an unreachable
// cache backend is not (the service degrades to live inference).
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/priceworks/carprice/internal/config"
	"github.com/priceworks/carprice/internal/server"
	"github.com/priceworks/carprice/pkg/cache"
	"github.com/priceworks/carprice/pkg/logging"
	"github.com/priceworks/carprice/pkg/model"
	"github.com/priceworks/carprice/pkg/predict"
)

func main() {
	cfg := config.Load()

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
	})
	logger := logging.NewLogger("priced")

	// The service cannot serve without the artifact.
	artifact, err := model.Load(cfg.ModelPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.ModelPath).Msg("failed to load trained artifact")
	}
	logger.Info().
		Str("run_id", artifact.RunID).
		Time("trained_at", artifact.TrainedAt).
		Msg("artifact loaded")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// Best-effort: the cache layer degrades to misses.
		logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, serving without cache hits")
	} else {
		logger.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")
	}
	cancel()

	cacheClient := cache.NewClient(redisClient, cfg.CacheTTL)

	service, err := predict.NewService(artifact, cacheClient, artifact.RunID)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create prediction service")
	}

	opts := server.Options{
		APIKey: cfg.APIKey,
		Tokens: server.StaticTokenValidator{Token: cfg.APIToken},
	}
	if cfg.RateLimit > 0 {
		opts.Limiter = server.NewRateLimiter(redisClient, cfg.RateLimit, time.Minute)
	}

	app := server.New(service, opts)

	go serveMetrics(cfg.MetricsPort)

	logger.Info().Str("port", cfg.Port).Msg("starting prediction server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

// serveMetrics exposes Prometheus metrics on a side listener.
func serveMetrics(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Error().Err(err).Msg("metrics listener failed")
	}
}

