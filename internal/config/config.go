// Package config loads process configuration from the environment,
// with an optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the serving process configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port string

	// MetricsPort is the Prometheus listener port.
	MetricsPort string

	// RedisAddr is the cache backend address (host:port).
	RedisAddr string

	// RedisPassword is optional; empty disables auth.
	RedisPassword string

	// ModelPath is the trained artifact location, loaded at startup.
	ModelPath string

	// APIKey is the expected api-key header value.
	APIKey string

	// APIToken is the expected token header value.
	APIToken string

	// CacheTTL bounds cached prediction lifetime. 0 stores without
	// expiry (safe: cache keys are scoped to the artifact run).
	CacheTTL time.Duration

	// RateLimit is the per-client request budget per minute. 0 disables
	// rate limiting.
	RateLimit int

	// LogLevel is the minimum log level (debug|info|warn|error).
	LogLevel string

	// LogPretty enables human-readable console logs.
	LogPretty bool
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:          getEnv("PORT", "8080"),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		ModelPath:     getEnv("MODEL_PATH", "models/artifact.json"),
		APIKey:        getEnv("API_KEY", ""),
		APIToken:      getEnv("API_TOKEN", ""),
		CacheTTL:      getDuration("CACHE_TTL", 0),
		RateLimit:     getInt("RATE_LIMIT", 0),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogPretty:     getEnv("LOG_PRETTY", "") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
