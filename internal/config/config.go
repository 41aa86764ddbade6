package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	ShardSourceFS       = "fs"
	ShardSourceHTTP     = "http"
	ShardSourcePostgres = "postgres"
)

type Config struct {
	APIPort  string
	LogLevel string

	APIMaxConns           int
	APIRateLimitRPS       float64
	APIRateLimitBurst     int
	APIMaxInFlight        int
	APIBackpressureWaitMS int
	AdminAPIKey           string

	ShardSource              string
	ContentDir               string
	ContentBaseURL           string
	ShardWindowDays          int
	ShardsPerDay             int
	ShardFetchConcurrency    int
	ShardFetchTimeoutSeconds int
	ShardRetryMaxAttempts    int
	ShardBreakerEnabled      bool

	SearchTimeoutSeconds int
	SearchDefaultLimit   int

	PostgresDSN string

	NATSURL           string
	NATSShardsSubject string
	NATSSearchSubject string

	WorkerMetricsPort string
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		APIMaxConns:           mustEnvInt("API_MAX_CONNS", 512),
		APIRateLimitRPS:       mustEnvFloat("API_RATE_LIMIT_RPS", 0),
		APIRateLimitBurst:     mustEnvInt("API_RATE_LIMIT_BURST", 20),
		APIMaxInFlight:        mustEnvInt("API_MAX_IN_FLIGHT", 64),
		APIBackpressureWaitMS: mustEnvInt("API_BACKPRESSURE_WAIT_MS", 250),
		AdminAPIKey:           mustEnv("ADMIN_API_KEY", ""),

		ShardSource:              strings.ToLower(mustEnv("SHARD_SOURCE", ShardSourceFS)),
		ContentDir:               mustEnv("CONTENT_DIR", "./content"),
		ContentBaseURL:           mustEnv("CONTENT_BASE_URL", ""),
		ShardWindowDays:          mustEnvInt("SHARD_WINDOW_DAYS", 60),
		ShardsPerDay:             mustEnvInt("SHARDS_PER_DAY", 5),
		ShardFetchConcurrency:    mustEnvInt("SHARD_FETCH_CONCURRENCY", 32),
		ShardFetchTimeoutSeconds: mustEnvInt("SHARD_FETCH_TIMEOUT_SECONDS", 5),
		ShardRetryMaxAttempts:    mustEnvInt("SHARD_RETRY_MAX_ATTEMPTS", 1),
		ShardBreakerEnabled:      mustEnvBool("SHARD_BREAKER_ENABLED", true),

		SearchTimeoutSeconds: mustEnvInt("SEARCH_TIMEOUT_SECONDS", 10),
		SearchDefaultLimit:   mustEnvInt("SEARCH_DEFAULT_LIMIT", 0),

		PostgresDSN: mustEnv("POSTGRES_DSN", ""),

		NATSURL:           mustEnv("NATS_URL", ""),
		NATSShardsSubject: mustEnv("NATS_SHARDS_SUBJECT", "shards.published"),
		NATSSearchSubject: mustEnv("NATS_SEARCH_SUBJECT", "search.executed"),

		WorkerMetricsPort: mustEnv("WORKER_METRICS_PORT", "9090"),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
