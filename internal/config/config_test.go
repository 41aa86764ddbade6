package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"SHARD_SOURCE", "SHARD_WINDOW_DAYS", "SHARDS_PER_DAY", "SHARD_FETCH_CONCURRENCY",
		"SEARCH_TIMEOUT_SECONDS", "SHARD_BREAKER_ENABLED", "API_RATE_LIMIT_RPS", "NATS_URL", "POSTGRES_DSN",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.ShardSource != ShardSourceFS {
		t.Fatalf("expected default shard source fs, got %q", cfg.ShardSource)
	}
	if cfg.ShardWindowDays != 60 || cfg.ShardsPerDay != 5 {
		t.Fatalf("expected 60 days x 5 shards, got %d x %d", cfg.ShardWindowDays, cfg.ShardsPerDay)
	}
	if cfg.ShardFetchConcurrency != 32 {
		t.Fatalf("expected default concurrency 32, got %d", cfg.ShardFetchConcurrency)
	}
	if cfg.SearchTimeoutSeconds != 10 {
		t.Fatalf("expected default search timeout 10, got %d", cfg.SearchTimeoutSeconds)
	}
	if !cfg.ShardBreakerEnabled {
		t.Fatalf("expected breaker enabled by default")
	}
	if cfg.APIRateLimitRPS != 0 {
		t.Fatalf("expected rate limiting off by default, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.NATSURL != "" || cfg.PostgresDSN != "" {
		t.Fatalf("expected optional backends off, got nats=%q postgres=%q", cfg.NATSURL, cfg.PostgresDSN)
	}
	if cfg.NATSShardsSubject != "shards.published" || cfg.NATSSearchSubject != "search.executed" {
		t.Fatalf("unexpected default subjects: %q %q", cfg.NATSShardsSubject, cfg.NATSSearchSubject)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("SHARD_SOURCE", "HTTP")
	t.Setenv("CONTENT_BASE_URL", "https://techpulse.example")
	t.Setenv("SHARD_WINDOW_DAYS", "7")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("SHARD_BREAKER_ENABLED", "false")

	cfg := Load()
	if cfg.ShardSource != ShardSourceHTTP {
		t.Fatalf("expected lower-cased shard source http, got %q", cfg.ShardSource)
	}
	if cfg.ContentBaseURL != "https://techpulse.example" {
		t.Fatalf("expected base url override, got %q", cfg.ContentBaseURL)
	}
	if cfg.ShardWindowDays != 7 {
		t.Fatalf("expected window 7, got %d", cfg.ShardWindowDays)
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rps 2.5, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.ShardBreakerEnabled {
		t.Fatalf("expected breaker disabled")
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("SHARDS_PER_DAY", "five")
	t.Setenv("API_RATE_LIMIT_RPS", "fast")
	t.Setenv("SHARD_BREAKER_ENABLED", "maybe")

	cfg := Load()
	if cfg.ShardsPerDay != 5 {
		t.Fatalf("expected fallback 5, got %d", cfg.ShardsPerDay)
	}
	if cfg.APIRateLimitRPS != 0 {
		t.Fatalf("expected fallback rps 0, got %v", cfg.APIRateLimitRPS)
	}
	if !cfg.ShardBreakerEnabled {
		t.Fatalf("expected fallback breaker true")
	}
}
