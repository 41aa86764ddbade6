package httpsource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JCZoom/techpulse-blog/internal/core/domain"
	"github.com/JCZoom/techpulse-blog/internal/infrastructure/resilience"
)

func TestFetchDecodesShard(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/content/daily/2025-11-27_2.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"date":"2025-11-27","date_display":"November 27, 2025","articles":[{"title":"AI agents rise","category":"AI","source":"TechPulse","published":"2025-11-27T00:00:00Z","score":8.2,"word_count":640}]}`))
	}))
	defer server.Close()

	source := New(server.URL+"/", time.Second, nil)
	shard, err := source.Fetch(context.Background(), domain.ShardKey{Date: "2025-11-27", Index: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shard.DateDisplay != "November 27, 2025" || len(shard.Articles) != 1 {
		t.Fatalf("unexpected shard: %+v", shard)
	}
	if a := shard.Articles[0]; a.Score != 8.2 || a.WordCount != 640 {
		t.Fatalf("unexpected article: %+v", a)
	}
}

func TestFetchMissingShard(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	exec := resilience.NewExecutor(resilience.Config{RetryMaxAttempts: 3, RetryInitialBackoff: time.Millisecond, BreakerEnabled: true, BreakerMinRequests: 1})
	source := New(server.URL, time.Second, exec)
	for i := 0; i < 3; i++ {
		_, err := source.Fetch(context.Background(), domain.ShardKey{Date: "2025-11-27"})
		if !domain.IsKind(err, domain.ErrShardNotFound) {
			t.Fatalf("expected shard not found, got %v", err)
		}
	}
	if calls.Load() != 3 {
		t.Fatalf("expected missing shards not to be retried or to trip the breaker, got %d calls", calls.Load())
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"date":"2025-11-27","articles":[]}`))
	}))
	defer server.Close()

	exec := resilience.NewExecutor(resilience.Config{RetryMaxAttempts: 2, RetryInitialBackoff: time.Millisecond, BreakerEnabled: false})
	source := New(server.URL, time.Second, exec)
	if _, err := source.Fetch(context.Background(), domain.ShardKey{Date: "2025-11-27"}); err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestFetchServerErrorIsTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "origin down", http.StatusBadGateway)
	}))
	defer server.Close()

	exec := resilience.NewExecutor(resilience.Config{RetryMaxAttempts: 1, BreakerEnabled: false})
	source := New(server.URL, time.Second, exec)
	_, err := source.Fetch(context.Background(), domain.ShardKey{Date: "2025-11-27"})
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}

func TestFetchMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	_, err := New(server.URL, time.Second, nil).Fetch(context.Background(), domain.ShardKey{Date: "2025-11-27"})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}
