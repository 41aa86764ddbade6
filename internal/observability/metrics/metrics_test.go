package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/JCZoom/techpulse-blog/internal/core/domain"
	"github.com/JCZoom/techpulse-blog/internal/core/ports"
)

var _ ports.SearchObserver = (*HTTPServerMetrics)(nil)

func TestHTTPMiddlewareRecordsStatus(t *testing.T) {
	m := NewHTTPServerMetrics("api")
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/search", nil))

	got := testutil.ToFloat64(m.requestTotal.WithLabelValues("api", http.MethodGet, "/v1/search", "418"))
	if got != 1 {
		t.Fatalf("expected one recorded request, got %v", got)
	}
	if v := testutil.ToFloat64(m.requestInFlight); v != 0 {
		t.Fatalf("expected in-flight gauge back to 0, got %v", v)
	}
}

func TestSearchObserverCallbacks(t *testing.T) {
	m := NewHTTPServerMetrics("api")

	m.ObserveShardFetch(ports.ShardOutcomeLoaded)
	m.ObserveShardFetch(ports.ShardOutcomeMissing)
	m.ObserveShardFetch(ports.ShardOutcomeMissing)
	m.ObserveCorpus(domain.LoadStats{Attempted: 300, Shards: 12, Articles: 97, Duration: 200 * time.Millisecond})
	m.ObserveSearch(&domain.SearchResponse{Sort: domain.SortDate, State: domain.StateNoMatches, Elapsed: time.Millisecond})
	m.ObserveSearch(nil)

	if v := testutil.ToFloat64(m.shardFetches.WithLabelValues(ports.ShardOutcomeMissing)); v != 2 {
		t.Fatalf("expected 2 missing shards, got %v", v)
	}
	if v := testutil.ToFloat64(m.corpusArticles); v != 97 {
		t.Fatalf("expected 97 corpus articles, got %v", v)
	}
	if v := testutil.ToFloat64(m.searchTotal.WithLabelValues("date", "no_matches")); v != 1 {
		t.Fatalf("expected one date/no_matches search, got %v", v)
	}
}

func TestObserveReload(t *testing.T) {
	m := NewHTTPServerMetrics("api")
	m.ObserveReload("nats", nil)
	m.ObserveReload("http", errors.New("timeout"))
	if v := testutil.ToFloat64(m.reloadTotal.WithLabelValues("http", "error")); v != 1 {
		t.Fatalf("expected one failed http reload, got %v", v)
	}
}

func TestBreakerStateGauge(t *testing.T) {
	m := NewHTTPServerMetrics("api")
	m.ObserveBreakerState("shard_fetch", "open")
	if v := testutil.ToFloat64(m.breakerState.WithLabelValues("shard_fetch")); v != 2 {
		t.Fatalf("expected open state 2, got %v", v)
	}
	m.ObserveBreakerState("shard_fetch", "closed")
	if v := testutil.ToFloat64(m.breakerState.WithLabelValues("shard_fetch")); v != 0 {
		t.Fatalf("expected closed state 0, got %v", v)
	}
}

func TestWorkerMetricsExposition(t *testing.T) {
	m := NewWorkerMetrics("worker")
	m.StartEvent()
	m.FinishEvent(5*time.Millisecond, nil)
	m.StartEvent()
	m.FinishEvent(time.Millisecond, errors.New("db down"))
	m.ObserveQueueLag(-time.Second)
	m.ObserveQueueLag(time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	for _, want := range []string{
		`techpulse_worker_search_event_process_total{service="worker",status="error"} 1`,
		`techpulse_worker_search_event_process_total{service="worker",status="success"} 1`,
		`techpulse_worker_queue_lag_seconds_count{service="worker"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected exposition to contain %q", want)
		}
	}
}

func TestHTTPMiddlewareNormalizesUnknownPaths(t *testing.T) {
	m := NewHTTPServerMetrics("api")
	m.SetRoutes("/v1/search")
	handler := m.Middleware(http.NotFoundHandler())

	for _, path := range []string{"/v1/search", "/wp-admin", "/v1/../etc"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if v := testutil.ToFloat64(m.requestTotal.WithLabelValues("api", http.MethodGet, "unmatched", "404")); v != 2 {
		t.Fatalf("expected 2 unmatched requests, got %v", v)
	}
	if v := testutil.ToFloat64(m.requestTotal.WithLabelValues("api", http.MethodGet, "/v1/search", "404")); v != 1 {
		t.Fatalf("expected 1 search request, got %v", v)
	}
}
