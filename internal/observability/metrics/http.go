package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JCZoom/techpulse-blog/internal/core/domain"
)

const namespace = "techpulse"

// HTTPServerMetrics instruments the API process: HTTP traffic plus the
// search and corpus callbacks of ports.SearchObserver.
type HTTPServerMetrics struct {
	registry *prometheus.Registry
	service  string
	routes   map[string]struct{}

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	searchTotal    *prometheus.CounterVec
	searchResults  *prometheus.HistogramVec
	searchDuration *prometheus.HistogramVec
	shardFetches   *prometheus.CounterVec
	corpusArticles prometheus.Gauge
	corpusShards   prometheus.Gauge
	corpusLoadTime prometheus.Histogram
	breakerState   *prometheus.GaugeVec
	reloadTotal    *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "in_flight_requests",
			Help:        "Number of in-flight HTTP requests.",
			ConstLabels: constLabels,
		},
	)
	searchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "search",
			Name:        "requests_total",
			Help:        "Completed searches by sort mode and result state.",
			ConstLabels: constLabels,
		},
		[]string{"sort", "state"},
	)
	searchResults := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "search",
			Name:        "results",
			Help:        "Distribution of matched articles per search.",
			Buckets:     []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
			ConstLabels: constLabels,
		},
		[]string{"sort"},
	)
	searchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "search",
			Name:        "duration_seconds",
			Help:        "Parse, match, score and sort time per search.",
			Buckets:     []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			ConstLabels: constLabels,
		},
		[]string{"sort"},
	)
	shardFetches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "corpus",
			Name:        "shard_fetches_total",
			Help:        "Shard fetch attempts by outcome.",
			ConstLabels: constLabels,
		},
		[]string{"outcome"},
	)
	corpusArticles := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "corpus",
			Name:        "articles",
			Help:        "Articles in the most recently loaded corpus.",
			ConstLabels: constLabels,
		},
	)
	corpusShards := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "corpus",
			Name:        "shards",
			Help:        "Shards contributing to the most recently loaded corpus.",
			ConstLabels: constLabels,
		},
	)
	corpusLoadTime := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "corpus",
			Name:        "load_duration_seconds",
			Help:        "Wall time of a full corpus load.",
			Buckets:     []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			ConstLabels: constLabels,
		},
	)
	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "resilience",
			Name:        "breaker_state",
			Help:        "Circuit breaker state per operation (0 closed, 1 half-open, 2 open).",
			ConstLabels: constLabels,
		},
		[]string{"operation"},
	)

	reloadTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "corpus",
			Name:        "reloads_total",
			Help:        "Explicit corpus reloads by trigger and status.",
			ConstLabels: constLabels,
		},
		[]string{"trigger", "status"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		searchTotal,
		searchResults,
		searchDuration,
		shardFetches,
		corpusArticles,
		corpusShards,
		corpusLoadTime,
		breakerState,
		reloadTotal,
	)

	return &HTTPServerMetrics{
		registry:        registry,
		service:         service,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,
		searchTotal:     searchTotal,
		searchResults:   searchResults,
		searchDuration:  searchDuration,
		shardFetches:    shardFetches,
		corpusArticles:  corpusArticles,
		corpusShards:    corpusShards,
		corpusLoadTime:  corpusLoadTime,
		breakerState:    breakerState,
		reloadTotal:     reloadTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// SetRoutes limits the path label to the given routes; any other path is
// reported as "unmatched".
func (m *HTTPServerMetrics) SetRoutes(paths ...string) {
	routes := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		routes[p] = struct{}{}
	}
	m.routes = routes
}

func (m *HTTPServerMetrics) normalizePath(path string) string {
	if m.routes == nil {
		return path
	}
	if _, ok := m.routes[path]; ok {
		return path
	}
	return "unmatched"
}

func (m *HTTPServerMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		path := m.normalizePath(r.URL.Path)
		m.requestTotal.WithLabelValues(
			m.service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(m.service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func (m *HTTPServerMetrics) ObserveShardFetch(outcome string) {
	m.shardFetches.WithLabelValues(outcome).Inc()
}

func (m *HTTPServerMetrics) ObserveCorpus(stats domain.LoadStats) {
	m.corpusArticles.Set(float64(stats.Articles))
	m.corpusShards.Set(float64(stats.Shards))
	m.corpusLoadTime.Observe(stats.Duration.Seconds())
}

func (m *HTTPServerMetrics) ObserveSearch(resp *domain.SearchResponse) {
	if resp == nil {
		return
	}
	sort := string(resp.Sort)
	m.searchTotal.WithLabelValues(sort, string(resp.State)).Inc()
	m.searchResults.WithLabelValues(sort).Observe(float64(resp.Count))
	m.searchDuration.WithLabelValues(sort).Observe(resp.Elapsed.Seconds())
}

// ObserveBreakerState records a breaker transition; state is the
// gobreaker state name.
func (m *HTTPServerMetrics) ObserveBreakerState(operation, state string) {
	value := 0.0
	switch state {
	case "half-open":
		value = 1
	case "open":
		value = 2
	}
	m.breakerState.WithLabelValues(operation).Set(value)
}

// ObserveReload counts a reload triggered over trigger ("http" or "nats").
func (m *HTTPServerMetrics) ObserveReload(trigger string, err error) {
	m.reloadTotal.WithLabelValues(trigger, statusOf(err)).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
