package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics covers the search.executed consumer.
type WorkerMetrics struct {
	registry *prometheus.Registry

	processed *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	inFlight  prometheus.Gauge
	queueLag  prometheus.Histogram
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	labels := prometheus.Labels{"service": service}

	return &WorkerMetrics{
		registry: registry,
		processed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "worker",
			Name:        "search_event_process_total",
			Help:        "Search events handled, by status.",
			ConstLabels: labels,
		}, []string{"status"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "worker",
			Name:        "search_event_process_duration_seconds",
			Help:        "Time spent recording one search event.",
			Buckets:     []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			ConstLabels: labels,
		}, []string{"status"}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "worker",
			Name:        "search_event_process_in_flight",
			Help:        "Search events currently being recorded.",
			ConstLabels: labels,
		}),
		queueLag: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "worker",
			Name:        "queue_lag_seconds",
			Help:        "Delay between a search running and its event being picked up.",
			Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30, 60, 300},
			ConstLabels: labels,
		}),
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) Registry() *prometheus.Registry { return m.registry }

func (m *WorkerMetrics) StartEvent() { m.inFlight.Inc() }

func (m *WorkerMetrics) FinishEvent(took time.Duration, err error) {
	m.inFlight.Dec()
	status := statusOf(err)
	m.processed.WithLabelValues(status).Inc()
	m.latency.WithLabelValues(status).Observe(took.Seconds())
}

// ObserveQueueLag ignores negative lag from skewed publisher clocks.
func (m *WorkerMetrics) ObserveQueueLag(lag time.Duration) {
	if lag >= 0 {
		m.queueLag.Observe(lag.Seconds())
	}
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
