package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Factory = (*prometheusFactory)(nil)

type prometheusFactory struct {
	registry *prometheus.Registry
	http     *httpMetrics
	store    *storeMetrics
}

func NewFactory() Factory {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &prometheusFactory{
		registry: registry,
		http:     newHTTPMetrics(registry),
		store:    newStoreMetrics(registry),
	}
}

func (f *prometheusFactory) HTTP() HTTP {
	return f.http
}

func (f *prometheusFactory) Store() Store {
	return f.store
}

func (f *prometheusFactory) Handler() http.Handler {
	return promhttp.HandlerFor(f.registry, promhttp.HandlerOpts{Registry: f.registry})
}

var _ HTTP = (*httpMetrics)(nil)

type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newHTTPMetrics(registry prometheus.Registerer) *httpMetrics {
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by method, route and status class",
		},
		[]string{"method", "route", "status"},
	)

	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		},
		[]string{"method", "route", "status"},
	)

	registry.MustRegister(requests, duration)

	return &httpMetrics{requests: requests, duration: duration}
}

func (m *httpMetrics) Request(method, route string, status int, duration time.Duration) {
	class := statusClass(status)
	m.requests.WithLabelValues(method, route, class).Inc()
	m.duration.WithLabelValues(method, route, class).Observe(duration.Seconds())
}

var _ Store = (*storeMetrics)(nil)

type storeMetrics struct {
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

func newStoreMetrics(registry prometheus.Registerer) *storeMetrics {
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Duration of course store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	failures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operation_failures_total",
			Help: "Total number of failed course store operations",
		},
		[]string{"operation"},
	)

	registry.MustRegister(duration, failures)

	return &storeMetrics{duration: duration, failures: failures}
}

func (m *storeMetrics) Observe(op string, duration time.Duration, err error) {
	m.duration.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		m.failures.WithLabelValues(op).Inc()
	}
}
