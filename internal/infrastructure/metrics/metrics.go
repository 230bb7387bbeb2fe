package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "daybook"

// Metrics holds the Prometheus collectors shared by the cache, sync and
// loading layers. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	CacheRequests  *prometheus.CounterVec
	SyncOperations *prometheus.CounterVec
	RetryAttempts  *prometheus.CounterVec
	ReadFailures   *prometheus.CounterVec
	LoadDuration   prometheus.Histogram
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		CacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_requests_total",
				Help:      "Cache lookups by result (hit, miss, corrupt)",
			},
			[]string{"result"},
		),
		SyncOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_operations_total",
				Help:      "Remote write attempts by final sync status",
			},
			[]string{"status"},
		),
		RetryAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retry_attempts_total",
				Help:      "Retried load attempts by outcome",
			},
			[]string{"outcome"},
		),
		ReadFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "loader_read_failures_total",
				Help:      "Failed batch loader reads by group",
			},
			[]string{"group"},
		),
		LoadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "loader_duration_seconds",
				Help:      "Time to assemble a snapshot from the remote store",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	m.Registry.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.CacheRequests,
		m.SyncOperations,
		m.RetryAttempts,
		m.ReadFailures,
		m.LoadDuration,
	)
	return m
}

func (m *Metrics) CacheResult(result string) {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) SyncResult(status string) {
	if m == nil {
		return
	}
	m.SyncOperations.WithLabelValues(status).Inc()
}

func (m *Metrics) RetryResult(outcome string) {
	if m == nil {
		return
	}
	m.RetryAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ReadFailure(group string) {
	if m == nil {
		return
	}
	m.ReadFailures.WithLabelValues(group).Inc()
}

func (m *Metrics) ObserveLoad(d time.Duration) {
	if m == nil {
		return
	}
	m.LoadDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveHTTP(method, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, path, status).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(d.Seconds())
}
