package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"barbuddy/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	SetVenuesTotal(count int)
	IncInteraction(kind, result string)
	SetSyncQueueDepth(depth int)
	ObserveSyncFlushDuration(duration time.Duration)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	venuesTotal         prometheus.Gauge
	interactionsTotal   *prometheus.CounterVec
	syncQueueDepth      prometheus.Gauge
	syncFlushDuration   prometheus.Histogram
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetVenuesTotal(count int) {
	m.venuesTotal.Set(float64(count))
}

func (m *MetricsProvider) IncInteraction(kind, result string) {
	m.interactionsTotal.WithLabelValues(kind, result).Inc()
}

func (m *MetricsProvider) SetSyncQueueDepth(depth int) {
	m.syncQueueDepth.Set(float64(depth))
}

func (m *MetricsProvider) ObserveSyncFlushDuration(duration time.Duration) {
	m.syncFlushDuration.Observe(duration.Seconds())
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "barbuddy_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "barbuddy_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "barbuddy_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "barbuddy_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "barbuddy_persistence_duration_seconds",
			Help:    "Ledger snapshot persistence duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		venuesTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "barbuddy_venues_total",
			Help: "Number of venue records in the ledger",
		}),

		interactionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "barbuddy_interactions_total",
			Help: "Interaction outcomes by kind and result",
		}, []string{"kind", "result"}),

		syncQueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "barbuddy_sync_queue_depth",
			Help: "Pending entries in the replication queue",
		}),

		syncFlushDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "barbuddy_sync_flush_duration_seconds",
			Help:    "Remote flush duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) SetVenuesTotal(_ int)                             {}
func (n *noopMetrics) IncInteraction(_, _ string)                       {}
func (n *noopMetrics) SetSyncQueueDepth(_ int)                          {}
func (n *noopMetrics) ObserveSyncFlushDuration(_ time.Duration)         {}
