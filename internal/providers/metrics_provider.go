package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"ratingd/internal/structures"
	"time"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(operation string, duration time.Duration)
	IncRatingsAppended()
	IncArchives(file string, reason string)
	AddSkippedRows(source string, reason string, count int)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration *prometheus.HistogramVec
	ratingsAppended     prometheus.Counter
	archivesTotal       *prometheus.CounterVec
	skippedRows         *prometheus.CounterVec
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

func (m *MetricsProvider) ObservePersistenceDuration(operation string, duration time.Duration) {
	m.persistenceDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncRatingsAppended() {
	m.ratingsAppended.Inc()
}

func (m *MetricsProvider) IncArchives(file string, reason string) {
	m.archivesTotal.WithLabelValues(file, reason).Inc()
}

func (m *MetricsProvider) AddSkippedRows(source string, reason string, count int) {
	if count <= 0 {
		return
	}
	m.skippedRows.WithLabelValues(source, reason).Add(float64(count))
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
			Name: "ratingd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ratingd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ratingd_cache_hits_total",
			Help: "Total number of timeline cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ratingd_cache_misses_total",
			Help: "Total number of timeline cache misses",
		}),

		persistenceDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ratingd_persistence_duration_seconds",
			Help:    "Duration of file write operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),

		ratingsAppended: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ratingd_ratings_appended_total",
			Help: "Total number of ratings written to both representations",
		}),

		archivesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ratingd_archives_total",
			Help: "Total number of archived files by file and reason",
		}, []string{"file", "reason"}),

		skippedRows: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ratingd_timeline_skipped_rows_total",
			Help: "Rows dropped while building timelines, by source and reason",
		}, []string{"source", "reason"}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                      {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration)      {}
func (n *noopMetrics) IncCacheHits()                                         {}
func (n *noopMetrics) IncCacheMisses()                                       {}
func (n *noopMetrics) ObservePersistenceDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncRatingsAppended()                                   {}
func (n *noopMetrics) IncArchives(_ string, _ string)                        {}
func (n *noopMetrics) AddSkippedRows(_ string, _ string, _ int)              {}
