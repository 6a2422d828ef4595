package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     prometheus.CounterVec
	HTTPRequestDuration   prometheus.HistogramVec
	HTTPActiveConnections prometheus.Gauge

	// Feed metrics
	FeedGenerationTime  prometheus.HistogramVec
	FeedPostsReturned   prometheus.HistogramVec
	SourceFailuresTotal prometheus.CounterVec
	FeedFallbacksTotal  prometheus.CounterVec

	// Engagement write-back metrics
	EngagementWritesTotal prometheus.CounterVec

	// Cache metrics
	CacheHitsTotal   prometheus.CounterVec
	CacheMissesTotal prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path"},
			),
			HTTPActiveConnections: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "http_active_connections",
					Help: "Number of currently active HTTP connections",
				},
			),

			FeedGenerationTime: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "feed_generation_seconds",
					Help:    "Time to assemble and rank one feed page",
					Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
				},
				[]string{"feed_type"},
			),
			FeedPostsReturned: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "feed_posts_returned",
					Help:    "Posts returned per feed page",
					Buckets: []float64{0, 5, 10, 20, 30, 50, 100},
				},
				[]string{"feed_type"},
			),
			SourceFailuresTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "feed_source_failures_total",
					Help: "Individual post source fetches that failed and were skipped",
				},
				[]string{"source"},
			),
			FeedFallbacksTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "feed_fallbacks_total",
					Help: "Feed requests that degraded to the public timeline",
				},
				[]string{"feed_type"},
			),

			EngagementWritesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "engagement_writes_total",
					Help: "Post-scoring engagement upserts by outcome",
				},
				[]string{"outcome"},
			),

			CacheHitsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_hits_total",
					Help: "Cache hits by cache name",
				},
				[]string{"cache"},
			),
			CacheMissesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_misses_total",
					Help: "Cache misses by cache name",
				},
				[]string{"cache"},
			),
		}
	})
	return instance
}

// Get returns the metrics singleton, initializing it on first use
func Get() *Metrics {
	if instance == nil {
		return Initialize()
	}
	return instance
}
