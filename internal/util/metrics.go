package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CatalogRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_requests_total",
		Help: "Total number of catalog service requests",
	}, []string{"operation", "outcome"})

	CatalogRequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_request_latency_seconds",
		Help:    "Latency of catalog service requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	FilterLoadsSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filter_loads_skipped_total",
		Help: "Dimension option loads skipped because nothing relevant changed or a load was in flight",
	}, []string{"dimension", "reason"})

	StaleResponsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stale_responses_total",
		Help: "Responses discarded because the request parameters no longer match",
	}, []string{"operation"})

	PricingCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricing_cache_hits_total",
		Help: "Pricing lookups served from cache",
	})

	PricingCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricing_cache_misses_total",
		Help: "Pricing lookups that required a remote fetch",
	})

	QueueEntriesAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "queue_entries_added_total",
		Help: "Products added to a queue by commits",
	})

	QueueCommitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "queue_commits_total",
		Help: "Total number of selection commits",
	})

	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "submissions_total",
		Help: "Results handed back to the host",
	}, []string{"kind"})

	SubmissionSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "submission_products",
		Help:    "Number of products per submission",
		Buckets: prometheus.LinearBuckets(1, 5, 10),
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "active_sessions",
		Help: "Number of open browsing sessions",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
