package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProductSearches is a Prometheus counter for executed product searches.
	ProductSearches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "product_searches_total",
		Help: "The total number of product search requests",
	})

	// CacheHits is a Prometheus counter for cache hits.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "The total number of cache hits",
	})

	// CacheMisses is a Prometheus counter for cache misses.
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "The total number of cache misses",
	})

	// PriceUpdates is a Prometheus counter for committed price updates.
	PriceUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "price_updates_total",
		Help: "The total number of committed product price updates",
	})

	// JobsEnqueued is a Prometheus counter for enqueued background jobs.
	JobsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobs_enqueued_total",
		Help: "The total number of background jobs enqueued",
	})

	// JobsCompleted is a Prometheus counter for completed background jobs.
	JobsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobs_completed_total",
		Help: "The total number of background jobs completed",
	})

	// JobsFailed is a Prometheus counter for failed background job attempts.
	JobsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobs_failed_total",
		Help: "The total number of failed background job attempts",
	})

	// JobsCancelled is a Prometheus counter for cancelled background jobs.
	JobsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobs_cancelled_total",
		Help: "The total number of background jobs cancelled",
	})
)
