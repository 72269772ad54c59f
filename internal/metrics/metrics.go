package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tunarr",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tunarr",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 20, 30},
	}, []string{"method", "route"})

	SearchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tunarr",
		Name:      "searches_total",
		Help:      "slskd searches by outcome (completed, partial, error).",
	}, []string{"outcome"})

	SearchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tunarr",
		Name:      "search_duration_seconds",
		Help:      "Duration of slskd search sessions in seconds.",
		Buckets:   []float64{1, 2, 5, 10, 15, 20, 30, 60},
	})

	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tunarr",
		Name:      "cache_hits_total",
		Help:      "Total number of search cache hits.",
	})

	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tunarr",
		Name:      "cache_misses_total",
		Help:      "Total number of search cache misses.",
	})

	BackendErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tunarr",
		Name:      "backend_errors_total",
		Help:      "slskd call failures by operation.",
	}, []string{"operation"})

	JobsAddedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tunarr",
		Name:      "jobs_added_total",
		Help:      "Download jobs created through addfile.",
	})

	JobsRemovedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tunarr",
		Name:      "jobs_removed_total",
		Help:      "Download jobs removed, by source (queue, history).",
	}, []string{"source"})

	TrackedJobs = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tunarr",
		Name:      "tracked_jobs",
		Help:      "Number of jobs currently tracked in memory.",
	})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		SearchesTotal,
		SearchDuration,
		CacheHitsTotal,
		CacheMissesTotal,
		BackendErrorsTotal,
		JobsAddedTotal,
		JobsRemovedTotal,
		TrackedJobs,
	)
}
