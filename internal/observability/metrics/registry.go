// Package metrics provides centralized Prometheus metrics for the digest
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache metrics track hit rates of the disk-backed TTL cache
var (
	// CacheLookupsTotal counts cache lookups by outcome ("hit" or "miss")
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Total number of cache lookups by outcome",
		},
		[]string{"outcome"},
	)
)

// Fetch metrics track upstream source behavior
var (
	// FetchErrorsTotal counts fetch failures by source and reason
	FetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetch_errors_total",
			Help: "Total number of upstream fetch failures",
		},
		[]string{"source", "reason"},
	)

	// ArticlesFetchedTotal counts articles fetched from each source
	ArticlesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_fetched_total",
			Help: "Total number of articles fetched per source",
		},
		[]string{"source"},
	)

	// CircuitOpenTotal counts calls rejected by an open circuit breaker
	CircuitOpenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_open_rejections_total",
			Help: "Total number of calls rejected because a circuit was open",
		},
		[]string{"circuit"},
	)
)

// Pipeline metrics track deduplication, summarization, and delivery
var (
	// DuplicatesRemovedTotal counts articles dropped by the clusterer
	DuplicatesRemovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "duplicates_removed_total",
			Help: "Total number of near-duplicate articles removed",
		},
	)

	// SummarizeDuration measures the LLM summarization call duration
	SummarizeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "summarize_duration_seconds",
			Help:    "Duration of summarization calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// DigestsDeliveredTotal counts digest deliveries by status
	DigestsDeliveredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digests_delivered_total",
			Help: "Total number of digest deliveries by status",
		},
		[]string{"status"},
	)

	// DigestRunDuration measures an end-to-end digest run
	DigestRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "digest_run_duration_seconds",
			Help:    "Duration of a full digest run in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)
)
