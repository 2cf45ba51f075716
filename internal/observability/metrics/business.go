package metrics

import "time"

// RecordCacheLookup records the outcome of a cache lookup.
func RecordCacheLookup(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	CacheLookupsTotal.WithLabelValues(outcome).Inc()
}

// RecordFetchError records an upstream fetch failure.
// Reason should be a low-cardinality label such as "transient" or "circuit_open".
func RecordFetchError(source, reason string) {
	FetchErrorsTotal.WithLabelValues(source, reason).Inc()
}

// RecordArticlesFetched records articles returned by one source call.
func RecordArticlesFetched(source string, count int) {
	if count > 0 {
		ArticlesFetchedTotal.WithLabelValues(source).Add(float64(count))
	}
}

// RecordCircuitOpen records a call rejected by an open circuit.
func RecordCircuitOpen(circuit string) {
	CircuitOpenTotal.WithLabelValues(circuit).Inc()
}

// RecordDuplicatesRemoved records articles dropped by deduplication.
func RecordDuplicatesRemoved(count int) {
	if count > 0 {
		DuplicatesRemovedTotal.Add(float64(count))
	}
}

// RecordSummarizeDuration records the duration of one summarization call.
func RecordSummarizeDuration(d time.Duration) {
	SummarizeDuration.Observe(d.Seconds())
}

// RecordDigestDelivered records the outcome of a digest delivery.
func RecordDigestDelivered(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	DigestsDeliveredTotal.WithLabelValues(status).Inc()
}

// RecordDigestRun records the duration of a full digest run.
func RecordDigestRun(d time.Duration) {
	DigestRunDuration.Observe(d.Seconds())
}
