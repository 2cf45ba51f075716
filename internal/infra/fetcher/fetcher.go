// Package fetcher provides the upstream news-source implementations: JSON
// search APIs (NewsAPI, GNews) and RSS feeds (Google News queries, fixed
// regional feed lists). Each fetcher retries transient transport failures
// internally; circuit breaking is applied per source by the digest
// orchestrator.
package fetcher

import (
	"context"
	"net/http"
	"time"

	"daily-brief/internal/domain/entity"
)

// Fetcher is one upstream news capability: it turns a topic's keywords into
// raw candidate articles. Implementations may fail; the caller decides how
// a failure degrades.
type Fetcher interface {
	// Name identifies the source for logging, metrics, and its circuit.
	Name() string

	// Fetch returns candidate articles for the topic, newest first as the
	// upstream ranks them. The returned order matters: deduplication keeps
	// the first-seen representative.
	Fetch(ctx context.Context, topic entity.Topic) ([]entity.Article, error)
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) daily-brief"

// newHTTPClient returns the HTTP client used by all fetchers.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// capKeywords returns at most n keywords.
func capKeywords(keywords []string, n int) []string {
	if len(keywords) > n {
		return keywords[:n]
	}
	return keywords
}
