// Package digest orchestrates one digest run: per-topic collection through
// cache and circuit breakers, deduplication, scraping, summarization, and
// rate-limited delivery.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"daily-brief/internal/cache"
	"daily-brief/internal/cluster"
	"daily-brief/internal/domain/entity"
	"daily-brief/internal/infra/fetcher"
	"daily-brief/internal/infra/notifier"
	"daily-brief/internal/infra/summarizer"
	"daily-brief/internal/observability/logging"
	"daily-brief/internal/observability/metrics"
	"daily-brief/internal/resilience/circuitbreaker"
	"daily-brief/internal/resilience/ratelimit"
	"daily-brief/internal/resilience/retry"
)

// ContentScraper supplies article body text for summarization. A URL that
// cannot be scraped maps to the empty string.
type ContentScraper interface {
	FetchAll(ctx context.Context, articles []entity.Article) map[string]string
}

// Config tunes one digest service.
type Config struct {
	// CacheMaxAge is how long cached per-topic results stay fresh.
	// Default: 60 minutes.
	CacheMaxAge time.Duration

	// DedupThreshold is the title similarity above which two articles are
	// considered duplicates. Zero selects the clusterer default.
	DedupThreshold float64

	// DeliveriesPerWindow and DeliveryWindow bound outbound digests with a
	// sliding window. Defaults: 30 per hour.
	DeliveriesPerWindow int
	DeliveryWindow      time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		CacheMaxAge:         60 * time.Minute,
		DedupThreshold:      cluster.DefaultThreshold,
		DeliveriesPerWindow: 30,
		DeliveryWindow:      time.Hour,
	}
}

// Deps are the collaborators a Service orchestrates.
type Deps struct {
	Fetchers   []fetcher.Fetcher
	Scraper    ContentScraper
	Summarizer summarizer.Summarizer
	Deliverer  notifier.Deliverer
	Cache      *cache.Cache
	Breakers   *circuitbreaker.Registry
	Logger     *slog.Logger
}

// Service runs the digest pipeline.
type Service struct {
	deps        Deps
	config      Config
	clusterer   *cluster.Clusterer
	limiter     *ratelimit.Limiter
	retryConfig retry.Config
}

// NewService creates a digest service.
func NewService(deps Deps, config Config) *Service {
	if config.CacheMaxAge <= 0 {
		config.CacheMaxAge = 60 * time.Minute
	}
	if config.DeliveriesPerWindow <= 0 {
		config.DeliveriesPerWindow = 30
	}
	if config.DeliveryWindow <= 0 {
		config.DeliveryWindow = time.Hour
	}
	return &Service{
		deps:        deps,
		config:      config,
		clusterer:   cluster.New(config.DedupThreshold),
		limiter:     ratelimit.New(config.DeliveriesPerWindow, config.DeliveryWindow),
		retryConfig: retry.DeliverConfig(),
	}
}

// Stats summarizes one digest run.
type Stats struct {
	RunID             string
	Topics            int
	Articles          int
	DuplicatesRemoved int
	CacheHits         int
	SourcesSkipped    int
	Delivered         bool
	Duration          time.Duration
}

// Run executes one full digest: collect every topic, summarize, deliver.
// Zero collected articles still produce a degenerate digest so the user
// learns the pipeline ran.
func (s *Service) Run(ctx context.Context, topics []entity.Topic) (Stats, error) {
	runID := uuid.New().String()
	logger := logging.WithRunID(s.deps.Logger, runID)
	start := time.Now()

	stats := Stats{RunID: runID, Topics: len(topics)}

	sections := make([]summarizer.Section, 0, len(topics))
	for _, topic := range topics {
		articles, topicStats := s.CollectTopic(ctx, topic, logger)
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("digest run cancelled: %w", err)
		}

		stats.Articles += len(articles)
		stats.DuplicatesRemoved += topicStats.DuplicatesRemoved
		stats.SourcesSkipped += topicStats.SourcesSkipped
		if topicStats.CacheHit {
			stats.CacheHits++
		}

		content := map[string]string{}
		if s.deps.Scraper != nil && len(articles) > 0 {
			content = s.deps.Scraper.FetchAll(ctx, articles)
		}

		items := make([]summarizer.Item, 0, len(articles))
		for _, a := range articles {
			items = append(items, summarizer.Item{Article: a, Content: content[a.URL]})
		}
		sections = append(sections, summarizer.Section{Topic: topic.Name, Items: items})
	}

	text, err := s.deps.Summarizer.Summarize(ctx, sections)
	if err != nil {
		stats.Duration = time.Since(start)
		return stats, fmt.Errorf("summarize digest: %w", err)
	}

	if err := s.deliver(ctx, text); err != nil {
		metrics.RecordDigestDelivered(false)
		stats.Duration = time.Since(start)
		return stats, fmt.Errorf("deliver digest: %w", err)
	}

	metrics.RecordDigestDelivered(true)
	stats.Delivered = true
	stats.Duration = time.Since(start)
	metrics.RecordDigestRun(stats.Duration)

	logger.Info("digest run complete",
		slog.Int("topics", stats.Topics),
		slog.Int("articles", stats.Articles),
		slog.Int("duplicates_removed", stats.DuplicatesRemoved),
		slog.Int("cache_hits", stats.CacheHits),
		slog.Int("sources_skipped", stats.SourcesSkipped),
		slog.Duration("duration", stats.Duration),
	)
	return stats, nil
}

// TopicStats describes how one topic's articles were obtained.
type TopicStats struct {
	CacheHit          bool
	DuplicatesRemoved int
	SourcesSkipped    int
}

// CollectTopic returns the deduplicated, truncated article list for one
// topic. Fresh cached results short-circuit the upstream calls entirely.
// A failing source contributes zero articles; an open circuit is skipped
// without invoking the source at all.
func (s *Service) CollectTopic(ctx context.Context, topic entity.Topic, logger *slog.Logger) ([]entity.Article, TopicStats) {
	key := "news_" + topic.ID

	var cached []entity.Article
	if s.deps.Cache.GetJSON(key, s.config.CacheMaxAge, &cached) {
		metrics.RecordCacheLookup(true)
		logger.Info("topic served from cache",
			slog.String("topic", topic.ID),
			slog.Int("articles", len(cached)))
		return cached, TopicStats{CacheHit: true}
	}
	metrics.RecordCacheLookup(false)

	var (
		merged []entity.Article
		stats  TopicStats
	)
	for _, f := range s.deps.Fetchers {
		breaker := s.deps.Breakers.Get(circuitbreaker.SourceConfig(f.Name()))

		out, err := breaker.Execute(func() (interface{}, error) {
			return f.Fetch(ctx, topic)
		})
		if err != nil {
			if circuitbreaker.IsOpenError(err) {
				stats.SourcesSkipped++
				metrics.RecordCircuitOpen(f.Name())
				metrics.RecordFetchError(f.Name(), "circuit_open")
				logger.Warn("source skipped, circuit open",
					slog.String("source", f.Name()),
					slog.String("topic", topic.ID))
			} else {
				metrics.RecordFetchError(f.Name(), "fetch_failed")
				logger.Warn("source fetch failed",
					slog.String("source", f.Name()),
					slog.String("topic", topic.ID),
					slog.String("error", err.Error()))
			}
			continue
		}

		articles := out.([]entity.Article)
		metrics.RecordArticlesFetched(f.Name(), len(articles))
		merged = append(merged, articles...)
	}

	kept, removed := s.clusterer.Dedupe(merged)
	stats.DuplicatesRemoved = removed
	metrics.RecordDuplicatesRemoved(removed)

	if limit := topic.Limit(); len(kept) > limit {
		kept = kept[:limit]
	}

	s.deps.Cache.Set(key, kept)
	logger.Info("topic collected",
		slog.String("topic", topic.ID),
		slog.Int("articles", len(kept)),
		slog.Int("duplicates_removed", removed))
	return kept, stats
}

// deliver sends the digest through the sliding-window limiter, retrying the
// whole admission-plus-send on failure so a retried attempt waits its turn
// like any other call.
func (s *Service) deliver(ctx context.Context, text string) error {
	return retry.Do(ctx, s.retryConfig, func() error {
		return s.limiter.Do(ctx, func() error {
			return s.deps.Deliverer.Deliver(ctx, text)
		})
	})
}
