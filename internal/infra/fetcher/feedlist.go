package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"daily-brief/internal/domain/entity"
	"daily-brief/internal/resilience/retry"
)

// Feed is one named RSS feed in a fixed list.
type Feed struct {
	Name string
	URL  string
}

// maxEntriesPerFeed caps how many items one fixed feed contributes.
const maxEntriesPerFeed = 10

// FeedListFetcher fetches a fixed list of regional or publisher feeds and
// filters entries against the topic's city names when any are configured.
type FeedListFetcher struct {
	name        string
	feeds       []Feed
	parser      *gofeed.Parser
	client      *http.Client
	retryConfig retry.Config
	logger      *slog.Logger
}

// NewFeedListFetcher creates a fetcher over a fixed feed list. The name
// identifies the source group in logs, metrics, and its circuit.
func NewFeedListFetcher(name string, feeds []Feed, logger *slog.Logger) *FeedListFetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	return &FeedListFetcher{
		name:        name,
		feeds:       feeds,
		parser:      parser,
		client:      newHTTPClient(10 * time.Second),
		retryConfig: retry.FetchConfig(),
		logger:      logger,
	}
}

// Name implements Fetcher.
func (f *FeedListFetcher) Name() string { return f.name }

// Fetch implements Fetcher. Feeds fail independently; the call fails only
// when every feed in the list fails. When the topic names cities, entries
// must mention one of them in the title.
func (f *FeedListFetcher) Fetch(ctx context.Context, topic entity.Topic) ([]entity.Article, error) {
	var (
		articles []entity.Article
		lastErr  error
		failed   int
	)

	for _, src := range f.feeds {
		feed, err := f.fetchFeed(ctx, src.URL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			f.logger.Warn("feed fetch failed",
				slog.String("feed", src.Name),
				slog.String("error", err.Error()),
			)
			lastErr = err
			failed++
			continue
		}

		count := 0
		for _, item := range feed.Items {
			if count >= maxEntriesPerFeed {
				break
			}
			if item.Title == "" || !matchesCities(item.Title, topic.Cities) {
				continue
			}
			articles = append(articles, entity.Article{
				Title:  item.Title,
				Source: src.Name,
				URL:    item.Link,
			})
			count++
		}
	}

	if failed == len(f.feeds) && lastErr != nil {
		return nil, fmt.Errorf("all feeds failed: %w", lastErr)
	}
	return articles, nil
}

func (f *FeedListFetcher) fetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	var feed *gofeed.Feed
	err := retry.Do(ctx, f.retryConfig, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
		if err != nil {
			return fmt.Errorf("build feed request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			return fmt.Errorf("feed request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return &retry.HTTPError{StatusCode: resp.StatusCode, Message: "feed fetch failed"}
		}

		feed, err = f.parser.Parse(resp.Body)
		if err != nil {
			return fmt.Errorf("parse feed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return feed, nil
}

// matchesCities reports whether the title mentions one of the cities.
// An empty city list admits everything.
func matchesCities(title string, cities []string) bool {
	if len(cities) == 0 {
		return true
	}
	lower := strings.ToLower(title)
	for _, city := range cities {
		if strings.Contains(lower, strings.ToLower(city)) {
			return true
		}
	}
	return false
}
