package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"

	"daily-brief/internal/domain/entity"
	"daily-brief/internal/resilience/retry"
)

const googleNewsBaseURL = "https://news.google.com/rss/search"

// maxEntriesPerKeyword caps how many items one query feed contributes.
const maxEntriesPerKeyword = 5

// GoogleRSSFetcher fetches articles from Google News RSS query feeds, one
// feed per topic keyword. It needs no API key.
type GoogleRSSFetcher struct {
	baseURL     string
	parser      *gofeed.Parser
	client      *http.Client
	retryConfig retry.Config
	logger      *slog.Logger
}

// NewGoogleRSSFetcher creates a Google News RSS fetcher.
func NewGoogleRSSFetcher(logger *slog.Logger) *GoogleRSSFetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	return &GoogleRSSFetcher{
		baseURL:     googleNewsBaseURL,
		parser:      parser,
		client:      newHTTPClient(10 * time.Second),
		retryConfig: retry.FetchConfig(),
		logger:      logger,
	}
}

// Name implements Fetcher.
func (f *GoogleRSSFetcher) Name() string { return "google_rss" }

// Fetch implements Fetcher. Each keyword becomes its own query feed; a
// keyword whose feed keeps failing is skipped rather than failing the
// whole source. Fetch fails only when every keyword fails.
func (f *GoogleRSSFetcher) Fetch(ctx context.Context, topic entity.Topic) ([]entity.Article, error) {
	var (
		articles []entity.Article
		lastErr  error
		failed   int
	)

	for _, keyword := range topic.Keywords {
		feed, err := f.fetchKeyword(ctx, keyword)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			f.logger.Warn("google rss keyword failed",
				slog.String("keyword", keyword),
				slog.String("error", err.Error()),
			)
			lastErr = err
			failed++
			continue
		}

		for i, item := range feed.Items {
			if i >= maxEntriesPerKeyword {
				break
			}
			if item.Title == "" {
				continue
			}
			source := "Google News"
			if item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 {
				source = item.DublinCoreExt.Creator[0]
			}
			articles = append(articles, entity.Article{
				Title:  item.Title,
				Source: source,
				URL:    item.Link,
			})
		}
	}

	if failed == len(topic.Keywords) && lastErr != nil {
		return nil, fmt.Errorf("all google rss queries failed: %w", lastErr)
	}
	return articles, nil
}

func (f *GoogleRSSFetcher) fetchKeyword(ctx context.Context, keyword string) (*gofeed.Feed, error) {
	q := url.Values{}
	q.Set("q", keyword)
	q.Set("hl", "en-US")
	q.Set("gl", "US")
	q.Set("ceid", "US:en")
	feedURL := f.baseURL + "?" + q.Encode()

	var feed *gofeed.Feed
	err := retry.Do(ctx, f.retryConfig, func() error {
		var err error
		feed, err = f.fetchFeed(ctx, feedURL)
		return err
	})
	if err != nil {
		return nil, err
	}
	return feed, nil
}

func (f *GoogleRSSFetcher) fetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build rss request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rss request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: "rss feed fetch failed"}
	}

	feed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse rss feed: %w", err)
	}
	return feed, nil
}
