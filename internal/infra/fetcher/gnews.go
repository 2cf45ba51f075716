package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"daily-brief/internal/domain/entity"
	"daily-brief/internal/resilience/retry"
)

const gnewsBaseURL = "https://gnews.io/api/v4/search"

// GNewsFetcher fetches articles from the GNews search API.
type GNewsFetcher struct {
	apiKey      string
	baseURL     string
	client      *http.Client
	retryConfig retry.Config
}

// NewGNewsFetcher creates a GNews fetcher with the given API token.
func NewGNewsFetcher(apiKey string) *GNewsFetcher {
	return &GNewsFetcher{
		apiKey:      apiKey,
		baseURL:     gnewsBaseURL,
		client:      newHTTPClient(10 * time.Second),
		retryConfig: retry.FetchConfig(),
	}
}

// Name implements Fetcher.
func (f *GNewsFetcher) Name() string { return "gnews" }

type gnewsResponse struct {
	Articles []struct {
		Title  string `json:"title"`
		URL    string `json:"url"`
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Fetch implements Fetcher. GNews queries are phrase-oriented, so only the
// first two keywords are joined with spaces.
func (f *GNewsFetcher) Fetch(ctx context.Context, topic entity.Topic) ([]entity.Article, error) {
	var articles []entity.Article

	err := retry.Do(ctx, f.retryConfig, func() error {
		var err error
		articles, err = f.doFetch(ctx, topic)
		return err
	})
	if err != nil {
		return nil, err
	}
	return articles, nil
}

func (f *GNewsFetcher) doFetch(ctx context.Context, topic entity.Topic) ([]entity.Article, error) {
	q := url.Values{}
	q.Set("q", strings.Join(capKeywords(topic.Keywords, 2), " "))
	q.Set("token", f.apiKey)
	q.Set("lang", "en")
	q.Set("max", "10")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build gnews request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gnews request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	var payload gnewsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode gnews response: %w", err)
	}

	articles := make([]entity.Article, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		if a.Title == "" {
			continue
		}
		articles = append(articles, entity.Article{
			Title:  a.Title,
			Source: a.Source.Name,
			URL:    a.URL,
		})
	}
	return articles, nil
}
