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

const newsAPIBaseURL = "https://newsapi.org/v2/everything"

// NewsAPIFetcher fetches articles from the NewsAPI "everything" endpoint.
type NewsAPIFetcher struct {
	apiKey      string
	baseURL     string
	client      *http.Client
	retryConfig retry.Config
}

// NewNewsAPIFetcher creates a NewsAPI fetcher with the given API key.
func NewNewsAPIFetcher(apiKey string) *NewsAPIFetcher {
	return &NewsAPIFetcher{
		apiKey:      apiKey,
		baseURL:     newsAPIBaseURL,
		client:      newHTTPClient(10 * time.Second),
		retryConfig: retry.FetchConfig(),
	}
}

// Name implements Fetcher.
func (f *NewsAPIFetcher) Name() string { return "newsapi" }

// newsAPIResponse mirrors the subset of the NewsAPI payload we consume.
type newsAPIResponse struct {
	Articles []struct {
		Title  string `json:"title"`
		URL    string `json:"url"`
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Fetch implements Fetcher. It queries for the first three keywords joined
// with OR, newest first, at most ten results.
func (f *NewsAPIFetcher) Fetch(ctx context.Context, topic entity.Topic) ([]entity.Article, error) {
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

func (f *NewsAPIFetcher) doFetch(ctx context.Context, topic entity.Topic) ([]entity.Article, error) {
	q := url.Values{}
	q.Set("q", strings.Join(capKeywords(topic.Keywords, 3), " OR "))
	q.Set("apiKey", f.apiKey)
	q.Set("language", "en")
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", "10")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build newsapi request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsapi request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	var payload newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode newsapi response: %w", err)
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
