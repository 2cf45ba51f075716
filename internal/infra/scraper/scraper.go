// Package scraper extracts readable article text from web pages. It tries
// the Readability algorithm first and falls back to collecting paragraph
// text when extraction comes back empty.
package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/sync/errgroup"

	"daily-brief/internal/domain/entity"
)

const (
	// DefaultMaxChars clamps extracted text so a handful of long reads
	// cannot blow the LLM prompt budget.
	DefaultMaxChars = 5000

	// DefaultWorkers bounds concurrent page fetches.
	DefaultWorkers = 5

	defaultPageTimeout = 15 * time.Second

	// maxBodySize limits how much HTML is read from one page.
	maxBodySize = 2 << 20
)

// Scraper fetches article pages and extracts their main text.
// It is safe for concurrent use.
type Scraper struct {
	client      *http.Client
	maxChars    int
	workers     int
	pageTimeout time.Duration
	logger      *slog.Logger
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithMaxChars overrides the extracted-text clamp.
func WithMaxChars(n int) Option {
	return func(s *Scraper) {
		if n > 0 {
			s.maxChars = n
		}
	}
}

// WithWorkers overrides the concurrent fetch limit.
func WithWorkers(n int) Option {
	return func(s *Scraper) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithPageTimeout overrides the per-page fetch timeout.
func WithPageTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		if d > 0 {
			s.pageTimeout = d
		}
	}
}

// New creates a Scraper.
func New(logger *slog.Logger, opts ...Option) *Scraper {
	s := &Scraper{
		client:      &http.Client{Timeout: defaultPageTimeout},
		maxChars:    DefaultMaxChars,
		workers:     DefaultWorkers,
		pageTimeout: defaultPageTimeout,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extract fetches one page and returns its main article text, clamped to
// the configured maximum length.
func (s *Scraper) Extract(ctx context.Context, pageURL string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.pageTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build page request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; daily-brief/1.0)")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch page: HTTP %d", resp.StatusCode)
	}

	html, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("read page body: %w", err)
	}

	text := s.extractText(html, pageURL)
	if text == "" {
		return "", fmt.Errorf("no extractable text at %s", pageURL)
	}
	return clamp(text, s.maxChars), nil
}

// FetchAll extracts text for every article concurrently. The result is
// keyed by article URL; an article whose page cannot be fetched or parsed
// maps to the empty string so a bad page never sinks the digest.
func (s *Scraper) FetchAll(ctx context.Context, articles []entity.Article) map[string]string {
	results := make([]string, len(articles))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, article := range articles {
		g.Go(func() error {
			text, err := s.Extract(ctx, article.URL)
			if err != nil {
				s.logger.Warn("scrape failed",
					slog.String("url", article.URL),
					slog.String("error", err.Error()),
				)
				return nil
			}
			results[i] = text
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes.
	_ = g.Wait()

	out := make(map[string]string, len(articles))
	for i, article := range articles {
		out[article.URL] = results[i]
	}
	return out
}

// extractText runs Readability and falls back to paragraph collection.
func (s *Scraper) extractText(html []byte, pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err == nil {
		article, err := readability.FromReader(strings.NewReader(string(html)), parsed)
		if err == nil {
			if text := strings.TrimSpace(article.TextContent); text != "" {
				return text
			}
		}
	}
	return extractParagraphs(html)
}

// extractParagraphs collects <p> text as a last resort for pages the
// Readability heuristics reject.
func extractParagraphs(html []byte) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return ""
	}

	var parts []string
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n\n")
}

func clamp(text string, maxChars int) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars])
}
