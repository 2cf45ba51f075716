package scraper

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"daily-brief/internal/domain/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Test Article</title></head>
<body>
<article>
<h1>Test Article</h1>
<p>The first paragraph carries the lede and sets up the story with enough
length that extraction heuristics treat it as real content rather than
navigation chrome.</p>
<p>The second paragraph continues the story and adds more body text so the
page looks like a genuine article to the extraction algorithm.</p>
<p>A third paragraph closes things out with a final detail.</p>
</article>
</body>
</html>`

func TestScraper_Extract_ArticlePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(articleHTML)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	s := New(testLogger())
	text, err := s.Extract(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if !strings.Contains(text, "first paragraph carries the lede") {
		t.Errorf("extracted text missing article body, got %q", text)
	}
	if strings.Contains(text, "<p>") {
		t.Errorf("extracted text contains HTML markup: %q", text)
	}
}

func TestScraper_Extract_ClampsLongText(t *testing.T) {
	long := strings.Repeat("word ", 3000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		page := "<html><body><article><p>" + long + "</p></article></body></html>"
		if _, err := w.Write([]byte(page)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	s := New(testLogger(), WithMaxChars(100))
	text, err := s.Extract(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got := len([]rune(text)); got > 100 {
		t.Errorf("text length = %d runes, want <= 100", got)
	}
}

func TestScraper_Extract_ParagraphFallback(t *testing.T) {
	// No <article> wrapper and almost no structure: Readability may bail,
	// the paragraph fallback must still find the text.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(`<html><body><p>Lone paragraph text.</p></body></html>`)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	s := New(testLogger())
	text, err := s.Extract(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(text, "Lone paragraph text.") {
		t.Errorf("fallback missed paragraph text, got %q", text)
	}
}

func TestScraper_Extract_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	s := New(testLogger())
	if _, err := s.Extract(context.Background(), server.URL); err == nil {
		t.Fatal("Extract() error = nil, want error for 404")
	}
}

func TestScraper_Extract_NoText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(`<html><body><div>no paragraphs here</div></body></html>`)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	s := New(testLogger())
	text, err := s.Extract(context.Background(), server.URL)
	// Readability may still salvage div text; either a non-empty result or
	// an explicit error is acceptable, but never an empty success.
	if err == nil && strings.TrimSpace(text) == "" {
		t.Error("Extract() returned empty text without error")
	}
}

func TestScraper_FetchAll_PartialFailure(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(articleHTML)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer good.Close()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	s := New(testLogger(), WithWorkers(2))
	articles := []entity.Article{
		{Title: "Good", Source: "S", URL: good.URL},
		{Title: "Bad", Source: "S", URL: bad.URL},
	}

	got := s.FetchAll(context.Background(), articles)

	if len(got) != 2 {
		t.Fatalf("result size = %d, want 2", len(got))
	}
	if !strings.Contains(got[good.URL], "first paragraph") {
		t.Errorf("good URL text = %q, want article body", got[good.URL])
	}
	if got[bad.URL] != "" {
		t.Errorf("bad URL text = %q, want empty string", got[bad.URL])
	}
}

func TestScraper_FetchAll_Empty(t *testing.T) {
	s := New(testLogger())
	if got := s.FetchAll(context.Background(), nil); len(got) != 0 {
		t.Errorf("FetchAll(nil) = %v, want empty map", got)
	}
}
