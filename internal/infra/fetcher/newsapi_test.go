package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"daily-brief/internal/domain/entity"
	"daily-brief/internal/resilience/retry"
)

// fastRetryConfig keeps retry semantics but without real backoff sleeps.
func fastRetryConfig() retry.Config {
	return retry.Config{
		Retries:        2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		RetryIf:        retry.IsRetryable,
	}
}

func testTopic() entity.Topic {
	return entity.Topic{
		ID:       "tech",
		Name:     "Technology",
		Keywords: []string{"golang", "kubernetes", "wasm", "rust"},
	}
}

func TestNewsAPIFetcher_Fetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "golang OR kubernetes OR wasm" {
			t.Errorf("q = %q, want first three keywords joined with OR", got)
		}
		if got := r.URL.Query().Get("apiKey"); got != "test-key" {
			t.Errorf("apiKey = %q, want %q", got, "test-key")
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{
			"status": "ok",
			"articles": [
				{"title": "Go 1.25 released", "url": "https://example.com/go125", "source": {"name": "Example Tech"}},
				{"title": "", "url": "https://example.com/untitled", "source": {"name": "Example Tech"}},
				{"title": "Kubernetes news", "url": "https://example.com/k8s", "source": {"name": "Cloud Daily"}}
			]
		}`)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	f := NewNewsAPIFetcher("test-key")
	f.baseURL = server.URL

	articles, err := f.Fetch(context.Background(), testTopic())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if len(articles) != 2 {
		t.Fatalf("articles length = %d, want 2 (untitled entry skipped)", len(articles))
	}
	if articles[0].Title != "Go 1.25 released" {
		t.Errorf("articles[0].Title = %q, want %q", articles[0].Title, "Go 1.25 released")
	}
	if articles[1].Source != "Cloud Daily" {
		t.Errorf("articles[1].Source = %q, want %q", articles[1].Source, "Cloud Daily")
	}
}

func TestNewsAPIFetcher_Fetch_RetriesServerError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if _, err := w.Write([]byte(`{"articles": [{"title": "Recovered", "url": "https://example.com/a", "source": {"name": "S"}}]}`)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	f := NewNewsAPIFetcher("test-key")
	f.baseURL = server.URL
	f.retryConfig = fastRetryConfig()

	articles, err := f.Fetch(context.Background(), testTopic())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3 (two retries)", calls)
	}
	if len(articles) != 1 || articles[0].Title != "Recovered" {
		t.Errorf("articles = %v, want single recovered article", articles)
	}
}

func TestNewsAPIFetcher_Fetch_ClientErrorNotRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	f := NewNewsAPIFetcher("bad-key")
	f.baseURL = server.URL
	f.retryConfig = fastRetryConfig()

	_, err := f.Fetch(context.Background(), testTopic())
	if err == nil {
		t.Fatal("Fetch() error = nil, want error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (401 is not retryable)", calls)
	}

	var httpErr *retry.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error type = %T, want *retry.HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want %d", httpErr.StatusCode, http.StatusUnauthorized)
	}
}

func TestNewsAPIFetcher_Name(t *testing.T) {
	if got := NewNewsAPIFetcher("k").Name(); got != "newsapi" {
		t.Errorf("Name() = %q, want %q", got, "newsapi")
	}
}
