package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGNewsFetcher_Fetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "golang kubernetes" {
			t.Errorf("q = %q, want first two keywords joined with spaces", got)
		}
		if got := r.URL.Query().Get("token"); got != "gnews-key" {
			t.Errorf("token = %q, want %q", got, "gnews-key")
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{
			"totalArticles": 2,
			"articles": [
				{"title": "First story", "url": "https://example.com/1", "source": {"name": "Wire A"}},
				{"title": "Second story", "url": "https://example.com/2", "source": {"name": "Wire B"}}
			]
		}`)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	f := NewGNewsFetcher("gnews-key")
	f.baseURL = server.URL

	articles, err := f.Fetch(context.Background(), testTopic())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if len(articles) != 2 {
		t.Fatalf("articles length = %d, want 2", len(articles))
	}
	if articles[0].Title != "First story" || articles[0].Source != "Wire A" {
		t.Errorf("articles[0] = %+v, want First story from Wire A", articles[0])
	}
}

func TestGNewsFetcher_Fetch_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(`{"articles": [`)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	f := NewGNewsFetcher("gnews-key")
	f.baseURL = server.URL
	f.retryConfig = fastRetryConfig()

	if _, err := f.Fetch(context.Background(), testTopic()); err == nil {
		t.Fatal("Fetch() error = nil, want decode error")
	}
}

func TestGNewsFetcher_Fetch_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f := NewGNewsFetcher("gnews-key")
	f.baseURL = server.URL

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.Fetch(ctx, testTopic()); err == nil {
		t.Fatal("Fetch() error = nil, want context error")
	}
}

func TestGNewsFetcher_Name(t *testing.T) {
	if got := NewGNewsFetcher("k").Name(); got != "gnews" {
		t.Errorf("Name() = %q, want %q", got, "gnews")
	}
}
