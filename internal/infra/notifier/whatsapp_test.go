package notifier

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestNotifier(t *testing.T, handler http.HandlerFunc) *WhatsAppNotifier {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewWhatsAppNotifier(WhatsAppConfig{
		GatewayURL: server.URL,
		Recipient:  "+15551234567",
		APIKey:     "secret",
	}, testLogger())
}

func TestWhatsAppNotifier_Deliver_Success(t *testing.T) {
	var got whatsappPayload
	var auth string
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := n.Deliver(context.Background(), "Daily brief\n- headline one"); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	if got.To != "+15551234567" {
		t.Errorf("payload.To = %q, want recipient", got.To)
	}
	if !strings.Contains(got.Message, "headline one") {
		t.Errorf("payload.Message = %q, want digest text", got.Message)
	}
	if auth != "Bearer secret" {
		t.Errorf("Authorization = %q, want bearer token", auth)
	}
}

func TestWhatsAppNotifier_Deliver_GatewayErrorBody(t *testing.T) {
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		if _, err := w.Write([]byte(`{"error": "quota exceeded"}`)); err != nil {
			t.Errorf("write response: %v", err)
		}
	})

	err := n.Deliver(context.Background(), "text")
	if err == nil {
		t.Fatal("Deliver() error = nil, want gateway error")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("error = %v, want gateway error body included", err)
	}
}

func TestWhatsAppNotifier_Deliver_SplitsLongDigest(t *testing.T) {
	var messages []string
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		var p whatsappPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		messages = append(messages, p.Message)
		w.WriteHeader(http.StatusOK)
	})

	// Two chunks keep the test inside the limiter's burst, so no waiting.
	lines := make([]string, 0, 120)
	for i := 0; i < 120; i++ {
		lines = append(lines, "- a headline that takes up some space in the digest body")
	}
	long := strings.Join(lines, "\n")

	if err := n.Deliver(context.Background(), long); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	if len(messages) < 2 {
		t.Fatalf("messages = %d, want the digest split into multiple chunks", len(messages))
	}
	for i, m := range messages {
		if got := len([]rune(m)); got > maxMessageLength {
			t.Errorf("chunk %d length = %d, want <= %d", i, got, maxMessageLength)
		}
	}
	if !strings.HasPrefix(messages[0], "- a headline") {
		t.Errorf("first chunk should start at the beginning, got %q", messages[0][:40])
	}
}

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   int
	}{
		{"short text single chunk", "hello", 10, 1},
		{"exact fit", strings.Repeat("a", 10), 10, 1},
		{"splits without newlines", strings.Repeat("a", 25), 10, 3},
		{"prefers newline boundary", "line one\nline two\nline three", 12, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := splitMessage(tt.text, tt.maxLen)
			if len(chunks) != tt.want {
				t.Errorf("chunks = %d (%q), want %d", len(chunks), chunks, tt.want)
			}
			for _, c := range chunks {
				if len([]rune(c)) > tt.maxLen {
					t.Errorf("chunk %q exceeds max length %d", c, tt.maxLen)
				}
			}
		})
	}
}

func TestNoopNotifier_Deliver(t *testing.T) {
	n := NewNoopNotifier(testLogger())
	if err := n.Deliver(context.Background(), "anything"); err != nil {
		t.Errorf("Deliver() error = %v, want nil", err)
	}
}
