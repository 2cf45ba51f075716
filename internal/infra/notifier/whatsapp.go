package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// maxMessageLength is the WhatsApp per-message character limit the
// gateway enforces. Longer digests are split on line boundaries.
const maxMessageLength = 4000

// WhatsAppConfig contains configuration for the WhatsApp gateway.
type WhatsAppConfig struct {
	// GatewayURL is the HTTP endpoint of the WhatsApp gateway.
	GatewayURL string

	// Recipient is the destination phone number in E.164 form.
	Recipient string

	// APIKey authenticates against the gateway. Optional.
	APIKey string

	// Timeout is the HTTP request timeout per gateway call.
	Timeout time.Duration
}

// WhatsAppNotifier delivers digests through an HTTP WhatsApp gateway.
type WhatsAppNotifier struct {
	config      WhatsAppConfig
	client      *http.Client
	rateLimiter *RateLimiter
	logger      *slog.Logger
}

// NewWhatsAppNotifier creates a WhatsApp notifier.
// The rate limit of 0.25 req/s keeps chunked digests under typical
// gateway per-minute quotas.
func NewWhatsAppNotifier(config WhatsAppConfig, logger *slog.Logger) *WhatsAppNotifier {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &WhatsAppNotifier{
		config:      config,
		client:      &http.Client{Timeout: config.Timeout},
		rateLimiter: NewRateLimiter(0.25, 2),
		logger:      logger,
	}
}

type whatsappPayload struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

type whatsappErrorResponse struct {
	Error string `json:"error"`
}

// Deliver implements Deliverer. Long digests are sent as several messages
// in order; the first failed chunk aborts the rest so a retry starts over
// with a consistent message sequence.
func (w *WhatsAppNotifier) Deliver(ctx context.Context, text string) error {
	chunks := splitMessage(text, maxMessageLength)

	for i, chunk := range chunks {
		if err := w.rateLimiter.Allow(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
		if err := w.sendMessage(ctx, chunk); err != nil {
			return fmt.Errorf("send chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}

	w.logger.Info("digest delivered",
		slog.Int("chunks", len(chunks)),
		slog.Int("length", len([]rune(text))),
	)
	return nil
}

func (w *WhatsAppNotifier) sendMessage(ctx context.Context, message string) error {
	body, err := json.Marshal(whatsappPayload{
		To:      w.config.Recipient,
		Message: message,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.GatewayURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+w.config.APIKey)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		var gwErr whatsappErrorResponse
		if json.Unmarshal(raw, &gwErr) == nil && gwErr.Error != "" {
			return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, gwErr.Error)
		}
		return fmt.Errorf("gateway returned %d", resp.StatusCode)
	}
	return nil
}

// splitMessage splits text into chunks of at most maxLen runes, breaking on
// newlines where possible so bullets are not cut mid-line.
func splitMessage(text string, maxLen int) []string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return []string{text}
	}

	var chunks []string
	for len(runes) > maxLen {
		cut := maxLen
		if idx := strings.LastIndex(string(runes[:maxLen]), "\n"); idx > 0 {
			cut = len([]rune(string(runes[:maxLen])[:idx])) + 1
		}
		chunks = append(chunks, strings.TrimRight(string(runes[:cut]), "\n"))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
