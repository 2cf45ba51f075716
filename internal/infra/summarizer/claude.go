package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"

	"daily-brief/internal/observability/metrics"
	"daily-brief/internal/resilience/circuitbreaker"
	"daily-brief/internal/resilience/retry"
)

// Claude summarizes via Anthropic's Messages API. Calls are paced with a
// token bucket, retried on transient failures, and guarded by a circuit
// breaker so a dead API fails fast instead of burning the retry budget.
type Claude struct {
	client      anthropic.Client
	breaker     *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
	pacer       *rate.Limiter
	config      Config
	logger      *slog.Logger
}

// NewClaude creates a Claude summarizer with the given API key.
func NewClaude(apiKey string, logger *slog.Logger, opts ...option.RequestOption) *Claude {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Claude{
		client:      anthropic.NewClient(opts...),
		breaker:     circuitbreaker.New(circuitbreaker.DefaultConfig("claude_api")),
		retryConfig: retry.SummarizeConfig(),
		pacer:       rate.NewLimiter(rate.Every(2*time.Second), 1),
		config:      LoadConfig(string(anthropic.ModelClaudeSonnet4_5_20250929)),
		logger:      logger,
	}
}

// Summarize implements Summarizer.
func (c *Claude) Summarize(ctx context.Context, sections []Section) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	if err := c.pacer.Wait(ctx); err != nil {
		return "", fmt.Errorf("claude pacing wait: %w", err)
	}

	var result string
	err := retry.Do(ctx, c.retryConfig, func() error {
		out, err := c.breaker.Execute(func() (interface{}, error) {
			return c.doSummarize(ctx, sections)
		})
		if err != nil {
			if circuitbreaker.IsOpenError(err) {
				c.logger.Warn("claude circuit open, request rejected")
				metrics.RecordCircuitOpen(c.breaker.Name())
			}
			return err
		}
		result = out.(string)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("claude summarize: %w", err)
	}
	return result, nil
}

func (c *Claude) doSummarize(ctx context.Context, sections []Section) (string, error) {
	prompt := buildPrompt(sections, c.config.CharacterLimit)
	start := time.Now()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	metrics.RecordSummarizeDuration(time.Since(start))

	if err != nil {
		return "", fmt.Errorf("claude api: %w", err)
	}
	if len(message.Content) == 0 {
		return "", fmt.Errorf("claude api returned empty response")
	}

	block, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("claude api returned unexpected content type")
	}

	c.logger.Info("summary generated",
		slog.String("provider", "claude"),
		slog.Int("summary_length", len([]rune(block.Text))),
		slog.Duration("duration", time.Since(start)),
	)
	return block.Text, nil
}
