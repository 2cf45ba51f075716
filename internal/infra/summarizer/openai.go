package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"daily-brief/internal/observability/metrics"
	"daily-brief/internal/resilience/circuitbreaker"
	"daily-brief/internal/resilience/retry"
)

// OpenAI summarizes via the chat completions API. Same resilience shape as
// the Claude adapter.
type OpenAI struct {
	client      *openai.Client
	breaker     *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
	pacer       *rate.Limiter
	config      Config
	logger      *slog.Logger
}

// NewOpenAI creates an OpenAI summarizer with the given API key.
func NewOpenAI(apiKey string, logger *slog.Logger) *OpenAI {
	return newOpenAIWithClient(openai.NewClient(apiKey), logger)
}

// newOpenAIWithClient exists so tests can point the client at a local server.
func newOpenAIWithClient(client *openai.Client, logger *slog.Logger) *OpenAI {
	return &OpenAI{
		client:      client,
		breaker:     circuitbreaker.New(circuitbreaker.DefaultConfig("openai_api")),
		retryConfig: retry.SummarizeConfig(),
		pacer:       rate.NewLimiter(rate.Every(2*time.Second), 1),
		config:      LoadConfig(openai.GPT4oMini),
		logger:      logger,
	}
}

// Summarize implements Summarizer.
func (o *OpenAI) Summarize(ctx context.Context, sections []Section) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	if err := o.pacer.Wait(ctx); err != nil {
		return "", fmt.Errorf("openai pacing wait: %w", err)
	}

	var result string
	err := retry.Do(ctx, o.retryConfig, func() error {
		out, err := o.breaker.Execute(func() (interface{}, error) {
			return o.doSummarize(ctx, sections)
		})
		if err != nil {
			if circuitbreaker.IsOpenError(err) {
				o.logger.Warn("openai circuit open, request rejected")
				metrics.RecordCircuitOpen(o.breaker.Name())
			}
			return err
		}
		result = out.(string)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("openai summarize: %w", err)
	}
	return result, nil
}

func (o *OpenAI) doSummarize(ctx context.Context, sections []Section) (string, error) {
	prompt := buildPrompt(sections, o.config.CharacterLimit)
	start := time.Now()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.config.Model,
		MaxTokens: o.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	metrics.RecordSummarizeDuration(time.Since(start))

	if err != nil {
		return "", fmt.Errorf("openai api: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai api returned no choices")
	}

	summary := resp.Choices[0].Message.Content
	o.logger.Info("summary generated",
		slog.String("provider", "openai"),
		slog.Int("summary_length", len([]rune(summary))),
		slog.Duration("duration", time.Since(start)),
	)
	return summary, nil
}
