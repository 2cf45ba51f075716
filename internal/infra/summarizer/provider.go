package summarizer

import (
	"fmt"
	"log/slog"
	"os"
)

// NewFromEnv selects a summarizer from the environment.
//
// SUMMARIZER_PROVIDER picks explicitly ("claude", "openai", "none"). When
// unset, the first provider with an API key wins; with no key configured
// the noop summarizer is used so the pipeline still delivers headlines.
func NewFromEnv(logger *slog.Logger) (Summarizer, error) {
	provider := os.Getenv("SUMMARIZER_PROVIDER")

	switch provider {
	case "claude":
		key := os.Getenv("ANTHROPIC_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("SUMMARIZER_PROVIDER=claude but ANTHROPIC_API_KEY is not set")
		}
		return NewClaude(key, logger), nil

	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("SUMMARIZER_PROVIDER=openai but OPENAI_API_KEY is not set")
		}
		return NewOpenAI(key, logger), nil

	case "none":
		return NewNoop(), nil

	case "":
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
			return NewClaude(key, logger), nil
		}
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			return NewOpenAI(key, logger), nil
		}
		logger.Warn("no summarizer API key configured, digest will contain raw headlines")
		return NewNoop(), nil

	default:
		return nil, fmt.Errorf("unknown SUMMARIZER_PROVIDER %q", provider)
	}
}
