// Package summarizer turns collected articles into the digest text that is
// delivered to the user. Adapters exist for Claude and OpenAI, plus a noop
// adapter that formats plain headlines when no LLM is configured.
package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"daily-brief/internal/domain/entity"
)

// Item is one article plus its scraped body text. Content may be empty
// when the page could not be scraped; the headline still carries signal.
type Item struct {
	Article entity.Article
	Content string
}

// Section groups the surviving articles of one topic.
type Section struct {
	Topic string
	Items []Item
}

// Summarizer generates digest text from per-topic article sections.
type Summarizer interface {
	Summarize(ctx context.Context, sections []Section) (string, error)
}

// Config holds shared summarizer settings.
type Config struct {
	// CharacterLimit is the target maximum length of the digest text.
	CharacterLimit int

	// Model is the provider-specific model identifier.
	Model string

	// MaxTokens caps the API response size.
	MaxTokens int

	// Timeout bounds a single summarization call.
	Timeout time.Duration
}

// LoadConfig loads shared settings from the environment. An invalid
// SUMMARIZER_CHAR_LIMIT falls back to the default with a warning.
//
// Environment variables:
//   - SUMMARIZER_CHAR_LIMIT: digest length target (default 900, range 100-5000)
func LoadConfig(model string) Config {
	const (
		defaultCharLimit = 900
		minCharLimit     = 100
		maxCharLimit     = 5000
	)

	charLimit := defaultCharLimit
	if env := os.Getenv("SUMMARIZER_CHAR_LIMIT"); env != "" {
		parsed, err := strconv.Atoi(env)
		switch {
		case err != nil:
			slog.Warn("invalid SUMMARIZER_CHAR_LIMIT format, using default",
				slog.String("value", env),
				slog.Int("default", defaultCharLimit))
		case parsed < minCharLimit || parsed > maxCharLimit:
			slog.Warn("SUMMARIZER_CHAR_LIMIT out of range, using default",
				slog.Int("value", parsed),
				slog.Int("min", minCharLimit),
				slog.Int("max", maxCharLimit))
		default:
			charLimit = parsed
		}
	}

	return Config{
		CharacterLimit: charLimit,
		Model:          model,
		MaxTokens:      1024,
		Timeout:        60 * time.Second,
	}
}

// buildPrompt constructs the LLM prompt for a digest run.
func buildPrompt(sections []Section, charLimit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You write a short morning news digest for WhatsApp. "+
		"Summarize the stories below in at most %d characters. "+
		"Group by topic, one short bullet per story, plain text only, no markdown. "+
		"Skip stories that are clearly promotional.\n\n", charLimit)

	for _, section := range sections {
		fmt.Fprintf(&b, "## %s\n", section.Topic)
		for _, item := range section.Items {
			fmt.Fprintf(&b, "- %s (%s)\n", item.Article.Title, item.Article.Source)
			if item.Content != "" {
				fmt.Fprintf(&b, "  %s\n", item.Content)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// formatHeadlines renders sections as a plain headline list. It is the
// noop adapter's output and the shape a degenerate (empty) digest takes.
func formatHeadlines(sections []Section) string {
	var b strings.Builder
	b.WriteString("Daily brief\n")

	empty := true
	for _, section := range sections {
		if len(section.Items) == 0 {
			continue
		}
		empty = false
		fmt.Fprintf(&b, "\n%s:\n", section.Topic)
		for _, item := range section.Items {
			fmt.Fprintf(&b, "- %s (%s)\n  %s\n", item.Article.Title, item.Article.Source, item.Article.URL)
		}
	}
	if empty {
		b.WriteString("\nNo fresh articles today.\n")
	}
	return b.String()
}
