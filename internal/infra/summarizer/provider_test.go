package summarizer

import (
	"context"
	"log/slog"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func clearProviderEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SUMMARIZER_PROVIDER", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
}

func TestNewFromEnv_ExplicitClaude(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("SUMMARIZER_PROVIDER", "claude")
	t.Setenv("ANTHROPIC_API_KEY", "key")

	s, err := NewFromEnv(testLogger())
	if err != nil {
		t.Fatalf("NewFromEnv() error = %v", err)
	}
	if _, ok := s.(*Claude); !ok {
		t.Errorf("summarizer type = %T, want *Claude", s)
	}
}

func TestNewFromEnv_ExplicitClaudeMissingKey(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("SUMMARIZER_PROVIDER", "claude")

	if _, err := NewFromEnv(testLogger()); err == nil {
		t.Fatal("NewFromEnv() error = nil, want missing key error")
	}
}

func TestNewFromEnv_ExplicitOpenAI(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("SUMMARIZER_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "key")

	s, err := NewFromEnv(testLogger())
	if err != nil {
		t.Fatalf("NewFromEnv() error = %v", err)
	}
	if _, ok := s.(*OpenAI); !ok {
		t.Errorf("summarizer type = %T, want *OpenAI", s)
	}
}

func TestNewFromEnv_AutoPrefersClaude(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "a")
	t.Setenv("OPENAI_API_KEY", "b")

	s, err := NewFromEnv(testLogger())
	if err != nil {
		t.Fatalf("NewFromEnv() error = %v", err)
	}
	if _, ok := s.(*Claude); !ok {
		t.Errorf("summarizer type = %T, want *Claude when both keys set", s)
	}
}

func TestNewFromEnv_NoKeysFallsBackToNoop(t *testing.T) {
	clearProviderEnv(t)

	s, err := NewFromEnv(testLogger())
	if err != nil {
		t.Fatalf("NewFromEnv() error = %v", err)
	}
	if _, ok := s.(*Noop); !ok {
		t.Errorf("summarizer type = %T, want *Noop", s)
	}
}

func TestNewFromEnv_UnknownProvider(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("SUMMARIZER_PROVIDER", "bard")

	_, err := NewFromEnv(testLogger())
	if err == nil || !strings.Contains(err.Error(), "bard") {
		t.Fatalf("NewFromEnv() error = %v, want unknown provider error naming it", err)
	}
}

func TestNoop_Summarize(t *testing.T) {
	out, err := NewNoop().Summarize(context.Background(), sampleSections())
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if !strings.Contains(out, "Go 1.25 released") {
		t.Errorf("noop output missing headline:\n%s", out)
	}
}
