package summarizer

import "context"

// Noop formats plain headlines without calling any LLM. It is the digest
// of last resort: used when no provider is configured and in dry runs.
type Noop struct{}

// NewNoop creates a noop summarizer.
func NewNoop() *Noop { return &Noop{} }

// Summarize implements Summarizer.
func (n *Noop) Summarize(_ context.Context, sections []Section) (string, error) {
	return formatHeadlines(sections), nil
}
