package notifier

import (
	"context"
	"log/slog"
)

// NoopNotifier logs the digest instead of sending it. Used for dry runs
// and when no gateway is configured.
type NoopNotifier struct {
	logger *slog.Logger
}

// NewNoopNotifier creates a noop notifier.
func NewNoopNotifier(logger *slog.Logger) *NoopNotifier {
	return &NoopNotifier{logger: logger}
}

// Deliver implements Deliverer.
func (n *NoopNotifier) Deliver(_ context.Context, text string) error {
	n.logger.Info("dry run, digest not sent",
		slog.Int("length", len([]rune(text))),
	)
	return nil
}
