// Package notifier delivers the finished digest text to the user. The
// Deliverer interface lets delivery mechanisms be swapped through dependency
// injection; implementations handle rate limiting internally, while retry is
// applied by the caller so one policy covers every deliverer.
package notifier

import "context"

// Deliverer sends one digest message.
type Deliverer interface {
	// Deliver sends the digest text. A non-nil error means this attempt
	// failed; the caller decides whether to retry.
	Deliver(ctx context.Context, text string) error
}
