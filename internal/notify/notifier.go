// Package notify delivers human-readable cycle summaries over a single
// outbound text capability. Transports are selected by configuration;
// delivery is fire-and-forget and a failed send never affects a cycle.
package notify

import "context"

// Notifier is the outbound message capability.
type Notifier interface {
	Send(ctx context.Context, text string) error
	Name() string
}
