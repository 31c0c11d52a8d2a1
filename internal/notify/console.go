package notify

import (
	"context"

	"go.uber.org/zap"
)

// ConsoleNotifier writes messages to the process log. It is the default
// transport and the degraded-mode substitute when a real transport is
// misconfigured.
type ConsoleNotifier struct {
	logger *zap.Logger
}

// NewConsoleNotifier creates a log-backed notifier.
func NewConsoleNotifier(logger *zap.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{logger: logger.Named("notify")}
}

// Send implements Notifier.
func (n *ConsoleNotifier) Send(_ context.Context, text string) error {
	n.logger.Info("Notification", zap.String("message", text))
	return nil
}

// Name implements Notifier.
func (n *ConsoleNotifier) Name() string { return "console" }
