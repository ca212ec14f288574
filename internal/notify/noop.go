package notify

import (
	"context"

	"go.uber.org/zap"
)

// NoopNotifier logs messages instead of delivering them. Used when
// notifications are disabled or no channel URLs are configured.
type NoopNotifier struct {
	logger *zap.Logger
}

// NewNoopNotifier creates a NoopNotifier backed by the given logger.
func NewNoopNotifier(logger *zap.Logger) *NoopNotifier {
	return &NoopNotifier{logger: logger}
}

// Notify logs the message and reports it as not sent.
func (n *NoopNotifier) Notify(_ context.Context, message string) bool {
	n.logger.Info("notification (noop — not sent)", zap.String("message", message))
	return false
}
