// Package notify delivers best-effort operator notifications. Delivery
// failures are logged and swallowed; nothing in the update path may ever
// fail because a notification did not go out.
package notify

import "context"

// Notifier sends a human-readable status message to the configured channels.
// The return value reports whether the message was actually delivered
// somewhere; "not sent" is a valid, non-error outcome.
type Notifier interface {
	Notify(ctx context.Context, message string) bool
}
