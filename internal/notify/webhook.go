package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// WebhookNotifier POSTs the message as JSON to each configured URL.
type WebhookNotifier struct {
	urls   []string
	client *http.Client
	logger *zap.Logger
}

// NewWebhookNotifier creates a WebhookNotifier for the given channel URLs.
func NewWebhookNotifier(urls []string, timeout time.Duration, logger *zap.Logger) *WebhookNotifier {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &WebhookNotifier{
		urls:   urls,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Notify delivers message to every channel, returning true if at least one
// delivery succeeded. Per-channel failures are logged and skipped.
func (n *WebhookNotifier) Notify(ctx context.Context, message string) bool {
	body, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		n.logger.Warn("encode notification", zap.Error(err))
		return false
	}

	delivered := false
	for _, url := range n.urls {
		if url == "" {
			continue
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			n.logger.Warn("build notification request", zap.String("url", url), zap.Error(err))
			continue
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			n.logger.Warn("notification delivery failed", zap.String("url", url), zap.Error(err))
			continue
		}
		resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			n.logger.Warn("notification rejected",
				zap.String("url", url),
				zap.Int("status", resp.StatusCode),
			)
			continue
		}
		delivered = true
	}

	if delivered {
		n.logger.Info("notification sent", zap.Int("channels", len(n.urls)))
	}
	return delivered
}
