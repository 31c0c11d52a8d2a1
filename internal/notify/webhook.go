package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// WebhookNotifier POSTs messages as JSON to an arbitrary HTTP endpoint.
type WebhookNotifier struct {
	logger *zap.Logger
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a webhook-backed notifier.
func NewWebhookNotifier(logger *zap.Logger, url string) *WebhookNotifier {
	return &WebhookNotifier{
		logger: logger.Named("notify"),
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send implements Notifier.
func (n *WebhookNotifier) Send(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook status %d", resp.StatusCode)
	}
	return nil
}

// Name implements Notifier.
func (n *WebhookNotifier) Name() string { return "webhook" }
