package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramNotifier pushes messages through the Telegram Bot API.
type TelegramNotifier struct {
	logger   *zap.Logger
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
}

// NewTelegramNotifier creates a Telegram-backed notifier.
func NewTelegramNotifier(logger *zap.Logger, botToken, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		logger:   logger.Named("notify"),
		botToken: botToken,
		chatID:   chatID,
		baseURL:  telegramAPIBase,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// WithBaseURL overrides the API host, used by tests.
func (n *TelegramNotifier) WithBaseURL(base string) *TelegramNotifier {
	n.baseURL = base
	return n
}

// Send implements Notifier.
func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id":    n.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram API status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Name implements Notifier.
func (n *TelegramNotifier) Name() string { return "telegram" }
