package notify

import (
	"context"
	"fmt"
	"io"

	"github.com/wonny/riskwatch/internal/contracts"
	"github.com/wonny/riskwatch/pkg/config"
	"github.com/wonny/riskwatch/pkg/httputil"
)

const telegramAPIURL = "https://api.telegram.org/bot%s/sendMessage"

// TelegramNotifier delivers alerts via the Telegram Bot API
// ⭐ SSOT: Telegram 발송은 여기서만
type TelegramNotifier struct {
	botToken string
	chatID   int64
	apiURL   string
	client   *httputil.Client
}

// NewTelegramNotifier creates a Telegram notifier from config
func NewTelegramNotifier(cfg config.TelegramConfig, client *httputil.Client) *TelegramNotifier {
	return &TelegramNotifier{
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		apiURL:   telegramAPIURL,
		client:   client,
	}
}

// Name returns the channel name
func (n *TelegramNotifier) Name() string {
	return "telegram"
}

// sendMessageRequest is the Telegram sendMessage payload
type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// Notify sends the alert message to the configured chat
func (n *TelegramNotifier) Notify(ctx context.Context, event contracts.AlertEvent) error {
	if n.botToken == "" || n.chatID == 0 {
		return fmt.Errorf("telegram credentials missing")
	}

	url := fmt.Sprintf(n.apiURL, n.botToken)
	payload := sendMessageRequest{
		ChatID: n.chatID,
		Text:   FormatAlert(event),
	}

	resp, err := n.client.PostJSON(ctx, url, payload)
	if err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API error: status=%d body=%s", resp.StatusCode, string(body))
	}

	return nil
}

var _ contracts.Notifier = (*TelegramNotifier)(nil)
