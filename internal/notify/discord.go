package notify

import (
	"context"
	"fmt"

	"github.com/wonny/riskwatch/internal/contracts"
	"github.com/wonny/riskwatch/pkg/config"
	"github.com/wonny/riskwatch/pkg/httputil"
)

// DiscordNotifier delivers alerts via a Discord webhook
type DiscordNotifier struct {
	webhookURL string
	client     *httputil.Client
}

// NewDiscordNotifier creates a Discord notifier from config
func NewDiscordNotifier(cfg config.DiscordConfig, client *httputil.Client) *DiscordNotifier {
	return &DiscordNotifier{
		webhookURL: cfg.WebhookURL,
		client:     client,
	}
}

// Name returns the channel name
func (n *DiscordNotifier) Name() string {
	return "discord"
}

// Notify posts the alert message to the webhook
func (n *DiscordNotifier) Notify(ctx context.Context, event contracts.AlertEvent) error {
	if n.webhookURL == "" {
		return fmt.Errorf("discord webhook URL missing")
	}

	payload := map[string]string{"content": FormatAlert(event)}

	resp, err := n.client.PostJSON(ctx, n.webhookURL, payload)
	if err != nil {
		return fmt.Errorf("discord send failed: %w", err)
	}
	defer resp.Body.Close()

	// Discord returns 204 on success
	if resp.StatusCode >= 300 {
		return fmt.Errorf("discord API error: status=%d", resp.StatusCode)
	}

	return nil
}

var _ contracts.Notifier = (*DiscordNotifier)(nil)
