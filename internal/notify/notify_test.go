package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/riskwatch/internal/contracts"
	"github.com/wonny/riskwatch/pkg/config"
	"github.com/wonny/riskwatch/pkg/httputil"
	"github.com/wonny/riskwatch/pkg/logger"
)

func testEvent() contracts.AlertEvent {
	return contracts.AlertEvent{
		Date:       time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
		PrevLevel:  contracts.SeverityYellow,
		NewLevel:   contracts.SeverityRed,
		Score:      1.82,
		Triggering: []string{"volatility-index", "credit-spread"},
	}
}

func TestFormatAlert(t *testing.T) {
	msg := FormatAlert(testEvent())

	assert.Contains(t, msg, "RED")
	assert.Contains(t, msg, "was yellow")
	assert.Contains(t, msg, "1.82")
	assert.Contains(t, msg, "2026-08-25")
	assert.Contains(t, msg, "volatility-index, credit-spread")
	assert.True(t, strings.HasPrefix(msg, "🚨"), "escalation should use the alarm icon")
}

func TestFormatAlertDeescalation(t *testing.T) {
	event := testEvent()
	event.PrevLevel = contracts.SeverityRed
	event.NewLevel = contracts.SeverityOrange
	event.Triggering = nil

	msg := FormatAlert(event)
	assert.True(t, strings.HasPrefix(msg, "✅"), "de-escalation should use the easing icon")
	assert.NotContains(t, msg, "Driven by")
}

func TestTelegramNotify(t *testing.T) {
	var received sendMessageRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	notifier := NewTelegramNotifier(
		config.TelegramConfig{BotToken: "token", ChatID: 42},
		httputil.New(logger.NewNop()),
	)
	notifier.apiURL = server.URL + "/bot%s/sendMessage"

	err := notifier.Notify(context.Background(), testEvent())
	require.NoError(t, err)

	assert.Equal(t, int64(42), received.ChatID)
	assert.Contains(t, received.Text, "Systemic risk RED")
}

func TestTelegramNotifyMissingCredentials(t *testing.T) {
	notifier := NewTelegramNotifier(config.TelegramConfig{}, httputil.New(logger.NewNop()))

	err := notifier.Notify(context.Background(), testEvent())
	assert.Error(t, err)
}

func TestDiscordNotify(t *testing.T) {
	var payload map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	notifier := NewDiscordNotifier(
		config.DiscordConfig{WebhookURL: server.URL},
		httputil.New(logger.NewNop()),
	)

	err := notifier.Notify(context.Background(), testEvent())
	require.NoError(t, err)
	assert.Contains(t, payload["content"], "Systemic risk RED")
}
