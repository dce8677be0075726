package notify

import (
	"fmt"
	"strings"

	"github.com/wonny/riskwatch/internal/contracts"
)

// FormatAlert renders an AlertEvent as the outbound message text
// 예: 🚨 Systemic risk RED (was orange). Score=1.82 [2026-08-25]
func FormatAlert(event contracts.AlertEvent) string {
	var b strings.Builder

	icon := "✅"
	if event.Escalation() {
		icon = "🚨"
	}

	fmt.Fprintf(&b, "%s Systemic risk %s (was %s). Score=%.2f [%s]",
		icon,
		strings.ToUpper(string(event.NewLevel)),
		event.PrevLevel,
		event.Score,
		event.Date.Format("2006-01-02"),
	)

	if len(event.Triggering) > 0 {
		fmt.Fprintf(&b, "\nDriven by: %s", strings.Join(event.Triggering, ", "))
	}

	return b.String()
}
