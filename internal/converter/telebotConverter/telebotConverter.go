package telebotConverter

import (
	"fmt"
	"strings"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
)

func AlertMessage(alert model.FiredAlert) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🔔 *%s*\n", alert.Symbol))

	switch alert.Alert.Type {
	case model.AlertPriceAbove:
		sb.WriteString(fmt.Sprintf("Цена поднялась до %s (порог %s)\n", alert.CurrentPrice.StringFixed(2), alert.Alert.Value.String()))
	case model.AlertPriceBelow:
		sb.WriteString(fmt.Sprintf("Цена опустилась до %s (порог %s)\n", alert.CurrentPrice.StringFixed(2), alert.Alert.Value.String()))
	case model.AlertPercentageChange:
		sb.WriteString(fmt.Sprintf("Изменение %s%% (порог %s%%)\n", alert.GainLossPercentage.StringFixed(2), alert.Alert.Value.String()))
	}

	sb.WriteString(fmt.Sprintf("Портфель #%d, %s UTC", alert.PortfolioID, alert.TriggeredAt.UTC().Format("2006-01-02 15:04")))

	return sb.String()
}

func QuoteMessage(quote model.Quote) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("📈 *%s*: %s\n", quote.Symbol, quote.Price.StringFixed(2)))
	if quote.Volume > 0 {
		sb.WriteString(fmt.Sprintf("Объем: %d\n", quote.Volume))
	}
	if !quote.Timestamp.IsZero() {
		sb.WriteString(fmt.Sprintf("Обновлено: %s", quote.Timestamp.UTC().Format("2006-01-02")))
	}

	return strings.TrimRight(sb.String(), "\n")
}

func StartMessage(chatID int64) string {
	return fmt.Sprintf(
		"Привет! ID этого чата: `%d`\n\nЧтобы получать уведомления, запросите код привязки в приложении и отправьте его командой /link <код>.",
		chatID,
	)
}
