package valuation

import (
	"slices"
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
)

// EvaluateAlerts checks the asset's alerts and stamps LastTriggered on the ones that fire.
// An alert fires at most once per debounce window and isActive is never changed here.
func EvaluateAlerts(asset model.Asset, alerts []model.Alert, now time.Time, cfg Config) ([]model.Alert, []model.FiredAlert) {
	updated := slices.Clone(alerts)
	var fired []model.FiredAlert

	for i, alert := range updated {
		if !ShouldTrigger(alert, asset, now, cfg) {
			continue
		}

		triggeredAt := now
		alert.LastTriggered = &triggeredAt
		updated[i] = alert

		fired = append(fired, model.FiredAlert{
			Alert:              alert,
			PortfolioID:        asset.PortfolioID,
			Symbol:             asset.Symbol,
			CurrentPrice:       asset.CurrentPrice,
			GainLossPercentage: asset.GainLossPercentage,
			TriggeredAt:        now,
		})
	}

	return updated, fired
}

func ShouldTrigger(alert model.Alert, asset model.Asset, now time.Time, cfg Config) bool {
	if !alert.IsActive {
		return false
	}
	if alert.LastTriggered != nil && now.Sub(*alert.LastTriggered) <= cfg.debounce() {
		return false
	}

	switch alert.Type {
	case model.AlertPriceAbove:
		return asset.CurrentPrice.GreaterThanOrEqual(alert.Value)
	case model.AlertPriceBelow:
		return asset.CurrentPrice.LessThanOrEqual(alert.Value)
	case model.AlertPercentageChange:
		return asset.GainLossPercentage.Abs().GreaterThanOrEqual(alert.Value)
	}
	return false
}
