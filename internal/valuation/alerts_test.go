package valuation

import (
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateAlerts(t *testing.T) {
	cfg := DefaultConfig()
	asset := Recalculate(model.Asset{
		PortfolioID:  3,
		Symbol:       "AAPL",
		Quantity:     d("10"),
		AveragePrice: d("100"),
		CurrentPrice: d("112"),
	})

	tests := []struct {
		name  string
		alert model.Alert
		fires bool
	}{
		{"above reached", model.Alert{Type: model.AlertPriceAbove, Value: d("110"), IsActive: true}, true},
		{"above exact", model.Alert{Type: model.AlertPriceAbove, Value: d("112"), IsActive: true}, true},
		{"above not reached", model.Alert{Type: model.AlertPriceAbove, Value: d("120"), IsActive: true}, false},
		{"below reached", model.Alert{Type: model.AlertPriceBelow, Value: d("115"), IsActive: true}, true},
		{"below not reached", model.Alert{Type: model.AlertPriceBelow, Value: d("100"), IsActive: true}, false},
		{"percentage reached", model.Alert{Type: model.AlertPercentageChange, Value: d("12"), IsActive: true}, true},
		{"percentage not reached", model.Alert{Type: model.AlertPercentageChange, Value: d("15"), IsActive: true}, false},
		{"inactive", model.Alert{Type: model.AlertPriceAbove, Value: d("1"), IsActive: false}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, fired := EvaluateAlerts(asset, []model.Alert{tt.alert}, now, cfg)
			require.Len(t, updated, 1)

			if !tt.fires {
				assert.Empty(t, fired)
				assert.Nil(t, updated[0].LastTriggered)
				return
			}

			require.Len(t, fired, 1)
			require.NotNil(t, updated[0].LastTriggered)
			assert.Equal(t, now, *updated[0].LastTriggered)
			assert.Equal(t, "AAPL", fired[0].Symbol)
			assert.Equal(t, int64(3), fired[0].PortfolioID)
			assert.True(t, updated[0].IsActive)
		})
	}
}

func TestEvaluateAlertsNegativeMovement(t *testing.T) {
	asset := Recalculate(model.Asset{Quantity: d("1"), AveragePrice: d("100"), CurrentPrice: d("80")})
	alert := model.Alert{Type: model.AlertPercentageChange, Value: d("20"), IsActive: true}

	_, fired := EvaluateAlerts(asset, []model.Alert{alert}, now, DefaultConfig())
	assert.Len(t, fired, 1)
}

func TestEvaluateAlertsDebounce(t *testing.T) {
	cfg := DefaultConfig()
	asset := Recalculate(model.Asset{Quantity: d("1"), AveragePrice: d("1"), CurrentPrice: d("50")})
	alerts := []model.Alert{{AlertID: 1, Type: model.AlertPriceAbove, Value: d("10"), IsActive: true}}

	alerts, fired := EvaluateAlerts(asset, alerts, now, cfg)
	require.Len(t, fired, 1)

	for _, offset := range []time.Duration{time.Minute, 12 * time.Hour, 24 * time.Hour} {
		var again []model.FiredAlert
		alerts, again = EvaluateAlerts(asset, alerts, now.Add(offset), cfg)
		assert.Empty(t, again, "offset %s", offset)
	}
	assert.Equal(t, now, *alerts[0].LastTriggered)

	alerts, fired = EvaluateAlerts(asset, alerts, now.Add(24*time.Hour+time.Second), cfg)
	require.Len(t, fired, 1)
	assert.Equal(t, now.Add(24*time.Hour+time.Second), *alerts[0].LastTriggered)
}

func TestEvaluateAlertsDoesNotModifyInput(t *testing.T) {
	asset := Recalculate(model.Asset{Quantity: d("1"), AveragePrice: d("1"), CurrentPrice: d("50")})
	alerts := []model.Alert{{Type: model.AlertPriceAbove, Value: d("10"), IsActive: true}}

	EvaluateAlerts(asset, alerts, now, DefaultConfig())
	assert.Nil(t, alerts[0].LastTriggered)
}
