package dbConverter

import (
	"database/sql"
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/model/dbModel"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetNilHistoryStoredAsEmptyArray(t *testing.T) {
	row, err := ToDbAsset(model.Asset{Symbol: "AAPL"})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(row.PriceHistory))
	assert.False(t, row.LastPriceUpdate.Valid)
}

func TestConvertAssetHistory(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	row := dbModel.Asset{
		AssetID:         5,
		Symbol:          "TCS.NS",
		Quantity:        decimal.NewFromInt(3),
		PriceHistory:    []byte(`[{"date":"2025-01-02T03:04:05Z","price":"4100.5","volume":12}]`),
		LastPriceUpdate: sql.NullTime{Time: ts, Valid: true},
	}

	asset, err := ConvertAsset(row)
	require.NoError(t, err)
	require.Len(t, asset.PriceHistory, 1)
	assert.True(t, decimal.RequireFromString("4100.5").Equal(asset.PriceHistory[0].Price))
	assert.Equal(t, int64(12), asset.PriceHistory[0].Volume)
	assert.True(t, ts.Equal(asset.LastPriceUpdate))
}

func TestConvertAssetBrokenHistory(t *testing.T) {
	_, err := ConvertAsset(dbModel.Asset{PriceHistory: []byte(`{`)})
	assert.Error(t, err)
}

func TestConvertPortfolioPerformance(t *testing.T) {
	row := dbModel.Portfolio{
		PortfolioID: 1,
		History:     []byte(`[]`),
		Performance: []byte(`{"weekly":{"value":"10","percentage":"2.5"}}`),
	}

	p, err := ConvertPortfolio(row)
	require.NoError(t, err)
	assert.Empty(t, p.History)
	assert.True(t, decimal.RequireFromString("2.5").Equal(p.Performance.Weekly.Percentage))
	assert.True(t, p.Performance.Daily.Value.IsZero())
}

func TestConvertAlertLastTriggered(t *testing.T) {
	alert := ConvertAlert(dbModel.Alert{AlertID: 1, Type: "price_above"})
	assert.Nil(t, alert.LastTriggered)
	assert.Equal(t, model.AlertPriceAbove, alert.Type)

	ts := time.Now()
	alert = ConvertAlert(dbModel.Alert{LastTriggered: sql.NullTime{Time: ts, Valid: true}})
	require.NotNil(t, alert.LastTriggered)
	assert.True(t, ts.Equal(*alert.LastTriggered))
}
