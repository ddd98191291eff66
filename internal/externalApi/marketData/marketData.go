package marketData

import (
	"context"
	"strings"

	"github.com/KotFed0t/portfolio_tracker/internal/externalApi"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
)

type Provider interface {
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
	GetHistorical(ctx context.Context, symbol, period string) ([]model.PricePoint, error)
	Usage() externalApi.UsageStats
}

// MarketData sends Indian exchange symbols (.NS, .BO) to one provider and everything else to the other.
type MarketData struct {
	global Provider
	indian Provider
}

func New(global, indian Provider) *MarketData {
	return &MarketData{global: global, indian: indian}
}

func IsIndianSymbol(symbol string) bool {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	return strings.HasSuffix(symbol, ".NS") || strings.HasSuffix(symbol, ".BO")
}

func (m *MarketData) providerFor(symbol string) Provider {
	if IsIndianSymbol(symbol) {
		return m.indian
	}
	return m.global
}

func (m *MarketData) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	return m.providerFor(symbol).GetQuote(ctx, symbol)
}

func (m *MarketData) GetHistorical(ctx context.Context, symbol, period string) ([]model.PricePoint, error) {
	return m.providerFor(symbol).GetHistorical(ctx, symbol, period)
}

func (m *MarketData) Usage() []externalApi.UsageStats {
	return []externalApi.UsageStats{m.global.Usage(), m.indian.Usage()}
}
