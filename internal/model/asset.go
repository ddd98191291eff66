package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PricePoint struct {
	Date   time.Time       `json:"date"`
	Price  decimal.Decimal `json:"price"`
	Volume int64           `json:"volume"`
}

// Asset is a holding of one symbol inside one portfolio.
type Asset struct {
	AssetID            int64           `json:"assetId"`
	PortfolioID        int64           `json:"portfolioId"`
	Symbol             string          `json:"symbol"`
	Name               string          `json:"name"`
	Quantity           decimal.Decimal `json:"quantity"`
	AveragePrice       decimal.Decimal `json:"averagePrice"`
	CurrentPrice       decimal.Decimal `json:"currentPrice"`
	TotalCost          decimal.Decimal `json:"totalCost"`
	CurrentValue       decimal.Decimal `json:"currentValue"`
	GainLoss           decimal.Decimal `json:"gainLoss"`
	GainLossPercentage decimal.Decimal `json:"gainLossPercentage"`
	RealizedGainLoss   decimal.Decimal `json:"realizedGainLoss"`
	DividendIncome     decimal.Decimal `json:"dividendIncome"`
	LastPriceUpdate    time.Time       `json:"lastPriceUpdate"`
	PriceHistory       []PricePoint    `json:"priceHistory,omitempty"`
}

// HoldingInput describes a buy coming from the routing layer. Either AssetID or Symbol must be set.
type HoldingInput struct {
	AssetID  *int64          `json:"assetId,omitempty"`
	Symbol   string          `json:"symbol,omitempty"`
	Name     string          `json:"name,omitempty"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Fees     decimal.Decimal `json:"fees"`
	Date     *time.Time      `json:"date,omitempty"`
}
