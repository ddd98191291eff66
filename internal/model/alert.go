package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type AlertType string

const (
	AlertPriceAbove       AlertType = "price_above"
	AlertPriceBelow       AlertType = "price_below"
	AlertPercentageChange AlertType = "percentage_change"
)

func (t AlertType) Valid() bool {
	switch t {
	case AlertPriceAbove, AlertPriceBelow, AlertPercentageChange:
		return true
	}
	return false
}

type Alert struct {
	AlertID       int64           `json:"alertId"`
	AssetID       int64           `json:"assetId"`
	Type          AlertType       `json:"type"`
	Value         decimal.Decimal `json:"value"`
	IsActive      bool            `json:"isActive"`
	LastTriggered *time.Time      `json:"lastTriggered,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type FiredAlert struct {
	Alert              Alert           `json:"alert"`
	UserID             int64           `json:"userId"`
	PortfolioID        int64           `json:"portfolioId"`
	Symbol             string          `json:"symbol"`
	CurrentPrice       decimal.Decimal `json:"currentPrice"`
	GainLossPercentage decimal.Decimal `json:"gainLossPercentage"`
	TriggeredAt        time.Time       `json:"triggeredAt"`
}
