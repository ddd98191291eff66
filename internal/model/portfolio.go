package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

var Periods = []Period{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly}

type Portfolio struct {
	PortfolioID             int64           `json:"portfolioId"`
	UserID                  int64           `json:"userId"`
	Name                    string          `json:"name"`
	Assets                  []Asset         `json:"assets"`
	TotalValue              decimal.Decimal `json:"totalValue"`
	TotalCost               decimal.Decimal `json:"totalCost"`
	TotalGainLoss           decimal.Decimal `json:"totalGainLoss"`
	TotalGainLossPercentage decimal.Decimal `json:"totalGainLossPercentage"`
	History                 []HistoryEntry  `json:"history,omitempty"`
	Performance             Performance     `json:"performance"`
	CreatedAt               time.Time       `json:"createdAt"`
	UpdatedAt               time.Time       `json:"updatedAt"`
}

type HistoryEntry struct {
	Date               time.Time       `json:"date"`
	TotalValue         decimal.Decimal `json:"totalValue"`
	TotalCost          decimal.Decimal `json:"totalCost"`
	GainLoss           decimal.Decimal `json:"gainLoss"`
	GainLossPercentage decimal.Decimal `json:"gainLossPercentage"`
}

type PerformanceWindow struct {
	Value      decimal.Decimal `json:"value"`
	Percentage decimal.Decimal `json:"percentage"`
}

type Performance struct {
	Daily   PerformanceWindow `json:"daily"`
	Weekly  PerformanceWindow `json:"weekly"`
	Monthly PerformanceWindow `json:"monthly"`
	Yearly  PerformanceWindow `json:"yearly"`
}

func (p Performance) Window(period Period) (PerformanceWindow, bool) {
	switch period {
	case PeriodDaily:
		return p.Daily, true
	case PeriodWeekly:
		return p.Weekly, true
	case PeriodMonthly:
		return p.Monthly, true
	case PeriodYearly:
		return p.Yearly, true
	}
	return PerformanceWindow{}, false
}

func (p Performance) WithWindow(period Period, w PerformanceWindow) Performance {
	switch period {
	case PeriodDaily:
		p.Daily = w
	case PeriodWeekly:
		p.Weekly = w
	case PeriodMonthly:
		p.Monthly = w
	case PeriodYearly:
		p.Yearly = w
	}
	return p
}

// PerformanceReport is what getPerformance hands back to the routing layer.
type PerformanceReport struct {
	PortfolioID             int64                        `json:"portfolioId"`
	UserID                  int64                        `json:"userId"`
	TotalValue              decimal.Decimal              `json:"totalValue"`
	TotalCost               decimal.Decimal              `json:"totalCost"`
	TotalGainLoss           decimal.Decimal              `json:"totalGainLoss"`
	TotalGainLossPercentage decimal.Decimal              `json:"totalGainLossPercentage"`
	Performance             map[Period]PerformanceWindow `json:"performance"`
	AsOf                    time.Time                    `json:"asOf"`
}
