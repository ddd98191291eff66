package valuation

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
)

// Aggregate recomputes every holding and rolls them into portfolio totals.
func Aggregate(p model.Portfolio) model.Portfolio {
	assets := make([]model.Asset, len(p.Assets))
	totalValue, totalCost := decimal.Zero, decimal.Zero

	for i, a := range p.Assets {
		assets[i] = Recalculate(a)
		totalValue = totalValue.Add(assets[i].CurrentValue)
		totalCost = totalCost.Add(assets[i].TotalCost)
	}

	p.Assets = assets
	p.TotalValue = totalValue
	p.TotalCost = totalCost
	p.TotalGainLoss = totalValue.Sub(totalCost)
	p.TotalGainLossPercentage = percentage(p.TotalGainLoss, totalCost)

	return p
}

// AppendHistory records a snapshot when there is none yet, the value moved,
// or the last one is older than the snapshot interval. Entries past retention are dropped.
func AppendHistory(p model.Portfolio, now time.Time, cfg Config) (model.Portfolio, bool) {
	history := slices.Clone(p.History)
	appended := false

	n := len(history)
	if n == 0 || !history[n-1].TotalValue.Equal(p.TotalValue) || now.Sub(history[n-1].Date) > cfg.snapshotInterval() {
		history = append(history, model.HistoryEntry{
			Date:               now,
			TotalValue:         p.TotalValue,
			TotalCost:          p.TotalCost,
			GainLoss:           p.TotalGainLoss,
			GainLossPercentage: p.TotalGainLossPercentage,
		})
		appended = true
	}

	cutoff := now.Add(-cfg.retention())
	p.History = slices.DeleteFunc(history, func(e model.HistoryEntry) bool {
		return e.Date.Before(cutoff)
	})

	return p, appended
}

// DerivePerformance diffs the current value against a reference snapshot per horizon.
// A horizon with no snapshot inside its band keeps its previous value.
func DerivePerformance(p model.Portfolio, now time.Time, cfg Config) model.Portfolio {
	for _, period := range model.Periods {
		ref, ok := referenceEntry(p.History, now, cfg.PerformanceBands.band(period))
		if !ok {
			continue
		}

		diff := p.TotalValue.Sub(ref.TotalValue)
		p.Performance = p.Performance.WithWindow(period, model.PerformanceWindow{
			Value:      diff,
			Percentage: percentage(diff, ref.TotalValue),
		})
	}
	return p
}

// referenceEntry returns the first entry, in insertion order, whose age is inside the band.
func referenceEntry(history []model.HistoryEntry, now time.Time, band Band) (model.HistoryEntry, bool) {
	for _, e := range history {
		if band.Contains(now.Sub(e.Date)) {
			return e, true
		}
	}
	return model.HistoryEntry{}, false
}

// ParsePeriod accepts an empty string (all horizons) or one of the horizon names.
func ParsePeriod(s string) (model.Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	for _, p := range model.Periods {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
}

// Report builds the getPerformance view, narrowed to one horizon when period is set.
func Report(p model.Portfolio, period model.Period) model.PerformanceReport {
	windows := make(map[model.Period]model.PerformanceWindow, len(model.Periods))
	for _, candidate := range model.Periods {
		if period != "" && candidate != period {
			continue
		}
		w, _ := p.Performance.Window(candidate)
		windows[candidate] = w
	}

	return model.PerformanceReport{
		PortfolioID:             p.PortfolioID,
		UserID:                  p.UserID,
		TotalValue:              p.TotalValue,
		TotalCost:               p.TotalCost,
		TotalGainLoss:           p.TotalGainLoss,
		TotalGainLossPercentage: p.TotalGainLossPercentage,
		Performance:             windows,
		AsOf:                    p.UpdatedAt,
	}
}
