// Package valuation computes holding and portfolio figures.
//
// Every function takes its inputs by value and returns a new value; slices
// held by the inputs are cloned before they are appended to or pruned.
package valuation

import (
	"fmt"
	"slices"
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Metrics struct {
	TotalCost          decimal.Decimal
	CurrentValue       decimal.Decimal
	GainLoss           decimal.Decimal
	GainLossPercentage decimal.Decimal
}

// SellResult reports how much of a sell was filled against the held quantity.
type SellResult struct {
	Requested decimal.Decimal
	Filled    decimal.Decimal
	Unfilled  decimal.Decimal
	Realized  decimal.Decimal
}

func (r SellResult) Clamped() bool {
	return r.Unfilled.IsPositive()
}

func CalculateMetrics(quantity, averagePrice, currentPrice decimal.Decimal) Metrics {
	totalCost := quantity.Mul(averagePrice)
	currentValue := quantity.Mul(currentPrice)
	gainLoss := currentValue.Sub(totalCost)

	return Metrics{
		TotalCost:          totalCost,
		CurrentValue:       currentValue,
		GainLoss:           gainLoss,
		GainLossPercentage: percentage(gainLoss, totalCost),
	}
}

// percentage returns part/base*100, or zero when base is not positive.
func percentage(part, base decimal.Decimal) decimal.Decimal {
	if !base.IsPositive() {
		return decimal.Zero
	}
	return part.Div(base).Mul(hundred)
}

func Recalculate(asset model.Asset) model.Asset {
	m := CalculateMetrics(asset.Quantity, asset.AveragePrice, asset.CurrentPrice)
	asset.TotalCost = m.TotalCost
	asset.CurrentValue = m.CurrentValue
	asset.GainLoss = m.GainLoss
	asset.GainLossPercentage = m.GainLossPercentage
	return asset
}

// UpdatePrice applies a market tick. Non-positive prices leave the asset untouched and report false.
func UpdatePrice(asset model.Asset, price decimal.Decimal, volume int64, now time.Time, cfg Config) (model.Asset, bool) {
	if !price.IsPositive() {
		return asset, false
	}

	asset.CurrentPrice = price
	asset.LastPriceUpdate = now

	history := slices.Clone(asset.PriceHistory)
	if n := len(history); n == 0 || !history[n-1].Price.Equal(price) {
		history = append(history, model.PricePoint{Date: now, Price: price, Volume: volume})
	}

	cutoff := now.Add(-cfg.retention())
	asset.PriceHistory = slices.DeleteFunc(history, func(p model.PricePoint) bool {
		return p.Date.Before(cutoff)
	})

	return Recalculate(asset), true
}

// ApplyBuy folds a purchase into the weighted average cost.
func ApplyBuy(asset model.Asset, quantity, price decimal.Decimal) model.Asset {
	if quantity.IsZero() {
		return Recalculate(asset)
	}

	newQuantity := asset.Quantity.Add(quantity)
	if newQuantity.IsPositive() {
		asset.AveragePrice = asset.Quantity.Mul(asset.AveragePrice).
			Add(quantity.Mul(price)).
			Div(newQuantity)
	}
	asset.Quantity = newQuantity

	return Recalculate(asset)
}

// ApplySell reduces the held quantity, clamping at zero. The average price is kept.
func ApplySell(asset model.Asset, quantity, price decimal.Decimal) (model.Asset, SellResult) {
	filled := decimal.Max(decimal.Zero, decimal.Min(quantity, asset.Quantity))
	realized := filled.Mul(price.Sub(asset.AveragePrice))

	asset.Quantity = asset.Quantity.Sub(filled)
	asset.RealizedGainLoss = asset.RealizedGainLoss.Add(realized)

	return Recalculate(asset), SellResult{
		Requested: quantity,
		Filled:    filled,
		Unfilled:  quantity.Sub(filled),
		Realized:  realized,
	}
}

// ApplyTransaction dispatches a validated transaction onto the holding.
func ApplyTransaction(asset model.Asset, tx model.Transaction) (model.Asset, SellResult, error) {
	switch tx.Type {
	case model.TransactionBuy:
		return ApplyBuy(asset, tx.Quantity, tx.Price), SellResult{}, nil
	case model.TransactionSell:
		out, res := ApplySell(asset, tx.Quantity, tx.Price)
		return out, res, nil
	case model.TransactionDividend:
		amount := tx.TotalAmount
		if amount.IsZero() {
			amount = tx.Quantity.Mul(tx.Price)
		}
		asset.DividendIncome = asset.DividendIncome.Add(amount)
		return Recalculate(asset), SellResult{}, nil
	case model.TransactionSplit:
		if !tx.Quantity.IsPositive() {
			return asset, SellResult{}, fmt.Errorf("%w: split ratio must be positive", ErrInvalidTransaction)
		}
		asset.Quantity = asset.Quantity.Mul(tx.Quantity)
		asset.AveragePrice = asset.AveragePrice.Div(tx.Quantity)
		return Recalculate(asset), SellResult{}, nil
	case model.TransactionMerger:
		return Recalculate(asset), SellResult{}, nil
	}
	return asset, SellResult{}, fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, tx.Type)
}
