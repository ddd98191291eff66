package dbConverter

import (
	"encoding/json"
	"fmt"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/model/dbModel"
)

func ConvertUser(dbUser dbModel.User) model.User {
	user := model.User{
		UserID:    dbUser.UserID,
		CreatedAt: dbUser.DtCreate,
	}
	if dbUser.TelegramChatID.Valid {
		chatID := dbUser.TelegramChatID.Int64
		user.TelegramChatID = &chatID
	}
	return user
}

func ConvertPortfolio(dbPortfolio dbModel.Portfolio) (model.Portfolio, error) {
	portfolio := model.Portfolio{
		PortfolioID:             dbPortfolio.PortfolioID,
		UserID:                  dbPortfolio.UserID,
		Name:                    dbPortfolio.Name,
		TotalValue:              dbPortfolio.TotalValue,
		TotalCost:               dbPortfolio.TotalCost,
		TotalGainLoss:           dbPortfolio.TotalGainLoss,
		TotalGainLossPercentage: dbPortfolio.TotalGainLossPercentage,
		CreatedAt:               dbPortfolio.DtCreate,
		UpdatedAt:               dbPortfolio.DtUpdate,
	}

	if len(dbPortfolio.History) > 0 {
		if err := json.Unmarshal(dbPortfolio.History, &portfolio.History); err != nil {
			return model.Portfolio{}, fmt.Errorf("unmarshal portfolio history: %w", err)
		}
	}
	if len(dbPortfolio.Performance) > 0 {
		if err := json.Unmarshal(dbPortfolio.Performance, &portfolio.Performance); err != nil {
			return model.Portfolio{}, fmt.Errorf("unmarshal portfolio performance: %w", err)
		}
	}

	return portfolio, nil
}

func ToDbPortfolio(portfolio model.Portfolio) (dbModel.Portfolio, error) {
	history := portfolio.History
	if history == nil {
		history = []model.HistoryEntry{}
	}
	historyJson, err := json.Marshal(history)
	if err != nil {
		return dbModel.Portfolio{}, fmt.Errorf("marshal portfolio history: %w", err)
	}

	performanceJson, err := json.Marshal(portfolio.Performance)
	if err != nil {
		return dbModel.Portfolio{}, fmt.Errorf("marshal portfolio performance: %w", err)
	}

	return dbModel.Portfolio{
		PortfolioID:             portfolio.PortfolioID,
		UserID:                  portfolio.UserID,
		Name:                    portfolio.Name,
		TotalValue:              portfolio.TotalValue,
		TotalCost:               portfolio.TotalCost,
		TotalGainLoss:           portfolio.TotalGainLoss,
		TotalGainLossPercentage: portfolio.TotalGainLossPercentage,
		History:                 historyJson,
		Performance:             performanceJson,
		DtCreate:                portfolio.CreatedAt,
		DtUpdate:                portfolio.UpdatedAt,
	}, nil
}

// ConvertAsset restores a holding; derived figures are left for valuation.Recalculate.
func ConvertAsset(dbAsset dbModel.Asset) (model.Asset, error) {
	asset := model.Asset{
		AssetID:          dbAsset.AssetID,
		PortfolioID:      dbAsset.PortfolioID,
		Symbol:           dbAsset.Symbol,
		Name:             dbAsset.Name,
		Quantity:         dbAsset.Quantity,
		AveragePrice:     dbAsset.AveragePrice,
		CurrentPrice:     dbAsset.CurrentPrice,
		RealizedGainLoss: dbAsset.RealizedGainLoss,
		DividendIncome:   dbAsset.DividendIncome,
	}
	if dbAsset.LastPriceUpdate.Valid {
		asset.LastPriceUpdate = dbAsset.LastPriceUpdate.Time
	}

	if len(dbAsset.PriceHistory) > 0 {
		if err := json.Unmarshal(dbAsset.PriceHistory, &asset.PriceHistory); err != nil {
			return model.Asset{}, fmt.Errorf("unmarshal price history: %w", err)
		}
	}

	return asset, nil
}

func ToDbAsset(asset model.Asset) (dbModel.Asset, error) {
	history := asset.PriceHistory
	if history == nil {
		history = []model.PricePoint{}
	}
	historyJson, err := json.Marshal(history)
	if err != nil {
		return dbModel.Asset{}, fmt.Errorf("marshal price history: %w", err)
	}

	dbAsset := dbModel.Asset{
		AssetID:          asset.AssetID,
		PortfolioID:      asset.PortfolioID,
		Symbol:           asset.Symbol,
		Name:             asset.Name,
		Quantity:         asset.Quantity,
		AveragePrice:     asset.AveragePrice,
		CurrentPrice:     asset.CurrentPrice,
		RealizedGainLoss: asset.RealizedGainLoss,
		DividendIncome:   asset.DividendIncome,
		PriceHistory:     historyJson,
	}
	if !asset.LastPriceUpdate.IsZero() {
		dbAsset.LastPriceUpdate.Time = asset.LastPriceUpdate
		dbAsset.LastPriceUpdate.Valid = true
	}

	return dbAsset, nil
}

func ConvertTransaction(dbTx dbModel.Transaction) model.Transaction {
	return model.Transaction{
		TransactionID: dbTx.TransactionID,
		PortfolioID:   dbTx.PortfolioID,
		AssetID:       dbTx.AssetID,
		UserID:        dbTx.UserID,
		Symbol:        dbTx.Symbol,
		Type:          model.TransactionType(dbTx.Type),
		Quantity:      dbTx.Quantity,
		Price:         dbTx.Price,
		TotalAmount:   dbTx.TotalAmount,
		Fees:          dbTx.Fees,
		Date:          dbTx.DtTransaction,
		IsActive:      dbTx.IsActive,
		CreatedAt:     dbTx.DtCreate,
	}
}

func ConvertAlert(dbAlert dbModel.Alert) model.Alert {
	alert := model.Alert{
		AlertID:   dbAlert.AlertID,
		AssetID:   dbAlert.AssetID,
		Type:      model.AlertType(dbAlert.Type),
		Value:     dbAlert.Value,
		IsActive:  dbAlert.IsActive,
		CreatedAt: dbAlert.DtCreate,
	}
	if dbAlert.LastTriggered.Valid {
		triggered := dbAlert.LastTriggered.Time
		alert.LastTriggered = &triggered
	}
	return alert
}
