package portfolioService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/KotFed0t/portfolio_tracker/internal/valuation"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/shopspring/decimal"
)

// AddHolding buys into an existing holding or opens a new one for input.Symbol.
func (s *PortfolioService) AddHolding(ctx context.Context, portfolioID, userID int64, input model.HoldingInput) (model.Portfolio, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.AddHolding"

	slog.Debug("AddHolding start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))

	symbol := normalizeSymbol(input.Symbol)
	if input.AssetID == nil && symbol == "" {
		return model.Portfolio{}, invalidInput("either assetId or symbol is required")
	}

	now := s.now()
	tx := model.Transaction{
		Type:     model.TransactionBuy,
		Quantity: input.Quantity,
		Price:    input.Price,
		Fees:     input.Fees,
		Date:     now,
	}
	if input.Date != nil {
		tx.Date = input.Date.UTC()
	}
	if err := valuation.ValidateTransaction(tx, now); err != nil {
		return model.Portfolio{}, mapErr(err)
	}

	// котировку для новой бумаги берем до открытия транзакции, чтобы не держать лок на время запроса
	seedPrice := input.Price
	if input.AssetID == nil {
		if _, err := s.repo.GetAssetBySymbol(ctx, portfolioID, symbol); err != nil {
			if !errors.Is(mapErr(err), service.ErrNotFound) {
				slog.Error("got error from repo.GetAssetBySymbol", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
				return model.Portfolio{}, err
			}
			if quote, qErr := s.GetQuote(ctx, symbol); qErr == nil {
				seedPrice = quote.Price
			} else {
				slog.Warn("no quote for new holding, using buy price", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.String("err", qErr.Error()))
			}
		}
	}

	portfolio, err := s.mutatePortfolio(ctx, portfolioID, userID, func(ctx context.Context, portfolio *model.Portfolio) error {
		idx := -1
		if input.AssetID != nil {
			idx = assetIndexByID(portfolio.Assets, *input.AssetID)
			if idx < 0 {
				return fmt.Errorf("%w: asset %d is not in portfolio %d", service.ErrNotFound, *input.AssetID, portfolioID)
			}
		} else {
			idx = assetIndexBySymbol(portfolio.Assets, symbol)
		}

		if idx < 0 {
			portfolio.Assets = append(portfolio.Assets, valuation.Recalculate(model.Asset{
				PortfolioID:     portfolioID,
				Symbol:          symbol,
				Name:            input.Name,
				CurrentPrice:    seedPrice,
				LastPriceUpdate: now,
			}))
			idx = len(portfolio.Assets) - 1
		}

		_, err := s.applyAndRecord(ctx, portfolio, idx, tx)
		return err
	})
	if err != nil {
		slog.Error("AddHolding failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Portfolio{}, err
	}

	slog.Debug("AddHolding finished", slog.String("rqID", rqID), slog.String("op", op))
	return portfolio, nil
}

// RemoveHolding sells quantity at the holding's current price. Selling more than is held
// fills only the held quantity.
func (s *PortfolioService) RemoveHolding(ctx context.Context, portfolioID, userID, assetID int64, quantity decimal.Decimal) (model.Portfolio, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.RemoveHolding"

	slog.Debug("RemoveHolding start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("assetID", assetID))

	if !quantity.IsPositive() {
		return model.Portfolio{}, invalidInput("quantity must be positive")
	}

	portfolio, err := s.mutatePortfolio(ctx, portfolioID, userID, func(ctx context.Context, portfolio *model.Portfolio) error {
		idx := assetIndexByID(portfolio.Assets, assetID)
		if idx < 0 {
			return fmt.Errorf("%w: asset %d is not in portfolio %d", service.ErrNotFound, assetID, portfolioID)
		}

		_, err := s.applyAndRecord(ctx, portfolio, idx, model.Transaction{
			Type:     model.TransactionSell,
			Quantity: quantity,
			Price:    portfolio.Assets[idx].CurrentPrice,
			Date:     s.now(),
		})
		return err
	})
	if err != nil {
		slog.Error("RemoveHolding failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Portfolio{}, err
	}

	slog.Debug("RemoveHolding finished", slog.String("rqID", rqID), slog.String("op", op))
	return portfolio, nil
}

// RecordTransaction applies an explicit transaction to an existing holding.
// A sell that fills nothing returns a zero Transaction.
func (s *PortfolioService) RecordTransaction(
	ctx context.Context,
	portfolioID, userID, assetID int64,
	tx model.Transaction,
) (model.Portfolio, model.Transaction, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.RecordTransaction"

	slog.Debug("RecordTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("assetID", assetID), slog.String("type", string(tx.Type)))

	now := s.now()
	if tx.Date.IsZero() {
		tx.Date = now
	}
	if err := valuation.ValidateTransaction(tx, now); err != nil {
		return model.Portfolio{}, model.Transaction{}, mapErr(err)
	}

	var recorded model.Transaction
	portfolio, err := s.mutatePortfolio(ctx, portfolioID, userID, func(ctx context.Context, portfolio *model.Portfolio) error {
		idx := assetIndexByID(portfolio.Assets, assetID)
		if idx < 0 {
			return fmt.Errorf("%w: asset %d is not in portfolio %d", service.ErrNotFound, assetID, portfolioID)
		}

		var err error
		recorded, err = s.applyAndRecord(ctx, portfolio, idx, tx)
		return err
	})
	if err != nil {
		slog.Error("RecordTransaction failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Portfolio{}, model.Transaction{}, err
	}

	slog.Debug("RecordTransaction finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("transactionID", recorded.TransactionID))
	return portfolio, recorded, nil
}

// applyAndRecord applies tx to portfolio.Assets[idx], persists the holding and records the transaction.
// Must run inside mutatePortfolio.
func (s *PortfolioService) applyAndRecord(ctx context.Context, portfolio *model.Portfolio, idx int, tx model.Transaction) (model.Transaction, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.applyAndRecord"

	asset := portfolio.Assets[idx]

	updated, sell, err := valuation.ApplyTransaction(asset, tx)
	if err != nil {
		return model.Transaction{}, mapErr(err)
	}

	if tx.Type == model.TransactionSell {
		if sell.Clamped() {
			slog.Warn(
				"sell exceeds held quantity, clamped",
				slog.String("rqID", rqID),
				slog.String("op", op),
				slog.String("symbol", asset.Symbol),
				slog.String("requested", sell.Requested.String()),
				slog.String("unfilled", sell.Unfilled.String()),
			)
		}
		tx.Quantity = sell.Filled
	}

	if updated.AssetID == 0 {
		id, err := s.repo.InsertAsset(ctx, updated)
		if err != nil {
			return model.Transaction{}, mapErr(err)
		}
		updated.AssetID = id
	} else if err = s.repo.UpdateAsset(ctx, updated); err != nil {
		return model.Transaction{}, mapErr(err)
	}
	portfolio.Assets[idx] = updated

	if tx.Type == model.TransactionSell && tx.Quantity.IsZero() {
		return model.Transaction{}, nil
	}

	tx.PortfolioID = portfolio.PortfolioID
	tx.AssetID = updated.AssetID
	tx.UserID = portfolio.UserID
	tx.Symbol = updated.Symbol

	recorded, err := s.repo.InsertTransaction(ctx, valuation.NewTransaction(tx))
	if err != nil {
		return model.Transaction{}, mapErr(err)
	}
	return recorded, nil
}

func assetIndexByID(assets []model.Asset, assetID int64) int {
	for i, a := range assets {
		if a.AssetID == assetID {
			return i
		}
	}
	return -1
}

func assetIndexBySymbol(assets []model.Asset, symbol string) int {
	for i, a := range assets {
		if a.Symbol == symbol {
			return i
		}
	}
	return -1
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
