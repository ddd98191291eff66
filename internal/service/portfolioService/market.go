package portfolioService

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/externalApi"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/valuation"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/shopspring/decimal"
)

// UpdatePrice applies a tick to every holding of symbol, re-aggregates the affected
// portfolios, notifies fired alerts and broadcasts the tick.
func (s *PortfolioService) UpdatePrice(ctx context.Context, symbol string, price decimal.Decimal, volume int64, source string) ([]model.Asset, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.UpdatePrice"

	symbol = normalizeSymbol(symbol)
	slog.Debug("UpdatePrice start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.String("price", price.String()))

	if symbol == "" {
		return nil, invalidInput("symbol is required")
	}
	// битый тик не должен портить состояние: просто пропускаем
	if !price.IsPositive() {
		slog.Debug("UpdatePrice skipped non-positive price", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.String("source", source))
		return nil, nil
	}

	holdings, err := s.repo.GetAssetsBySymbol(ctx, symbol)
	if err != nil {
		slog.Error("got error from repo.GetAssetsBySymbol", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	now := s.now()
	updated := make([]model.Asset, 0, len(holdings))
	var fired []model.FiredAlert
	var errs []error

	for _, holding := range holdings {
		asset, assetFired, err := s.repriceHolding(ctx, holding, price, volume, now)
		if err != nil {
			slog.Error(
				"failed to reprice holding",
				slog.String("rqID", rqID),
				slog.String("op", op),
				slog.Int64("assetID", holding.AssetID),
				slog.String("err", err.Error()),
			)
			errs = append(errs, err)
			continue
		}
		s.flushPortfolioCache(ctx, asset.PortfolioID)
		updated = append(updated, asset)
		fired = append(fired, assetFired...)
	}

	quote := model.Quote{Symbol: symbol, Price: price, Volume: volume, Timestamp: now, Source: source}
	go s.cache.SetQuote(context.WithoutCancel(ctx), quote)

	s.notifyAlerts(ctx, fired)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastTick(model.PriceTick{Symbol: symbol, Price: price, Volume: volume, Source: source, Timestamp: now})
	}

	slog.Debug("UpdatePrice finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int("assets", len(updated)), slog.Int("fired", len(fired)))
	return updated, errors.Join(errs...)
}

func (s *PortfolioService) repriceHolding(
	ctx context.Context,
	holding model.Asset,
	price decimal.Decimal,
	volume int64,
	now time.Time,
) (model.Asset, []model.FiredAlert, error) {
	var (
		asset model.Asset
		fired []model.FiredAlert
	)

	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.LockPortfolio(ctx, holding.PortfolioID); err != nil {
			return err
		}

		// перечитываем под локом, строка могла измениться с момента выборки
		current, err := s.repo.GetAsset(ctx, holding.AssetID)
		if err != nil {
			return mapErr(err)
		}

		asset, _ = valuation.UpdatePrice(current, price, volume, now, s.cfg)
		if err = s.repo.UpdateAsset(ctx, asset); err != nil {
			return mapErr(err)
		}

		alerts, err := s.repo.GetAlerts(ctx, asset.AssetID)
		if err != nil {
			return err
		}
		_, fired = valuation.EvaluateAlerts(asset, alerts, now, s.cfg)
		for _, f := range fired {
			if err = s.repo.SetAlertTriggered(ctx, f.Alert.AlertID, f.TriggeredAt); err != nil {
				return mapErr(err)
			}
		}

		portfolio, err := s.repo.GetPortfolio(ctx, asset.PortfolioID)
		if err != nil {
			return mapErr(err)
		}
		portfolio, err = s.withAssets(ctx, portfolio)
		if err != nil {
			return err
		}
		portfolio.UpdatedAt = now

		for i := range fired {
			fired[i].UserID = portfolio.UserID
		}

		return mapErr(s.repo.UpdatePortfolio(ctx, portfolio))
	})
	if err != nil {
		return model.Asset{}, nil, err
	}

	return asset, fired, nil
}

func (s *PortfolioService) notifyAlerts(ctx context.Context, fired []model.FiredAlert) {
	if s.notifier == nil || len(fired) == 0 {
		return
	}

	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.notifyAlerts"

	for _, alert := range fired {
		user, err := s.repo.GetUser(ctx, alert.UserID)
		if err != nil {
			slog.Error("got error from repo.GetUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			continue
		}
		if user.TelegramChatID == nil {
			slog.Debug("user has no telegram chat, alert not delivered", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", user.UserID))
			continue
		}
		if err = s.notifier.NotifyAlert(ctx, *user.TelegramChatID, alert); err != nil {
			slog.Error("got error from notifier.NotifyAlert", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}
}

// RefreshMarketPrices polls a fresh quote for every held symbol and applies it.
func (s *PortfolioService) RefreshMarketPrices(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.RefreshMarketPrices"

	symbols, err := s.repo.GetHeldSymbols(ctx)
	if err != nil {
		slog.Error("got error from repo.GetHeldSymbols", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	failed := 0
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		quote, err := s.market.GetQuote(ctx, symbol)
		if err != nil {
			failed++
			slog.Warn("got error from market.GetQuote", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.String("err", err.Error()))
			continue
		}

		if _, err = s.UpdatePrice(ctx, symbol, quote.Price, quote.Volume, quote.Source); err != nil {
			failed++
		}
	}

	slog.Info("market prices refreshed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("symbols", len(symbols)), slog.Int("failed", failed))
	return nil
}

func (s *PortfolioService) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetQuote"

	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return model.Quote{}, invalidInput("symbol is required")
	}

	quote, err := s.cache.GetQuote(ctx, symbol)
	if err == nil {
		return quote, nil
	}

	quote, err = s.market.GetQuote(ctx, symbol)
	if err != nil {
		slog.Error("got error from market.GetQuote", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Quote{}, mapErr(err)
	}

	go s.cache.SetQuote(context.WithoutCancel(ctx), quote)

	return quote, nil
}

func (s *PortfolioService) GetHistorical(ctx context.Context, symbol, period string) ([]model.PricePoint, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetHistorical"

	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return nil, invalidInput("symbol is required")
	}

	period, _, err := externalApi.ParseHistoricalPeriod(period)
	if err != nil {
		return nil, mapErr(err)
	}

	points, err := s.cache.GetHistorical(ctx, symbol, period)
	if err == nil {
		return points, nil
	}

	points, err = s.market.GetHistorical(ctx, symbol, period)
	if err != nil {
		slog.Error("got error from market.GetHistorical", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, mapErr(err)
	}

	go s.cache.SetHistorical(context.WithoutCancel(ctx), symbol, period, points)

	return points, nil
}

func (s *PortfolioService) MarketUsage() []externalApi.UsageStats {
	return s.market.Usage()
}
