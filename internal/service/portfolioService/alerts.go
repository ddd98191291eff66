package portfolioService

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/shopspring/decimal"
)

func (s *PortfolioService) CreateAlert(
	ctx context.Context,
	userID, assetID int64,
	alertType model.AlertType,
	value decimal.Decimal,
) (model.Alert, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.CreateAlert"

	slog.Debug("CreateAlert start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("assetID", assetID), slog.String("type", string(alertType)))

	if !alertType.Valid() {
		return model.Alert{}, invalidInput("unknown alert type %q", alertType)
	}
	if !value.IsPositive() {
		return model.Alert{}, invalidInput("alert value must be positive")
	}

	if _, err := s.ownAsset(ctx, assetID, userID); err != nil {
		return model.Alert{}, err
	}

	alert, err := s.repo.InsertAlert(ctx, model.Alert{
		AssetID:  assetID,
		Type:     alertType,
		Value:    value,
		IsActive: true,
	})
	if err != nil {
		slog.Error("got error from repo.InsertAlert", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Alert{}, mapErr(err)
	}

	slog.Debug("CreateAlert finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("alertID", alert.AlertID))
	return alert, nil
}

func (s *PortfolioService) GetAlerts(ctx context.Context, userID, assetID int64) ([]model.Alert, error) {
	if _, err := s.ownAsset(ctx, assetID, userID); err != nil {
		return nil, err
	}

	alerts, err := s.repo.GetAlerts(ctx, assetID)
	if err != nil {
		slog.Error(
			"got error from repo.GetAlerts",
			slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
			slog.String("op", "PortfolioService.GetAlerts"),
			slog.String("err", err.Error()),
		)
		return nil, err
	}
	return alerts, nil
}

func (s *PortfolioService) DeactivateAlert(ctx context.Context, userID, assetID, alertID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.DeactivateAlert"

	slog.Debug("DeactivateAlert start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("alertID", alertID))

	if _, err := s.ownAsset(ctx, assetID, userID); err != nil {
		return err
	}

	alert, err := s.repo.GetAlert(ctx, alertID)
	if err != nil {
		return mapErr(err)
	}
	if alert.AssetID != assetID {
		return fmt.Errorf("%w: alert %d does not belong to asset %d", service.ErrNotFound, alertID, assetID)
	}

	if err = s.repo.DeactivateAlert(ctx, alertID); err != nil {
		slog.Error("got error from repo.DeactivateAlert", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return mapErr(err)
	}

	slog.Debug("DeactivateAlert finished", slog.String("rqID", rqID), slog.String("op", op))
	return nil
}

func (s *PortfolioService) ownAsset(ctx context.Context, assetID, userID int64) (model.Asset, error) {
	asset, err := s.repo.GetAsset(ctx, assetID)
	if err != nil {
		return model.Asset{}, mapErr(err)
	}
	if _, err = s.ownPortfolio(ctx, asset.PortfolioID, userID); err != nil {
		return model.Asset{}, err
	}
	return asset, nil
}
