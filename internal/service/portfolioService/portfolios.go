package portfolioService

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/KotFed0t/portfolio_tracker/internal/valuation"
	"github.com/KotFed0t/portfolio_tracker/utils"
)

const maxPortfolioNameLen = 255

func (s *PortfolioService) CreatePortfolio(ctx context.Context, userID int64, name string) (model.Portfolio, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.CreatePortfolio"

	slog.Debug("CreatePortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("CreatePortfolio finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxPortfolioNameLen {
		return model.Portfolio{}, invalidInput("portfolio name must be 1..%d characters", maxPortfolioNameLen)
	}

	if err := s.repo.EnsureUser(ctx, userID); err != nil {
		slog.Error("got error from repo.EnsureUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Portfolio{}, err
	}

	portfolio, err := s.repo.CreatePortfolio(ctx, userID, name)
	if err != nil {
		slog.Error("got error from repo.CreatePortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Portfolio{}, mapErr(err)
	}

	portfolio.Assets = []model.Asset{}
	return valuation.Aggregate(portfolio), nil
}

// GetPortfolios lists the user's portfolios with their stored totals, without holdings.
func (s *PortfolioService) GetPortfolios(ctx context.Context, userID int64) ([]model.Portfolio, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetPortfolios"

	slog.Debug("GetPortfolios start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))

	portfolios, err := s.repo.GetPortfoliosByUser(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetPortfoliosByUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	slog.Debug("GetPortfolios finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(portfolios)))
	return portfolios, nil
}

func (s *PortfolioService) GetPortfolio(ctx context.Context, portfolioID, userID int64) (model.Portfolio, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetPortfolio"

	slog.Debug("GetPortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	defer func() {
		slog.Debug("GetPortfolio finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	}()

	return s.loadPortfolio(ctx, portfolioID, userID)
}

func (s *PortfolioService) DeletePortfolio(ctx context.Context, portfolioID, userID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.DeletePortfolio"

	slog.Debug("DeletePortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))

	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.LockPortfolio(ctx, portfolioID); err != nil {
			return err
		}
		if _, err := s.ownPortfolio(ctx, portfolioID, userID); err != nil {
			return err
		}
		return mapErr(s.repo.DeletePortfolio(ctx, portfolioID))
	})
	if err != nil {
		slog.Error("DeletePortfolio failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	s.flushPortfolioCache(ctx, portfolioID)

	slog.Debug("DeletePortfolio finished", slog.String("rqID", rqID), slog.String("op", op))
	return nil
}

// RefreshPortfolio re-aggregates the portfolio, records a history snapshot when due and
// re-derives the performance windows.
func (s *PortfolioService) RefreshPortfolio(ctx context.Context, portfolioID int64) (model.Portfolio, error) {
	return s.refresh(ctx, portfolioID, nil)
}

// RefreshUserPortfolio is RefreshPortfolio with an ownership check.
func (s *PortfolioService) RefreshUserPortfolio(ctx context.Context, portfolioID, userID int64) (model.Portfolio, error) {
	return s.refresh(ctx, portfolioID, &userID)
}

func (s *PortfolioService) refresh(ctx context.Context, portfolioID int64, userID *int64) (model.Portfolio, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.refresh"

	slog.Debug("refresh start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))

	var refreshed model.Portfolio
	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.LockPortfolio(ctx, portfolioID); err != nil {
			return err
		}

		portfolio, err := s.repo.GetPortfolio(ctx, portfolioID)
		if err != nil {
			return mapErr(err)
		}
		if userID != nil && portfolio.UserID != *userID {
			return service.ErrForbidden
		}

		portfolio, err = s.withAssets(ctx, portfolio)
		if err != nil {
			return err
		}

		now := s.now()
		portfolio, appended := valuation.AppendHistory(portfolio, now, s.cfg)
		portfolio = valuation.DerivePerformance(portfolio, now, s.cfg)
		portfolio.UpdatedAt = now

		slog.Debug("portfolio refreshed", slog.String("rqID", rqID), slog.String("op", op), slog.Bool("historyAppended", appended))

		refreshed = portfolio
		return mapErr(s.repo.UpdatePortfolio(ctx, portfolio))
	})
	if err != nil {
		slog.Error("refresh failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Portfolio{}, err
	}

	s.flushPortfolioCache(ctx, portfolioID)

	slog.Debug("refresh finished", slog.String("rqID", rqID), slog.String("op", op))
	return refreshed, nil
}

// RefreshAllPortfolios refreshes every portfolio and keeps going past individual failures.
func (s *PortfolioService) RefreshAllPortfolios(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.RefreshAllPortfolios"

	ids, err := s.repo.GetPortfolioIDs(ctx)
	if err != nil {
		slog.Error("got error from repo.GetPortfolioIDs", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	var errs []error
	for _, id := range ids {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := s.RefreshPortfolio(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}

	slog.Info("portfolios refreshed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("total", len(ids)), slog.Int("failed", len(errs)))
	return errors.Join(errs...)
}

// ownPortfolio loads the portfolio row and checks it belongs to userID.
func (s *PortfolioService) ownPortfolio(ctx context.Context, portfolioID, userID int64) (model.Portfolio, error) {
	portfolio, err := s.repo.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return model.Portfolio{}, mapErr(err)
	}
	if portfolio.UserID != userID {
		return model.Portfolio{}, service.ErrForbidden
	}
	return portfolio, nil
}

func (s *PortfolioService) withAssets(ctx context.Context, portfolio model.Portfolio) (model.Portfolio, error) {
	assets, err := s.repo.GetAssets(ctx, portfolio.PortfolioID)
	if err != nil {
		return model.Portfolio{}, err
	}
	portfolio.Assets = assets
	return valuation.Aggregate(portfolio), nil
}

func (s *PortfolioService) loadPortfolio(ctx context.Context, portfolioID, userID int64) (model.Portfolio, error) {
	portfolio, err := s.ownPortfolio(ctx, portfolioID, userID)
	if err != nil {
		return model.Portfolio{}, err
	}
	return s.withAssets(ctx, portfolio)
}

// mutatePortfolio runs fn on the aggregated portfolio under the portfolio lock, then
// re-aggregates and persists the totals.
func (s *PortfolioService) mutatePortfolio(
	ctx context.Context,
	portfolioID, userID int64,
	fn func(ctx context.Context, portfolio *model.Portfolio) error,
) (model.Portfolio, error) {
	var result model.Portfolio
	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.LockPortfolio(ctx, portfolioID); err != nil {
			return err
		}

		portfolio, err := s.loadPortfolio(ctx, portfolioID, userID)
		if err != nil {
			return err
		}

		if err = fn(ctx, &portfolio); err != nil {
			return err
		}

		portfolio = valuation.Aggregate(portfolio)
		portfolio.UpdatedAt = s.now()
		if err = s.repo.UpdatePortfolio(ctx, portfolio); err != nil {
			return mapErr(err)
		}

		result = portfolio
		return nil
	})
	if err != nil {
		return model.Portfolio{}, err
	}

	// синхронно, иначе следующий запрос может успеть прочитать старые данные
	s.flushPortfolioCache(ctx, portfolioID)

	return result, nil
}

func (s *PortfolioService) flushPortfolioCache(ctx context.Context, portfolioID int64) {
	if err := s.cache.FlushPortfolioCache(ctx, portfolioID); err != nil {
		slog.Error(
			"got error from cache.FlushPortfolioCache",
			slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
			slog.Int64("portfolioID", portfolioID),
			slog.String("err", err.Error()),
		)
	}
}
