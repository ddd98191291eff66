package portfolioService

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/KotFed0t/portfolio_tracker/internal/valuation"
	"github.com/KotFed0t/portfolio_tracker/utils"
)

// GetPerformance returns the totals and the performance windows, all of them when period is empty.
func (s *PortfolioService) GetPerformance(ctx context.Context, portfolioID, userID int64, period string) (model.PerformanceReport, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetPerformance"

	slog.Debug("GetPerformance start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID), slog.String("period", period))

	p, err := valuation.ParsePeriod(period)
	if err != nil {
		return model.PerformanceReport{}, mapErr(err)
	}

	report, err := s.cache.GetPerformance(ctx, portfolioID, p)
	if err == nil {
		if report.UserID != userID {
			return model.PerformanceReport{}, service.ErrForbidden
		}
		slog.Debug("GetPerformance finished from cache", slog.String("rqID", rqID), slog.String("op", op))
		return report, nil
	}

	portfolio, err := s.loadPortfolio(ctx, portfolioID, userID)
	if err != nil {
		slog.Error("GetPerformance failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PerformanceReport{}, err
	}

	report = valuation.Report(portfolio, p)

	s.cachePerformance(ctx, report, p)

	slog.Debug("GetPerformance finished", slog.String("rqID", rqID), slog.String("op", op))
	return report, nil
}

// cachePerformance stores the report, then drops it again if the portfolio was
// changed after the report was built, so a concurrent flush is never undone.
func (s *PortfolioService) cachePerformance(ctx context.Context, report model.PerformanceReport, period model.Period) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.cachePerformance"

	if err := s.cache.SetPerformance(ctx, period, report); err != nil {
		slog.Warn("got error from cache.SetPerformance", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return
	}

	stored, err := s.repo.GetPortfolio(ctx, report.PortfolioID)
	if err == nil && stored.UpdatedAt.Equal(report.AsOf) {
		return
	}

	slog.Debug("portfolio changed while caching performance, flushing", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", report.PortfolioID))
	s.flushPortfolioCache(ctx, report.PortfolioID)
}
