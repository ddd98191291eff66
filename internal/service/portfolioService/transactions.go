package portfolioService

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/KotFed0t/portfolio_tracker/utils"
)

func (s *PortfolioService) GetTransactions(ctx context.Context, portfolioID, userID int64) ([]model.Transaction, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetTransactions"

	slog.Debug("GetTransactions start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))

	if _, err := s.ownPortfolio(ctx, portfolioID, userID); err != nil {
		return nil, err
	}

	transactions, err := s.repo.GetTransactions(ctx, portfolioID)
	if err != nil {
		slog.Error("got error from repo.GetTransactions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	slog.Debug("GetTransactions finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(transactions)))
	return transactions, nil
}

// DeactivateTransaction hides a transaction from the audit trail. The holding it was applied to is not reverted.
func (s *PortfolioService) DeactivateTransaction(ctx context.Context, portfolioID, userID, transactionID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.DeactivateTransaction"

	slog.Debug("DeactivateTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("transactionID", transactionID))

	if _, err := s.ownPortfolio(ctx, portfolioID, userID); err != nil {
		return err
	}

	tx, err := s.repo.GetTransaction(ctx, transactionID)
	if err != nil {
		return mapErr(err)
	}
	if tx.PortfolioID != portfolioID {
		return fmt.Errorf("%w: transaction %d is not in portfolio %d", service.ErrNotFound, transactionID, portfolioID)
	}

	if err = s.repo.DeactivateTransaction(ctx, transactionID); err != nil {
		slog.Error("got error from repo.DeactivateTransaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return mapErr(err)
	}

	slog.Debug("DeactivateTransaction finished", slog.String("rqID", rqID), slog.String("op", op))
	return nil
}
