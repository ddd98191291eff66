package portfolioService

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/KotFed0t/portfolio_tracker/utils"
)

// GenerateReport renders the portfolio with its transactions and returns the file and its name.
func (s *PortfolioService) GenerateReport(ctx context.Context, portfolioID, userID int64) ([]byte, string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GenerateReport"

	slog.Debug("GenerateReport start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))

	if s.reports == nil {
		return nil, "", service.ErrUnavailable
	}

	portfolio, err := s.loadPortfolio(ctx, portfolioID, userID)
	if err != nil {
		return nil, "", err
	}

	transactions, err := s.repo.GetTransactions(ctx, portfolioID)
	if err != nil {
		slog.Error("got error from repo.GetTransactions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	fileBytes, ext, err := s.reports.Generate(ctx, portfolio, transactions)
	if err != nil {
		slog.Error("got error from reports.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	filename := fmt.Sprintf("portfolio_%d_%s%s", portfolioID, s.now().Format("2006-01-02_15-04-05"), ext)

	slog.Debug("GenerateReport finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("filename", filename))
	return fileBytes, filename, nil
}

// UploadReport generates the report and uploads it to cloud storage, returning a download link.
func (s *PortfolioService) UploadReport(ctx context.Context, portfolioID, userID int64) (string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.UploadReport"

	if s.storage == nil {
		return "", service.ErrUnavailable
	}

	fileBytes, filename, err := s.GenerateReport(ctx, portfolioID, userID)
	if err != nil {
		return "", err
	}

	link, err := s.storage.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
	if err != nil {
		slog.Error("got error from storage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", fmt.Errorf("%w: %s", service.ErrUnavailable, err.Error())
	}

	return link, nil
}

func (s *PortfolioService) CleanupReports(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}
	return s.storage.DeleteOldFiles(ctx)
}
