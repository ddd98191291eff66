package portfolioService

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/KotFed0t/portfolio_tracker/data/repository"
	"github.com/KotFed0t/portfolio_tracker/internal/externalApi"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/KotFed0t/portfolio_tracker/internal/valuation"
)

type Repository interface {
	WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error
	LockPortfolio(ctx context.Context, portfolioID int64) error

	EnsureUser(ctx context.Context, userID int64) error
	GetUser(ctx context.Context, userID int64) (model.User, error)
	SetTelegramChatID(ctx context.Context, userID, chatID int64) error

	CreatePortfolio(ctx context.Context, userID int64, name string) (model.Portfolio, error)
	GetPortfolio(ctx context.Context, portfolioID int64) (model.Portfolio, error)
	GetPortfoliosByUser(ctx context.Context, userID int64) ([]model.Portfolio, error)
	GetPortfolioIDs(ctx context.Context) ([]int64, error)
	UpdatePortfolio(ctx context.Context, portfolio model.Portfolio) error
	DeletePortfolio(ctx context.Context, portfolioID int64) error

	GetAssets(ctx context.Context, portfolioID int64) ([]model.Asset, error)
	GetAssetsBySymbol(ctx context.Context, symbol string) ([]model.Asset, error)
	GetAsset(ctx context.Context, assetID int64) (model.Asset, error)
	GetAssetBySymbol(ctx context.Context, portfolioID int64, symbol string) (model.Asset, error)
	GetHeldSymbols(ctx context.Context) ([]string, error)
	InsertAsset(ctx context.Context, asset model.Asset) (int64, error)
	UpdateAsset(ctx context.Context, asset model.Asset) error

	InsertTransaction(ctx context.Context, tx model.Transaction) (model.Transaction, error)
	GetTransactions(ctx context.Context, portfolioID int64) ([]model.Transaction, error)
	GetTransaction(ctx context.Context, transactionID int64) (model.Transaction, error)
	DeactivateTransaction(ctx context.Context, transactionID int64) error

	InsertAlert(ctx context.Context, alert model.Alert) (model.Alert, error)
	GetAlerts(ctx context.Context, assetID int64) ([]model.Alert, error)
	GetAlert(ctx context.Context, alertID int64) (model.Alert, error)
	SetAlertTriggered(ctx context.Context, alertID int64, triggeredAt time.Time) error
	DeactivateAlert(ctx context.Context, alertID int64) error
}

type Cache interface {
	SetQuote(ctx context.Context, quote model.Quote) error
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
	SetHistorical(ctx context.Context, symbol, period string, points []model.PricePoint) error
	GetHistorical(ctx context.Context, symbol, period string) ([]model.PricePoint, error)
	SetPerformance(ctx context.Context, period model.Period, report model.PerformanceReport) error
	GetPerformance(ctx context.Context, portfolioID int64, period model.Period) (model.PerformanceReport, error)
	FlushPortfolioCache(ctx context.Context, portfolioID int64) error
}

type MarketData interface {
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
	GetHistorical(ctx context.Context, symbol, period string) ([]model.PricePoint, error)
	Usage() []externalApi.UsageStats
}

type Broadcaster interface {
	BroadcastTick(tick model.PriceTick)
}

type Notifier interface {
	NotifyAlert(ctx context.Context, chatID int64, alert model.FiredAlert) error
}

type ReportGenerator interface {
	Generate(ctx context.Context, portfolio model.Portfolio, transactions []model.Transaction) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
	DeleteOldFiles(ctx context.Context) error
}

type LinkSession interface {
	SaveLinkCode(ctx context.Context, code string, userID int64) error
	ConsumeLinkCode(ctx context.Context, code string) (int64, error)
}

// Deps holds the optional collaborators. Nil members switch the matching feature off.
type Deps struct {
	Broadcaster     Broadcaster
	Notifier        Notifier
	ReportGenerator ReportGenerator
	CloudStorage    CloudStorage
	LinkSession     LinkSession
}

type PortfolioService struct {
	cfg         valuation.Config
	repo        Repository
	cache       Cache
	market      MarketData
	broadcaster Broadcaster
	notifier    Notifier
	reports     ReportGenerator
	storage     CloudStorage
	session     LinkSession
	now         func() time.Time
}

func New(cfg valuation.Config, repo Repository, cache Cache, market MarketData, deps Deps) *PortfolioService {
	return &PortfolioService{
		cfg:         cfg,
		repo:        repo,
		cache:       cache,
		market:      market,
		broadcaster: deps.Broadcaster,
		notifier:    deps.Notifier,
		reports:     deps.ReportGenerator,
		storage:     deps.CloudStorage,
		session:     deps.LinkSession,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// mapErr translates lower layer errors into service sentinels, keeping the original message.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, externalApi.ErrNotFound):
		return fmt.Errorf("%w: %s", service.ErrNotFound, err.Error())
	case errors.Is(err, repository.ErrAlreadyExists):
		return fmt.Errorf("%w: %s", service.ErrAlreadyExists, err.Error())
	case errors.Is(err, valuation.ErrInvalidTransaction),
		errors.Is(err, valuation.ErrInvalidPeriod),
		errors.Is(err, externalApi.ErrInvalidPeriod):
		return fmt.Errorf("%w: %s", service.ErrInvalidInput, err.Error())
	case errors.Is(err, externalApi.ErrRateLimited):
		return fmt.Errorf("%w: %s", service.ErrUnavailable, err.Error())
	}
	return err
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", service.ErrInvalidInput, fmt.Sprintf(format, args...))
}
