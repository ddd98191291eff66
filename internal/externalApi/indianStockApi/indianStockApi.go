package indianStockApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/internal/externalApi"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/model/marketModel"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const Source = "indianapi"

type IndianStockApi struct {
	client *resty.Client
	usage  *externalApi.Usage
	now    func() time.Time
}

func New(cfg *config.Config) *IndianStockApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.IndianStockApi.Url).
		SetHeader("X-Api-Key", cfg.API.IndianStockApi.Key)

	return &IndianStockApi{
		client: client,
		usage:  externalApi.NewUsage(Source, cfg.API.IndianStockApi.RequestsPerMinute, 0),
		now:    time.Now,
	}
}

func (a *IndianStockApi) Usage() externalApi.UsageStats {
	return a.usage.Stats()
}

// splitSymbol turns "TCS.NS" into ("TCS", "NSE"); .BO maps to BSE.
func splitSymbol(symbol string) (name, exchange string) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	switch {
	case strings.HasSuffix(symbol, ".BO"):
		return strings.TrimSuffix(symbol, ".BO"), "BSE"
	case strings.HasSuffix(symbol, ".NS"):
		return strings.TrimSuffix(symbol, ".NS"), "NSE"
	}
	return symbol, "NSE"
}

func (a *IndianStockApi) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "IndianStockApi.GetQuote"
	name, exchange := splitSymbol(symbol)

	slog.Debug("GetQuote start", slog.String("rqID", rqID), slog.String("op", op), slog.String("name", name), slog.String("exchange", exchange))

	raw := marketModel.IndianStock{}
	err := a.get(ctx, "/stock", map[string]string{"name": name}, &raw)
	if err != nil {
		slog.Error("GetQuote request failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Quote{}, err
	}

	priceStr, ok := raw.CurrentPrice[exchange]
	if !ok {
		return model.Quote{}, fmt.Errorf("%w: no %s price for %s", externalApi.ErrNotFound, exchange, name)
	}
	price, err := decimal.NewFromString(priceStr)
	if err != nil || !price.IsPositive() {
		return model.Quote{}, fmt.Errorf("%w: bad price %q for %s", externalApi.ErrNotFound, priceStr, name)
	}

	slog.Debug("GetQuote completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("price", price.String()))

	return model.Quote{
		Symbol:    strings.ToUpper(strings.TrimSpace(symbol)),
		Price:     price,
		Timestamp: a.now(),
		Source:    Source,
	}, nil
}

// GetHistorical returns the price dataset for the period, oldest first.
func (a *IndianStockApi) GetHistorical(ctx context.Context, symbol, period string) ([]model.PricePoint, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "IndianStockApi.GetHistorical"
	name, _ := splitSymbol(symbol)

	period, _, err := externalApi.ParseHistoricalPeriod(period)
	if err != nil {
		return nil, err
	}

	slog.Debug("GetHistorical start", slog.String("rqID", rqID), slog.String("op", op), slog.String("name", name), slog.String("period", period))

	raw := marketModel.IndianHistorical{}
	err = a.get(ctx, "/historical_data", map[string]string{"stock_name": name, "period": period, "filter": "price"}, &raw)
	if err != nil {
		slog.Error("GetHistorical request failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	var prices *marketModel.IndianDataset
	for i := range raw.Datasets {
		if strings.EqualFold(raw.Datasets[i].Metric, "Price") {
			prices = &raw.Datasets[i]
			break
		}
	}
	if prices == nil {
		return nil, fmt.Errorf("%w: no price dataset for %s", externalApi.ErrNotFound, name)
	}

	points := make([]model.PricePoint, 0, len(prices.Values))
	for _, v := range prices.Values {
		if len(v) < 2 {
			continue
		}
		day, _ := v[0].(string)
		date, parseErr := time.Parse(time.DateOnly, day)
		if parseErr != nil {
			continue
		}
		price, parseErr := decimal.NewFromString(fmt.Sprint(v[1]))
		if parseErr != nil {
			continue
		}
		points = append(points, model.PricePoint{Date: date, Price: price})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	slog.Debug("GetHistorical completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("points", len(points)))

	return points, nil
}

func (a *IndianStockApi) get(ctx context.Context, url string, params map[string]string, dest any) error {
	if err := a.usage.Acquire(ctx); err != nil {
		return err
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		Get(url)
	if err != nil {
		a.usage.RecordFailure()
		return err
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound:
		return externalApi.ErrNotFound
	case http.StatusTooManyRequests:
		a.usage.RecordFailure()
		return externalApi.ErrRateLimited
	default:
		a.usage.RecordFailure()
		return fmt.Errorf("%w: status %d", externalApi.ErrBadResponse, resp.StatusCode())
	}

	if err = json.Unmarshal(resp.Body(), dest); err != nil {
		a.usage.RecordFailure()
		return fmt.Errorf("%w: %s", externalApi.ErrBadResponse, err.Error())
	}
	return nil
}
