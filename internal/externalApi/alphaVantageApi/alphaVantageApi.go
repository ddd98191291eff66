package alphaVantageApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
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

const Source = "alphavantage"

type AlphaVantageApi struct {
	client *resty.Client
	apiKey string
	usage  *externalApi.Usage
	now    func() time.Time
}

func New(cfg *config.Config) *AlphaVantageApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.AlphaVantage.Url)

	return &AlphaVantageApi{
		client: client,
		apiKey: cfg.API.AlphaVantage.Key,
		usage:  externalApi.NewUsage(Source, cfg.API.AlphaVantage.RequestsPerMinute, cfg.API.AlphaVantage.RequestsPerDay),
		now:    time.Now,
	}
}

func (a *AlphaVantageApi) Usage() externalApi.UsageStats {
	return a.usage.Stats()
}

func (a *AlphaVantageApi) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AlphaVantageApi.GetQuote"
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	slog.Debug("GetQuote start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))

	raw := marketModel.AlphaVantageGlobalQuote{}
	err := a.query(ctx, map[string]string{"function": "GLOBAL_QUOTE", "symbol": symbol}, &raw)
	if err != nil {
		slog.Error("GetQuote request failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Quote{}, err
	}

	if err = checkNotice(raw.Note, raw.Information, raw.ErrorMessage); err != nil {
		slog.Warn("alpha vantage refused request", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Quote{}, err
	}
	if len(raw.GlobalQuote) == 0 {
		return model.Quote{}, fmt.Errorf("%w: %s", externalApi.ErrNotFound, symbol)
	}

	price, err := decimal.NewFromString(raw.GlobalQuote["05. price"])
	if err != nil || !price.IsPositive() {
		slog.Error("bad price in global quote", slog.String("rqID", rqID), slog.String("op", op), slog.Any("quote", raw.GlobalQuote))
		return model.Quote{}, fmt.Errorf("%w: %s", externalApi.ErrNotFound, symbol)
	}

	volume, _ := strconv.ParseInt(raw.GlobalQuote["06. volume"], 10, 64)

	timestamp := a.now()
	if day := raw.GlobalQuote["07. latest trading day"]; day != "" {
		if t, parseErr := time.Parse(time.DateOnly, day); parseErr == nil {
			timestamp = t
		}
	}

	slog.Debug("GetQuote completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("price", price.String()))

	return model.Quote{
		Symbol:    symbol,
		Price:     price,
		Volume:    volume,
		Timestamp: timestamp,
		Source:    Source,
	}, nil
}

// GetHistorical returns daily closes for the period, oldest first.
func (a *AlphaVantageApi) GetHistorical(ctx context.Context, symbol, period string) ([]model.PricePoint, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AlphaVantageApi.GetHistorical"
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	_, span, err := externalApi.ParseHistoricalPeriod(period)
	if err != nil {
		return nil, err
	}

	slog.Debug("GetHistorical start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.String("period", period))

	outputSize := "compact"
	if span > 100*24*time.Hour {
		outputSize = "full"
	}

	raw := marketModel.AlphaVantageDailySeries{}
	err = a.query(ctx, map[string]string{"function": "TIME_SERIES_DAILY", "symbol": symbol, "outputsize": outputSize}, &raw)
	if err != nil {
		slog.Error("GetHistorical request failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	if err = checkNotice(raw.Note, raw.Information, raw.ErrorMessage); err != nil {
		slog.Warn("alpha vantage refused request", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}
	if len(raw.TimeSeries) == 0 {
		return nil, fmt.Errorf("%w: %s", externalApi.ErrNotFound, symbol)
	}

	cutoff := a.now().Add(-span)
	points := make([]model.PricePoint, 0, len(raw.TimeSeries))
	for day, values := range raw.TimeSeries {
		date, parseErr := time.Parse(time.DateOnly, day)
		if parseErr != nil || date.Before(cutoff) {
			continue
		}
		closePrice, parseErr := decimal.NewFromString(values["4. close"])
		if parseErr != nil {
			continue
		}
		volume, _ := strconv.ParseInt(values["5. volume"], 10, 64)
		points = append(points, model.PricePoint{Date: date, Price: closePrice, Volume: volume})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	slog.Debug("GetHistorical completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("points", len(points)))

	return points, nil
}

func (a *AlphaVantageApi) query(ctx context.Context, params map[string]string, dest any) error {
	if err := a.usage.Acquire(ctx); err != nil {
		return err
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		SetQueryParam("apikey", a.apiKey).
		Get("/query")
	if err != nil {
		a.usage.RecordFailure()
		return err
	}

	if resp.StatusCode() == http.StatusTooManyRequests {
		a.usage.RecordFailure()
		return externalApi.ErrRateLimited
	}
	if resp.StatusCode() != http.StatusOK {
		a.usage.RecordFailure()
		return fmt.Errorf("%w: status %d", externalApi.ErrBadResponse, resp.StatusCode())
	}

	if err = json.Unmarshal(resp.Body(), dest); err != nil {
		a.usage.RecordFailure()
		return fmt.Errorf("%w: %s", externalApi.ErrBadResponse, err.Error())
	}
	return nil
}

// checkNotice maps the in-body notices Alpha Vantage sends with status 200.
func checkNotice(note, information, errorMessage string) error {
	if note != "" || information != "" {
		return fmt.Errorf("%w: %s%s", externalApi.ErrRateLimited, note, information)
	}
	if errorMessage != "" {
		return fmt.Errorf("%w: %s", externalApi.ErrNotFound, errorMessage)
	}
	return nil
}
