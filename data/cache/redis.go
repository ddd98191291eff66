package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func quoteKey(symbol string) string {
	return "quote:" + strings.ToUpper(symbol)
}

func historicalKey(symbol, period string) string {
	return fmt.Sprintf("historical:%s:%s", strings.ToUpper(symbol), period)
}

func performanceKey(portfolioID int64, period model.Period) string {
	if period == "" {
		period = "all"
	}
	return fmt.Sprintf("performance:%d:%s", portfolioID, period)
}

func portfolioPattern(portfolioID int64) string {
	return fmt.Sprintf("performance:%d:*", portfolioID)
}

func (r *RedisCache) SetQuote(ctx context.Context, quote model.Quote) error {
	return r.set(ctx, "RedisCache.SetQuote", quoteKey(quote.Symbol), quote, r.cfg.Cache.QuoteExpiration)
}

func (r *RedisCache) GetQuote(ctx context.Context, symbol string) (quote model.Quote, err error) {
	err = r.get(ctx, "RedisCache.GetQuote", quoteKey(symbol), &quote)
	return quote, err
}

func (r *RedisCache) SetHistorical(ctx context.Context, symbol, period string, points []model.PricePoint) error {
	return r.set(ctx, "RedisCache.SetHistorical", historicalKey(symbol, period), points, r.cfg.Cache.HistoricalExpiration)
}

func (r *RedisCache) GetHistorical(ctx context.Context, symbol, period string) (points []model.PricePoint, err error) {
	err = r.get(ctx, "RedisCache.GetHistorical", historicalKey(symbol, period), &points)
	return points, err
}

func (r *RedisCache) SetPerformance(ctx context.Context, period model.Period, report model.PerformanceReport) error {
	return r.set(ctx, "RedisCache.SetPerformance", performanceKey(report.PortfolioID, period), report, r.cfg.Cache.PerformanceExpiration)
}

func (r *RedisCache) GetPerformance(ctx context.Context, portfolioID int64, period model.Period) (report model.PerformanceReport, err error) {
	err = r.get(ctx, "RedisCache.GetPerformance", performanceKey(portfolioID, period), &report)
	return report, err
}

// FlushPortfolioCache drops every cached performance view of the portfolio.
func (r *RedisCache) FlushPortfolioCache(ctx context.Context, portfolioID int64) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisCache.FlushPortfolioCache"
	slog.Debug("FlushPortfolioCache start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	defer func() {
		if err != nil {
			slog.Error("FlushPortfolioCache failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("FlushPortfolioCache completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	var keys []string
	iter := r.redis.Scan(ctx, 0, portfolioPattern(portfolioID), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err = iter.Err(); err != nil {
		return err
	}

	if len(keys) == 0 {
		return nil
	}
	return r.redis.Del(ctx, keys...).Err()
}

func (r *RedisCache) set(ctx context.Context, op, key string, value any, ttl time.Duration) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("cache set start", slog.String("rqID", rqID), slog.String("op", op), slog.String("key", key))

	valueJson, err := json.Marshal(value)
	if err != nil {
		slog.Error("can't marshall value", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return fmt.Errorf("can't marshall value: %w", err)
	}

	err = r.redis.Set(ctx, key, valueJson, ttl).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("cache set completed", slog.String("rqID", rqID), slog.String("op", op))
	return nil
}

func (r *RedisCache) get(ctx context.Context, op, key string, dest any) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("cache get start", slog.String("rqID", rqID), slog.String("op", op), slog.String("key", key))

	res, err := r.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			slog.Debug("cache miss", slog.String("rqID", rqID), slog.String("op", op), slog.String("key", key))
			return ErrCacheMiss
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()), slog.String("key", key))
		return err
	}

	err = json.Unmarshal([]byte(res), dest)
	if err != nil {
		slog.Error(
			"can't unmarshall cached value",
			slog.String("rqID", rqID),
			slog.String("op", op),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return fmt.Errorf("can't unmarshall cached value: %w", err)
	}

	slog.Debug("cache get finished", slog.String("rqID", rqID), slog.String("op", op))
	return nil
}
