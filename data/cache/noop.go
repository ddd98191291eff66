package cache

import (
	"context"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
)

// NoopCache is used when Redis is disabled: writes are dropped and every read misses.
type NoopCache struct{}

func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

func (NoopCache) SetQuote(context.Context, model.Quote) error { return nil }

func (NoopCache) GetQuote(context.Context, string) (model.Quote, error) {
	return model.Quote{}, ErrCacheMiss
}

func (NoopCache) SetHistorical(context.Context, string, string, []model.PricePoint) error {
	return nil
}

func (NoopCache) GetHistorical(context.Context, string, string) ([]model.PricePoint, error) {
	return nil, ErrCacheMiss
}

func (NoopCache) SetPerformance(context.Context, model.Period, model.PerformanceReport) error {
	return nil
}

func (NoopCache) GetPerformance(context.Context, int64, model.Period) (model.PerformanceReport, error) {
	return model.PerformanceReport{}, ErrCacheMiss
}

func (NoopCache) FlushPortfolioCache(context.Context, int64) error { return nil }
