package cache

import (
	"context"
	"testing"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "quote:AAPL", quoteKey("aapl"))
	assert.Equal(t, "historical:TCS.NS:1m", historicalKey("tcs.ns", "1m"))
	assert.Equal(t, "performance:7:all", performanceKey(7, ""))
	assert.Equal(t, "performance:7:weekly", performanceKey(7, model.PeriodWeekly))
	assert.Equal(t, "performance:7:*", portfolioPattern(7))
}

func TestNoopCacheAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	c := NewNoopCache()

	assert.NoError(t, c.SetQuote(ctx, model.Quote{Symbol: "AAPL"}))
	_, err := c.GetQuote(ctx, "AAPL")
	assert.ErrorIs(t, err, ErrCacheMiss)

	_, err = c.GetHistorical(ctx, "AAPL", "1m")
	assert.ErrorIs(t, err, ErrCacheMiss)

	_, err = c.GetPerformance(ctx, 1, "")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, c.FlushPortfolioCache(ctx, 1))
}
