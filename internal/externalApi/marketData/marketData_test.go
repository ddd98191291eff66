package marketData

import (
	"context"
	"testing"

	"github.com/KotFed0t/portfolio_tracker/internal/externalApi"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name    string
	symbols []string
}

func (f *fakeProvider) GetQuote(_ context.Context, symbol string) (model.Quote, error) {
	f.symbols = append(f.symbols, symbol)
	return model.Quote{Symbol: symbol, Source: f.name}, nil
}

func (f *fakeProvider) GetHistorical(_ context.Context, symbol, _ string) ([]model.PricePoint, error) {
	f.symbols = append(f.symbols, symbol)
	return nil, nil
}

func (f *fakeProvider) Usage() externalApi.UsageStats {
	return externalApi.UsageStats{Provider: f.name}
}

func TestRouting(t *testing.T) {
	global := &fakeProvider{name: "global"}
	indian := &fakeProvider{name: "indian"}
	m := New(global, indian)
	ctx := context.Background()

	for _, symbol := range []string{"AAPL", "TCS.NS", "reliance.bo", "BRK.B"} {
		_, err := m.GetQuote(ctx, symbol)
		require.NoError(t, err)
	}
	_, err := m.GetHistorical(ctx, "INFY.NS", "1m")
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "BRK.B"}, global.symbols)
	assert.Equal(t, []string{"TCS.NS", "reliance.bo", "INFY.NS"}, indian.symbols)

	usage := m.Usage()
	require.Len(t, usage, 2)
	assert.Equal(t, "global", usage[0].Provider)
}
