package portfolioService

import (
	"context"
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	owner    int64 = 100
	stranger int64 = 200
)

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	if !d(want).Equal(got) {
		assert.Fail(t, "decimals differ", append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
	}
}

func createPortfolio(t *testing.T, env *testEnv) model.Portfolio {
	t.Helper()
	p, err := env.svc.CreatePortfolio(context.Background(), owner, "  Main  ")
	require.NoError(t, err)
	return p
}

func TestCreatePortfolio(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	p := createPortfolio(t, env)
	assert.Equal(t, "Main", p.Name)
	assert.Equal(t, owner, p.UserID)
	assert.True(t, p.TotalValue.IsZero())

	_, err := env.repo.GetUser(ctx, owner)
	assert.NoError(t, err, "user is created on first portfolio")

	for _, name := range []string{"", "   ", string(make([]byte, 256))} {
		_, err = env.svc.CreatePortfolio(ctx, owner, name)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	}

	list, err := env.svc.GetPortfolios(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAddHoldingSeedsPriceFromMarket(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := createPortfolio(t, env)

	env.market.quotes["AAPL"] = model.Quote{Symbol: "AAPL", Price: d("120"), Source: "fake"}

	out, err := env.svc.AddHolding(ctx, p.PortfolioID, owner, model.HoldingInput{
		Symbol:   "aapl",
		Quantity: d("10"),
		Price:    d("100"),
	})
	require.NoError(t, err)
	require.Len(t, out.Assets, 1)

	asset := out.Assets[0]
	assert.Equal(t, "AAPL", asset.Symbol)
	assert.NotZero(t, asset.AssetID)
	assertDecimal(t, "120", asset.CurrentPrice)
	assertDecimal(t, "100", asset.AveragePrice)
	assertDecimal(t, "1200", out.TotalValue)
	assertDecimal(t, "1000", out.TotalCost)
	assertDecimal(t, "20", out.TotalGainLossPercentage)

	txs, err := env.svc.GetTransactions(ctx, p.PortfolioID, owner)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, model.TransactionBuy, txs[0].Type)
	assertDecimal(t, "1000", txs[0].TotalAmount)
	assert.Equal(t, asset.AssetID, txs[0].AssetID)

	assert.Contains(t, env.cache.flushed, p.PortfolioID)
	assert.Contains(t, env.repo.locked, p.PortfolioID)
}

func TestAddHoldingFallsBackToBuyPrice(t *testing.T) {
	env := newTestEnv()
	p := createPortfolio(t, env)

	out, err := env.svc.AddHolding(context.Background(), p.PortfolioID, owner, model.HoldingInput{
		Symbol:   "UNKNOWN",
		Quantity: d("2"),
		Price:    d("50"),
	})
	require.NoError(t, err)
	assertDecimal(t, "50", out.Assets[0].CurrentPrice)
	assert.True(t, out.TotalGainLoss.IsZero())
}

func TestAddHoldingToExistingAveragesCost(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := createPortfolio(t, env)

	out, err := env.svc.AddHolding(ctx, p.PortfolioID, owner, model.HoldingInput{Symbol: "MSFT", Quantity: d("10"), Price: d("100")})
	require.NoError(t, err)
	assetID := out.Assets[0].AssetID

	out, err = env.svc.AddHolding(ctx, p.PortfolioID, owner, model.HoldingInput{AssetID: &assetID, Quantity: d("10"), Price: d("200")})
	require.NoError(t, err)
	require.Len(t, out.Assets, 1)
	assertDecimal(t, "20", out.Assets[0].Quantity)
	assertDecimal(t, "150", out.Assets[0].AveragePrice)

	out, err = env.svc.AddHolding(ctx, p.PortfolioID, owner, model.HoldingInput{Symbol: "msft", Quantity: d("20"), Price: d("150")})
	require.NoError(t, err)
	require.Len(t, out.Assets, 1, "same symbol reuses the holding")
	assertDecimal(t, "40", out.Assets[0].Quantity)
}

func TestAddHoldingValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := createPortfolio(t, env)
	future := testNow.Add(time.Hour)
	missing := int64(999)

	tests := []struct {
		name  string
		input model.HoldingInput
		err   error
	}{
		{"no symbol or asset", model.HoldingInput{Quantity: d("1"), Price: d("1")}, service.ErrInvalidInput},
		{"negative quantity", model.HoldingInput{Symbol: "A", Quantity: d("-1"), Price: d("1")}, service.ErrInvalidInput},
		{"negative price", model.HoldingInput{Symbol: "A", Quantity: d("1"), Price: d("-1")}, service.ErrInvalidInput},
		{"future date", model.HoldingInput{Symbol: "A", Quantity: d("1"), Price: d("1"), Date: &future}, service.ErrInvalidInput},
		{"unknown asset", model.HoldingInput{AssetID: &missing, Quantity: d("1"), Price: d("1")}, service.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.AddHolding(ctx, p.PortfolioID, owner, tt.input)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	_, err := env.svc.AddHolding(ctx, p.PortfolioID, stranger, model.HoldingInput{Symbol: "A", Quantity: d("1"), Price: d("1")})
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = env.svc.AddHolding(ctx, 12345, owner, model.HoldingInput{Symbol: "A", Quantity: d("1"), Price: d("1")})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestRemoveHoldingClampsOversell(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := createPortfolio(t, env)

	out, err := env.svc.AddHolding(ctx, p.PortfolioID, owner, model.HoldingInput{Symbol: "TSLA", Quantity: d("5"), Price: d("20")})
	require.NoError(t, err)
	assetID := out.Assets[0].AssetID

	out, err = env.svc.RemoveHolding(ctx, p.PortfolioID, owner, assetID, d("8"))
	require.NoError(t, err)
	assertDecimal(t, "0", out.Assets[0].Quantity)
	assertDecimal(t, "20", out.Assets[0].AveragePrice)
	assertDecimal(t, "0", out.TotalValue)

	txs, err := env.svc.GetTransactions(ctx, p.PortfolioID, owner)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, model.TransactionSell, txs[1].Type)
	assertDecimal(t, "5", txs[1].Quantity, "only the filled quantity is recorded")

	_, err = env.svc.RemoveHolding(ctx, p.PortfolioID, owner, assetID, d("1"))
	require.NoError(t, err)
	txs, _ = env.svc.GetTransactions(ctx, p.PortfolioID, owner)
	assert.Len(t, txs, 2, "nothing filled, nothing recorded")

	_, err = env.svc.RemoveHolding(ctx, p.PortfolioID, owner, assetID, decimal.Zero)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestRecordTransactionSplitAndDividend(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := createPortfolio(t, env)

	out, err := env.svc.AddHolding(ctx, p.PortfolioID, owner, model.HoldingInput{Symbol: "NVDA", Quantity: d("10"), Price: d("50")})
	require.NoError(t, err)
	assetID := out.Assets[0].AssetID

	out, tx, err := env.svc.RecordTransaction(ctx, p.PortfolioID, owner, assetID, model.Transaction{
		Type:     model.TransactionSplit,
		Quantity: d("4"),
	})
	require.NoError(t, err)
	assert.NotZero(t, tx.TransactionID)
	assertDecimal(t, "40", out.Assets[0].Quantity)
	assertDecimal(t, "12.5", out.Assets[0].AveragePrice)
	assertDecimal(t, "500", out.TotalCost)

	out, _, err = env.svc.RecordTransaction(ctx, p.PortfolioID, owner, assetID, model.Transaction{
		Type:     model.TransactionDividend,
		Quantity: d("40"),
		Price:    d("0.25"),
	})
	require.NoError(t, err)
	assertDecimal(t, "10", out.Assets[0].DividendIncome)

	_, _, err = env.svc.RecordTransaction(ctx, p.PortfolioID, owner, assetID, model.Transaction{Type: "gift"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestDeactivateTransaction(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := createPortfolio(t, env)
	other, err := env.svc.CreatePortfolio(ctx, owner, "Other")
	require.NoError(t, err)

	_, err = env.svc.AddHolding(ctx, p.PortfolioID, owner, model.HoldingInput{Symbol: "AMD", Quantity: d("1"), Price: d("10")})
	require.NoError(t, err)
	txs, _ := env.svc.GetTransactions(ctx, p.PortfolioID, owner)
	require.Len(t, txs, 1)

	err = env.svc.DeactivateTransaction(ctx, other.PortfolioID, owner, txs[0].TransactionID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	err = env.svc.DeactivateTransaction(ctx, p.PortfolioID, stranger, txs[0].TransactionID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	require.NoError(t, env.svc.DeactivateTransaction(ctx, p.PortfolioID, owner, txs[0].TransactionID))
	txs, _ = env.svc.GetTransactions(ctx, p.PortfolioID, owner)
	assert.False(t, txs[0].IsActive)

	got, err := env.svc.GetPortfolio(ctx, p.PortfolioID, owner)
	require.NoError(t, err)
	assertDecimal(t, "1", got.Assets[0].Quantity, "holding is not reverted")
}

func TestDeletePortfolio(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := createPortfolio(t, env)

	assert.ErrorIs(t, env.svc.DeletePortfolio(ctx, p.PortfolioID, stranger), service.ErrForbidden)
	require.NoError(t, env.svc.DeletePortfolio(ctx, p.PortfolioID, owner))

	_, err := env.svc.GetPortfolio(ctx, p.PortfolioID, owner)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
