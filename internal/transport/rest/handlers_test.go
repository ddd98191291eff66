package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// fakeService overrides what the tests touch; anything else panics through the nil interface.
type fakeService struct {
	PortfolioService

	portfolios map[int64]model.Portfolio
	lastUserID int64
	lastInput  model.HoldingInput
	lastPrice  priceRequest
	report     []byte
}

func newFakeService() *fakeService {
	return &fakeService{portfolios: map[int64]model.Portfolio{
		1: {PortfolioID: 1, UserID: 100, Name: "main"},
	}}
}

func (f *fakeService) CreatePortfolio(_ context.Context, userID int64, name string) (model.Portfolio, error) {
	f.lastUserID = userID
	if strings.TrimSpace(name) == "" {
		return model.Portfolio{}, fmt.Errorf("%w: empty name", service.ErrInvalidInput)
	}
	return model.Portfolio{PortfolioID: 2, UserID: userID, Name: name}, nil
}

func (f *fakeService) GetPortfolios(_ context.Context, userID int64) ([]model.Portfolio, error) {
	f.lastUserID = userID
	return nil, nil
}

func (f *fakeService) GetPortfolio(_ context.Context, portfolioID, userID int64) (model.Portfolio, error) {
	p, ok := f.portfolios[portfolioID]
	if !ok {
		return model.Portfolio{}, service.ErrNotFound
	}
	if p.UserID != userID {
		return model.Portfolio{}, service.ErrForbidden
	}
	return p, nil
}

func (f *fakeService) AddHolding(ctx context.Context, portfolioID, userID int64, input model.HoldingInput) (model.Portfolio, error) {
	f.lastInput = input
	return f.GetPortfolio(ctx, portfolioID, userID)
}

func (f *fakeService) GenerateReport(ctx context.Context, portfolioID, userID int64) ([]byte, string, error) {
	if _, err := f.GetPortfolio(ctx, portfolioID, userID); err != nil {
		return nil, "", err
	}
	return f.report, "portfolio_1_2025-03-01_12-00-00.xlsx", nil
}

func (f *fakeService) UploadReport(context.Context, int64, int64) (string, error) {
	return "", fmt.Errorf("%w: cloud storage is not configured", service.ErrUnavailable)
}

func (f *fakeService) GetQuote(_ context.Context, symbol string) (model.Quote, error) {
	if symbol == "FAIL" {
		return model.Quote{}, fmt.Errorf("boom")
	}
	return model.Quote{Symbol: symbol, Price: decimal.NewFromInt(150)}, nil
}

func (f *fakeService) UpdatePrice(_ context.Context, symbol string, price decimal.Decimal, volume int64, source string) ([]model.Asset, error) {
	f.lastPrice = priceRequest{Symbol: symbol, Price: price, Volume: volume, Source: source}
	return []model.Asset{{AssetID: 1, Symbol: symbol, CurrentPrice: price}}, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = testSecret
	cfg.HTTP.RequestTimeout = 5 * time.Second
	cfg.HTTP.CORSOrigins = []string{"*"}
	return cfg
}

func token(t *testing.T, secret, sub string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func do(t *testing.T, h http.Handler, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAlive(t *testing.T) {
	router := NewRouter(testConfig(), newFakeService(), nil)

	rr := do(t, router, http.MethodGet, "/alive", "", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestAuth(t *testing.T) {
	router := NewRouter(testConfig(), newFakeService(), nil)

	tests := []struct {
		name   string
		bearer string
		want   int
	}{
		{name: "missing token", bearer: "", want: http.StatusUnauthorized},
		{name: "wrong secret", bearer: token(t, "other", "100"), want: http.StatusUnauthorized},
		{name: "non numeric subject", bearer: token(t, testSecret, "alice"), want: http.StatusUnauthorized},
		{name: "valid", bearer: token(t, testSecret, "100"), want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, router, http.MethodGet, "/api/v1/portfolios", "", tt.bearer)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestCreatePortfolio(t *testing.T) {
	svc := newFakeService()
	router := NewRouter(testConfig(), svc, nil)

	rr := do(t, router, http.MethodPost, "/api/v1/portfolios", `{"name":"retirement"}`, token(t, testSecret, "100"))

	require.Equal(t, http.StatusCreated, rr.Code)
	var got model.Portfolio
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "retirement", got.Name)
	assert.Equal(t, int64(100), got.UserID)
	assert.Equal(t, int64(100), svc.lastUserID)
}

func TestGetPortfoliosReturnsEmptyList(t *testing.T) {
	router := NewRouter(testConfig(), newFakeService(), nil)

	rr := do(t, router, http.MethodGet, "/api/v1/portfolios", "", token(t, testSecret, "100"))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestErrorMapping(t *testing.T) {
	router := NewRouter(testConfig(), newFakeService(), nil)
	owner := token(t, testSecret, "100")

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		bearer string
		want   int
	}{
		{name: "invalid input", method: http.MethodPost, path: "/api/v1/portfolios", body: `{"name":"  "}`, bearer: owner, want: http.StatusBadRequest},
		{name: "unknown field", method: http.MethodPost, path: "/api/v1/portfolios", body: `{"title":"x"}`, bearer: owner, want: http.StatusBadRequest},
		{name: "bad id", method: http.MethodGet, path: "/api/v1/portfolios/abc", bearer: owner, want: http.StatusBadRequest},
		{name: "not found", method: http.MethodGet, path: "/api/v1/portfolios/42", bearer: owner, want: http.StatusNotFound},
		{name: "forbidden", method: http.MethodGet, path: "/api/v1/portfolios/1", bearer: token(t, testSecret, "200"), want: http.StatusForbidden},
		{name: "unavailable", method: http.MethodPost, path: "/api/v1/portfolios/1/report/upload", bearer: owner, want: http.StatusServiceUnavailable},
		{name: "internal", method: http.MethodGet, path: "/api/v1/market/quote/FAIL", bearer: owner, want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, router, tt.method, tt.path, tt.body, tt.bearer)

			require.Equal(t, tt.want, rr.Code)
			var res errorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
			assert.NotEmpty(t, res.Error)
			assert.NotEmpty(t, res.RequestID)
		})
	}
}

func TestInternalErrorIsHidden(t *testing.T) {
	router := NewRouter(testConfig(), newFakeService(), nil)

	rr := do(t, router, http.MethodGet, "/api/v1/market/quote/FAIL", "", token(t, testSecret, "100"))

	assert.NotContains(t, rr.Body.String(), "boom")
}

func TestAddHoldingDecodesDecimals(t *testing.T) {
	svc := newFakeService()
	router := NewRouter(testConfig(), svc, nil)

	body := `{"symbol":"AAPL","quantity":"10","price":150.25,"fees":"1"}`
	rr := do(t, router, http.MethodPost, "/api/v1/portfolios/1/holdings", body, token(t, testSecret, "100"))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "AAPL", svc.lastInput.Symbol)
	assert.True(t, svc.lastInput.Quantity.Equal(decimal.NewFromInt(10)))
	assert.True(t, svc.lastInput.Price.Equal(decimal.RequireFromString("150.25")))
}

func TestUpdatePriceDefaultsSource(t *testing.T) {
	svc := newFakeService()
	router := NewRouter(testConfig(), svc, nil)

	rr := do(t, router, http.MethodPost, "/api/v1/market/prices", `{"symbol":"AAPL","price":"190","volume":1000}`, token(t, testSecret, "100"))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "manual", svc.lastPrice.Source)
	assert.Equal(t, int64(1000), svc.lastPrice.Volume)
}

func TestDownloadReport(t *testing.T) {
	svc := newFakeService()
	svc.report = []byte("xlsx-bytes")
	router := NewRouter(testConfig(), svc, nil)

	rr := do(t, router, http.MethodGet, "/api/v1/portfolios/1/report", "", token(t, testSecret, "100"))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, xlsxContentType, rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="portfolio_1_2025-03-01_12-00-00.xlsx"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "xlsx-bytes", rr.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	router := NewRouter(testConfig(), newFakeService(), nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/portfolios", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
