package rest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/externalApi"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type PortfolioService interface {
	CreatePortfolio(ctx context.Context, userID int64, name string) (model.Portfolio, error)
	GetPortfolios(ctx context.Context, userID int64) ([]model.Portfolio, error)
	GetPortfolio(ctx context.Context, portfolioID, userID int64) (model.Portfolio, error)
	DeletePortfolio(ctx context.Context, portfolioID, userID int64) error
	AddHolding(ctx context.Context, portfolioID, userID int64, input model.HoldingInput) (model.Portfolio, error)
	RemoveHolding(ctx context.Context, portfolioID, userID, assetID int64, quantity decimal.Decimal) (model.Portfolio, error)
	RecordTransaction(ctx context.Context, portfolioID, userID, assetID int64, tx model.Transaction) (model.Portfolio, model.Transaction, error)
	GetTransactions(ctx context.Context, portfolioID, userID int64) ([]model.Transaction, error)
	DeactivateTransaction(ctx context.Context, portfolioID, userID, transactionID int64) error
	GetPerformance(ctx context.Context, portfolioID, userID int64, period string) (model.PerformanceReport, error)
	RefreshUserPortfolio(ctx context.Context, portfolioID, userID int64) (model.Portfolio, error)
	GenerateReport(ctx context.Context, portfolioID, userID int64) ([]byte, string, error)
	UploadReport(ctx context.Context, portfolioID, userID int64) (string, error)
	CreateAlert(ctx context.Context, userID, assetID int64, alertType model.AlertType, value decimal.Decimal) (model.Alert, error)
	GetAlerts(ctx context.Context, userID, assetID int64) ([]model.Alert, error)
	DeactivateAlert(ctx context.Context, userID, assetID, alertID int64) error
	UpdatePrice(ctx context.Context, symbol string, price decimal.Decimal, volume int64, source string) ([]model.Asset, error)
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
	GetHistorical(ctx context.Context, symbol, period string) ([]model.PricePoint, error)
	MarketUsage() []externalApi.UsageStats
	LinkTelegram(ctx context.Context, userID, chatID int64) error
	CreateTelegramLinkCode(ctx context.Context, userID int64) (string, error)
}

type Handler struct {
	svc PortfolioService
}

func NewHandler(svc PortfolioService) *Handler {
	return &Handler{svc: svc}
}

func Healthcheck(w http.ResponseWriter, r *http.Request) {
	respond(w, r, map[string]string{"status": "ok"}, http.StatusOK)
}

type createPortfolioRequest struct {
	Name string `json:"name"`
}

type sellRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

type transactionRequest struct {
	AssetID  int64                 `json:"assetId"`
	Type     model.TransactionType `json:"type"`
	Quantity decimal.Decimal       `json:"quantity"`
	Price    decimal.Decimal       `json:"price"`
	Fees     decimal.Decimal       `json:"fees"`
	Date     *time.Time            `json:"date,omitempty"`
}

type transactionResponse struct {
	Portfolio   model.Portfolio    `json:"portfolio"`
	Transaction *model.Transaction `json:"transaction,omitempty"`
}

type alertRequest struct {
	Type  model.AlertType `json:"type"`
	Value decimal.Decimal `json:"value"`
}

type priceRequest struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	Volume int64           `json:"volume"`
	Source string          `json:"source"`
}

type telegramRequest struct {
	ChatID int64 `json:"chatId"`
}

// portfolioRequest resolves the current user and the {id} path param.
func portfolioRequest(r *http.Request) (uid, portfolioID int64, err error) {
	if uid, err = userID(r); err != nil {
		return 0, 0, err
	}
	portfolioID, err = idParam(r, "id")
	return uid, portfolioID, err
}

func (h *Handler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req createPortfolioRequest
	if err = decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	portfolio, err := h.svc.CreatePortfolio(r.Context(), uid, req.Name)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, portfolio, http.StatusCreated)
}

func (h *Handler) GetPortfolios(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	portfolios, err := h.svc.GetPortfolios(r.Context(), uid)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if portfolios == nil {
		portfolios = []model.Portfolio{}
	}
	respond(w, r, portfolios, http.StatusOK)
}

func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	uid, pid, err := portfolioRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	portfolio, err := h.svc.GetPortfolio(r.Context(), pid, uid)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, portfolio, http.StatusOK)
}

func (h *Handler) DeletePortfolio(w http.ResponseWriter, r *http.Request) {
	uid, pid, err := portfolioRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err = h.svc.DeletePortfolio(r.Context(), pid, uid); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddHolding(w http.ResponseWriter, r *http.Request) {
	uid, pid, err := portfolioRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var input model.HoldingInput
	if err = decode(r, &input); err != nil {
		respondError(w, r, err)
		return
	}

	portfolio, err := h.svc.AddHolding(r.Context(), pid, uid, input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, portfolio, http.StatusOK)
}

func (h *Handler) SellHolding(w http.ResponseWriter, r *http.Request) {
	uid, pid, err := portfolioRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	assetID, err := idParam(r, "assetID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req sellRequest
	if err = decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	portfolio, err := h.svc.RemoveHolding(r.Context(), pid, uid, assetID, req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, portfolio, http.StatusOK)
}

func (h *Handler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	uid, pid, err := portfolioRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req transactionRequest
	if err = decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.AssetID <= 0 {
		respondError(w, r, badRequest("assetId is required"))
		return
	}

	tx := model.Transaction{
		Type:     req.Type,
		Quantity: req.Quantity,
		Price:    req.Price,
		Fees:     req.Fees,
	}
	if req.Date != nil {
		tx.Date = req.Date.UTC()
	}

	portfolio, recorded, err := h.svc.RecordTransaction(r.Context(), pid, uid, req.AssetID, tx)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res := transactionResponse{Portfolio: portfolio}
	if recorded.TransactionID != 0 {
		res.Transaction = &recorded
	}
	respond(w, r, res, http.StatusCreated)
}

func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	uid, pid, err := portfolioRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	transactions, err := h.svc.GetTransactions(r.Context(), pid, uid)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if transactions == nil {
		transactions = []model.Transaction{}
	}
	respond(w, r, transactions, http.StatusOK)
}

func (h *Handler) DeactivateTransaction(w http.ResponseWriter, r *http.Request) {
	uid, pid, err := portfolioRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	txID, err := idParam(r, "txID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err = h.svc.DeactivateTransaction(r.Context(), pid, uid, txID); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	uid, pid, err := portfolioRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	report, err := h.svc.GetPerformance(r.Context(), pid, uid, r.URL.Query().Get("period"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, report, http.StatusOK)
}

func (h *Handler) RefreshPortfolio(w http.ResponseWriter, r *http.Request) {
	uid, pid, err := portfolioRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	portfolio, err := h.svc.RefreshUserPortfolio(r.Context(), pid, uid)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, portfolio, http.StatusOK)
}

func (h *Handler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	uid, pid, err := portfolioRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	file, filename, err := h.svc.GenerateReport(r.Context(), pid, uid)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(file)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file)
}

func (h *Handler) UploadReport(w http.ResponseWriter, r *http.Request) {
	uid, pid, err := portfolioRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	link, err := h.svc.UploadReport(r.Context(), pid, uid)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, map[string]string{"link": link}, http.StatusOK)
}

func (h *Handler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	assetID, err := idParam(r, "assetID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req alertRequest
	if err = decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	alert, err := h.svc.CreateAlert(r.Context(), uid, assetID, req.Type, req.Value)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, alert, http.StatusCreated)
}

func (h *Handler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	assetID, err := idParam(r, "assetID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	alerts, err := h.svc.GetAlerts(r.Context(), uid, assetID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if alerts == nil {
		alerts = []model.Alert{}
	}
	respond(w, r, alerts, http.StatusOK)
}

func (h *Handler) DeactivateAlert(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	assetID, err := idParam(r, "assetID")
	if err != nil {
		respondError(w, r, err)
		return
	}
	alertID, err := idParam(r, "alertID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err = h.svc.DeactivateAlert(r.Context(), uid, assetID, alertID); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Source == "" {
		req.Source = "manual"
	}

	assets, err := h.svc.UpdatePrice(r.Context(), req.Symbol, req.Price, req.Volume, req.Source)
	if err != nil && len(assets) == 0 {
		respondError(w, r, err)
		return
	}
	if assets == nil {
		assets = []model.Asset{}
	}
	respond(w, r, assets, http.StatusOK)
}

func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.svc.GetQuote(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, quote, http.StatusOK)
}

func (h *Handler) GetHistorical(w http.ResponseWriter, r *http.Request) {
	points, err := h.svc.GetHistorical(r.Context(), chi.URLParam(r, "symbol"), r.URL.Query().Get("period"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if points == nil {
		points = []model.PricePoint{}
	}
	respond(w, r, points, http.StatusOK)
}

func (h *Handler) MarketUsage(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h.svc.MarketUsage(), http.StatusOK)
}

func (h *Handler) LinkTelegram(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req telegramRequest
	if err = decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if err = h.svc.LinkTelegram(r.Context(), uid, req.ChatID); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateTelegramLinkCode(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	code, err := h.svc.CreateTelegramLinkCode(r.Context(), uid)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, map[string]string{"code": code}, http.StatusCreated)
}
