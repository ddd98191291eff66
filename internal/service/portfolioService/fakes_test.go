package portfolioService

import (
	"context"
	"errors"
	"io"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/KotFed0t/portfolio_tracker/data/repository"
	"github.com/KotFed0t/portfolio_tracker/internal/externalApi"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/valuation"
	"github.com/shopspring/decimal"
)

type fakeRepo struct {
	mu           sync.Mutex
	seq          int64
	users        map[int64]model.User
	portfolios   map[int64]model.Portfolio
	assets       map[int64]model.Asset
	transactions map[int64]model.Transaction
	alerts       map[int64]model.Alert
	locked       []int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:        map[int64]model.User{},
		portfolios:   map[int64]model.Portfolio{},
		assets:       map[int64]model.Asset{},
		transactions: map[int64]model.Transaction{},
		alerts:       map[int64]model.Alert{},
	}
}

func (r *fakeRepo) nextID() int64 {
	r.seq++
	return r.seq
}

func (r *fakeRepo) WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error {
	return tFunc(ctx)
}

func (r *fakeRepo) LockPortfolio(_ context.Context, portfolioID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked = append(r.locked, portfolioID)
	return nil
}

func (r *fakeRepo) EnsureUser(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[userID]; !ok {
		r.users[userID] = model.User{UserID: userID}
	}
	return nil
}

func (r *fakeRepo) GetUser(_ context.Context, userID int64) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r *fakeRepo) SetTelegramChatID(_ context.Context, userID, chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.TelegramChatID = &chatID
	r.users[userID] = u
	return nil
}

func (r *fakeRepo) CreatePortfolio(_ context.Context, userID int64, name string) (model.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := model.Portfolio{PortfolioID: r.nextID(), UserID: userID, Name: name}
	r.portfolios[p.PortfolioID] = p
	return p, nil
}

func (r *fakeRepo) GetPortfolio(_ context.Context, portfolioID int64) (model.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.portfolios[portfolioID]
	if !ok {
		return model.Portfolio{}, repository.ErrNotFound
	}
	return p, nil
}

func (r *fakeRepo) GetPortfoliosByUser(_ context.Context, userID int64) ([]model.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Portfolio
	for _, p := range r.portfolios {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PortfolioID < out[j].PortfolioID })
	return out, nil
}

func (r *fakeRepo) GetPortfolioIDs(_ context.Context) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []int64
	for id := range r.portfolios {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (r *fakeRepo) UpdatePortfolio(_ context.Context, portfolio model.Portfolio) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.portfolios[portfolio.PortfolioID]; !ok {
		return repository.ErrNotFound
	}
	portfolio.Assets = nil
	r.portfolios[portfolio.PortfolioID] = portfolio
	return nil
}

func (r *fakeRepo) DeletePortfolio(_ context.Context, portfolioID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.portfolios[portfolioID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.portfolios, portfolioID)
	return nil
}

func (r *fakeRepo) filterAssets(keep func(model.Asset) bool) []model.Asset {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Asset
	for _, a := range r.assets {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssetID < out[j].AssetID })
	return out
}

func (r *fakeRepo) GetAssets(_ context.Context, portfolioID int64) ([]model.Asset, error) {
	return r.filterAssets(func(a model.Asset) bool { return a.PortfolioID == portfolioID }), nil
}

func (r *fakeRepo) GetAssetsBySymbol(_ context.Context, symbol string) ([]model.Asset, error) {
	return r.filterAssets(func(a model.Asset) bool { return a.Symbol == symbol }), nil
}

func (r *fakeRepo) GetAsset(_ context.Context, assetID int64) (model.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assets[assetID]
	if !ok {
		return model.Asset{}, repository.ErrNotFound
	}
	return a, nil
}

func (r *fakeRepo) GetAssetBySymbol(_ context.Context, portfolioID int64, symbol string) (model.Asset, error) {
	found := r.filterAssets(func(a model.Asset) bool { return a.PortfolioID == portfolioID && a.Symbol == symbol })
	if len(found) == 0 {
		return model.Asset{}, repository.ErrNotFound
	}
	return found[0], nil
}

func (r *fakeRepo) GetHeldSymbols(_ context.Context) ([]string, error) {
	var symbols []string
	for _, a := range r.filterAssets(func(a model.Asset) bool { return a.Quantity.IsPositive() }) {
		if !slices.Contains(symbols, a.Symbol) {
			symbols = append(symbols, a.Symbol)
		}
	}
	return symbols, nil
}

func (r *fakeRepo) InsertAsset(_ context.Context, asset model.Asset) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.assets {
		if a.PortfolioID == asset.PortfolioID && a.Symbol == asset.Symbol {
			return 0, repository.ErrAlreadyExists
		}
	}
	asset.AssetID = r.nextID()
	r.assets[asset.AssetID] = asset
	return asset.AssetID, nil
}

func (r *fakeRepo) UpdateAsset(_ context.Context, asset model.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assets[asset.AssetID]; !ok {
		return repository.ErrNotFound
	}
	r.assets[asset.AssetID] = asset
	return nil
}

func (r *fakeRepo) InsertTransaction(_ context.Context, tx model.Transaction) (model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx.TransactionID = r.nextID()
	r.transactions[tx.TransactionID] = tx
	return tx, nil
}

func (r *fakeRepo) GetTransactions(_ context.Context, portfolioID int64) ([]model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Transaction
	for _, tx := range r.transactions {
		if tx.PortfolioID == portfolioID {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TransactionID < out[j].TransactionID })
	return out, nil
}

func (r *fakeRepo) GetTransaction(_ context.Context, transactionID int64) (model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.transactions[transactionID]
	if !ok {
		return model.Transaction{}, repository.ErrNotFound
	}
	return tx, nil
}

func (r *fakeRepo) DeactivateTransaction(_ context.Context, transactionID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.transactions[transactionID]
	if !ok {
		return repository.ErrNotFound
	}
	tx.IsActive = false
	r.transactions[transactionID] = tx
	return nil
}

func (r *fakeRepo) InsertAlert(_ context.Context, alert model.Alert) (model.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	alert.AlertID = r.nextID()
	r.alerts[alert.AlertID] = alert
	return alert, nil
}

func (r *fakeRepo) GetAlerts(_ context.Context, assetID int64) ([]model.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Alert
	for _, a := range r.alerts {
		if a.AssetID == assetID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AlertID < out[j].AlertID })
	return out, nil
}

func (r *fakeRepo) GetAlert(_ context.Context, alertID int64) (model.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alerts[alertID]
	if !ok {
		return model.Alert{}, repository.ErrNotFound
	}
	return a, nil
}

func (r *fakeRepo) SetAlertTriggered(_ context.Context, alertID int64, triggeredAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alerts[alertID]
	if !ok {
		return repository.ErrNotFound
	}
	a.LastTriggered = &triggeredAt
	r.alerts[alertID] = a
	return nil
}

func (r *fakeRepo) DeactivateAlert(_ context.Context, alertID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alerts[alertID]
	if !ok {
		return repository.ErrNotFound
	}
	a.IsActive = false
	r.alerts[alertID] = a
	return nil
}

var errMiss = errors.New("miss")

// missCache never has anything, so every read goes to the repo or the market.
type missCache struct {
	mu      sync.Mutex
	flushed []int64
	quotes  int
	reports []model.PerformanceReport

	// onSetPerformance runs right after a report is stored.
	onSetPerformance func()
}

func (c *missCache) SetQuote(context.Context, model.Quote) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quotes++
	return nil
}

func (c *missCache) quotesSet() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quotes
}

func (c *missCache) flushedIDs() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int64(nil), c.flushed...)
}
func (c *missCache) GetQuote(context.Context, string) (model.Quote, error) {
	return model.Quote{}, errMiss
}
func (c *missCache) SetHistorical(context.Context, string, string, []model.PricePoint) error {
	return nil
}
func (c *missCache) GetHistorical(context.Context, string, string) ([]model.PricePoint, error) {
	return nil, errMiss
}
func (c *missCache) SetPerformance(_ context.Context, _ model.Period, report model.PerformanceReport) error {
	c.mu.Lock()
	c.reports = append(c.reports, report)
	hook := c.onSetPerformance
	c.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}
func (c *missCache) GetPerformance(context.Context, int64, model.Period) (model.PerformanceReport, error) {
	return model.PerformanceReport{}, errMiss
}
func (c *missCache) FlushPortfolioCache(_ context.Context, portfolioID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushed = append(c.flushed, portfolioID)
	return nil
}

type fakeMarket struct {
	quotes map[string]model.Quote
	calls  int
}

func (m *fakeMarket) GetQuote(_ context.Context, symbol string) (model.Quote, error) {
	m.calls++
	q, ok := m.quotes[symbol]
	if !ok {
		return model.Quote{}, externalApi.ErrNotFound
	}
	return q, nil
}

func (m *fakeMarket) GetHistorical(_ context.Context, symbol, _ string) ([]model.PricePoint, error) {
	q, ok := m.quotes[symbol]
	if !ok {
		return nil, externalApi.ErrNotFound
	}
	return []model.PricePoint{{Date: q.Timestamp, Price: q.Price}}, nil
}

func (m *fakeMarket) Usage() []externalApi.UsageStats {
	return []externalApi.UsageStats{{Provider: "fake", TotalRequests: int64(m.calls)}}
}

type sentAlert struct {
	chatID int64
	alert  model.FiredAlert
}

type fakeNotifier struct {
	sent []sentAlert
}

func (n *fakeNotifier) NotifyAlert(_ context.Context, chatID int64, alert model.FiredAlert) error {
	n.sent = append(n.sent, sentAlert{chatID: chatID, alert: alert})
	return nil
}

type fakeBroadcaster struct {
	ticks []model.PriceTick
}

func (b *fakeBroadcaster) BroadcastTick(tick model.PriceTick) {
	b.ticks = append(b.ticks, tick)
}

type fakeSession struct {
	codes map[string]int64
}

func (s *fakeSession) SaveLinkCode(_ context.Context, code string, userID int64) error {
	s.codes[code] = userID
	return nil
}

func (s *fakeSession) ConsumeLinkCode(_ context.Context, code string) (int64, error) {
	userID, ok := s.codes[code]
	if !ok {
		return 0, errMiss
	}
	delete(s.codes, code)
	return userID, nil
}

type fakeReports struct{}

func (fakeReports) Generate(_ context.Context, portfolio model.Portfolio, transactions []model.Transaction) ([]byte, string, error) {
	return []byte(portfolio.Name), ".xlsx", nil
}

type fakeStorage struct {
	uploaded map[string][]byte
}

func (s *fakeStorage) UploadFile(_ context.Context, reader io.Reader, filename string) (string, error) {
	b, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.uploaded[filename] = b
	return "https://drive.example/" + filename, nil
}

func (s *fakeStorage) DeleteOldFiles(context.Context) error { return nil }

type testEnv struct {
	svc         *PortfolioService
	repo        *fakeRepo
	cache       *missCache
	market      *fakeMarket
	notifier    *fakeNotifier
	broadcaster *fakeBroadcaster
	session     *fakeSession
	storage     *fakeStorage
	clock       *time.Time
}

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestEnv() *testEnv {
	env := &testEnv{
		repo:        newFakeRepo(),
		cache:       &missCache{},
		market:      &fakeMarket{quotes: map[string]model.Quote{}},
		notifier:    &fakeNotifier{},
		broadcaster: &fakeBroadcaster{},
		session:     &fakeSession{codes: map[string]int64{}},
		storage:     &fakeStorage{uploaded: map[string][]byte{}},
	}
	clock := testNow
	env.clock = &clock

	env.svc = New(valuation.DefaultConfig(), env.repo, env.cache, env.market, Deps{
		Broadcaster:     env.broadcaster,
		Notifier:        env.notifier,
		ReportGenerator: fakeReports{},
		CloudStorage:    env.storage,
		LinkSession:     env.session,
	})
	env.svc.now = func() time.Time { return *env.clock }
	return env
}

func (e *testEnv) advance(d time.Duration) {
	*e.clock = e.clock.Add(d)
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
