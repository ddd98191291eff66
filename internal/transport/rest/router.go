package rest

import (
	"net/http"
	"strconv"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

func NewRouter(cfg *config.Config, svc PortfolioService, ws http.Handler) http.Handler {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.HTTP.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
	}).Handler)

	r.Get("/alive", Healthcheck)
	// websocket connections must not be cut by the request timeout
	if ws != nil {
		r.Handle("/ws", ws)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))
		r.Use(Auth([]byte(cfg.Auth.JWTSecret)))

		r.Route("/portfolios", func(r chi.Router) {
			r.Post("/", h.CreatePortfolio)
			r.Get("/", h.GetPortfolios)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetPortfolio)
				r.Delete("/", h.DeletePortfolio)
				r.Post("/holdings", h.AddHolding)
				r.Post("/holdings/{assetID}/sell", h.SellHolding)
				r.Post("/transactions", h.RecordTransaction)
				r.Get("/transactions", h.GetTransactions)
				r.Delete("/transactions/{txID}", h.DeactivateTransaction)
				r.Get("/performance", h.GetPerformance)
				r.Post("/refresh", h.RefreshPortfolio)
				r.Get("/report", h.DownloadReport)
				r.Post("/report/upload", h.UploadReport)
			})
		})

		r.Route("/assets/{assetID}/alerts", func(r chi.Router) {
			r.Post("/", h.CreateAlert)
			r.Get("/", h.GetAlerts)
			r.Delete("/{alertID}", h.DeactivateAlert)
		})

		r.Route("/market", func(r chi.Router) {
			r.Get("/quote/{symbol}", h.GetQuote)
			r.Get("/historical/{symbol}", h.GetHistorical)
			r.Get("/usage", h.MarketUsage)
			r.Post("/prices", h.UpdatePrice)
		})

		r.Put("/users/me/telegram", h.LinkTelegram)
		r.Post("/users/me/telegram/link-code", h.CreateTelegramLinkCode)
	})

	return r
}

func NewHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.HTTP.Port),
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
}
