package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/data"
	"github.com/KotFed0t/portfolio_tracker/data/cache"
	"github.com/KotFed0t/portfolio_tracker/data/repository/postgres"
	"github.com/KotFed0t/portfolio_tracker/data/session"
	"github.com/KotFed0t/portfolio_tracker/internal/externalApi/alphaVantageApi"
	"github.com/KotFed0t/portfolio_tracker/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/KotFed0t/portfolio_tracker/internal/externalApi/indianStockApi"
	"github.com/KotFed0t/portfolio_tracker/internal/externalApi/marketData"
	"github.com/KotFed0t/portfolio_tracker/internal/reportGenerator/xslsxGenerator"
	"github.com/KotFed0t/portfolio_tracker/internal/scheduler"
	"github.com/KotFed0t/portfolio_tracker/internal/service/portfolioService"
	"github.com/KotFed0t/portfolio_tracker/internal/tgbot"
	"github.com/KotFed0t/portfolio_tracker/internal/transport/rest"
	"github.com/KotFed0t/portfolio_tracker/internal/transport/telegram"
	"github.com/KotFed0t/portfolio_tracker/internal/transport/ws"
	"github.com/KotFed0t/portfolio_tracker/internal/valuation"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	valuationCfg, err := valuation.ConfigFrom(cfg.Valuation)
	if err != nil {
		slog.Error("invalid valuation config", slog.String("err", err.Error()))
		panic(err)
	}

	pgClient := data.NewPostgresClient(ctx, cfg)
	defer pgClient.Close()

	pgRepo := postgres.NewPostgres(cfg, pgClient)

	deps := portfolioService.Deps{
		ReportGenerator: xslsxGenerator.New(),
	}

	var portfolioCache portfolioService.Cache = cache.NewNoopCache()
	if redisClient := data.NewRedisClient(ctx, cfg); redisClient != nil {
		defer redisClient.Close()
		portfolioCache = cache.NewRedisCache(redisClient, cfg)
		deps.LinkSession = session.NewRedisSession(redisClient, cfg.Telegram.LinkCodeTTL)
	}

	market := marketData.New(alphaVantageApi.New(cfg), indianStockApi.New(cfg))

	hub := ws.NewHub()
	go hub.Run()
	defer hub.Stop()
	deps.Broadcaster = hub

	// бот нужен сервису как Notifier, поэтому создаем его до сервиса, а контроллер передаем позже
	var bot *tgbot.TGBot
	if cfg.Telegram.Token != "" {
		bot = tgbot.New(cfg)
		deps.Notifier = bot
	} else {
		slog.Info("telegram token is empty, alerts notifications are off")
	}

	if cfg.GoogleDrive.CredentialsFile != "" {
		drive, err := googleDriveApi.New(ctx, cfg)
		if err != nil {
			panic(err)
		}
		deps.CloudStorage = drive
	} else {
		slog.Info("google drive credentials are not set, report upload is off")
	}

	portfolioSrv := portfolioService.New(valuationCfg, pgRepo, portfolioCache, market, deps)

	sched := scheduler.New(cfg.Jobs.Timeout)
	if err = sched.Register(scheduler.PortfolioSchedule(cfg.Jobs, portfolioSrv)...); err != nil {
		panic(err)
	}
	sched.Start()
	defer sched.Stop()

	if bot != nil {
		bot.Start(telegram.NewController(portfolioSrv))
		defer bot.Stop()
	}

	server := rest.NewHTTPServer(cfg, rest.NewRouter(cfg, portfolioSrv, http.HandlerFunc(hub.ServeWS)))
	go func() {
		slog.Info("http server started", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", slog.String("err", err.Error()))
			cancel()
		}
	}()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	select {
	case <-interrupt:
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown failed", slog.String("err", err.Error()))
	}
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
