package tgbot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/internal/converter/telebotConverter"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/transport/telegram"
	customMW "github.com/KotFed0t/portfolio_tracker/internal/transport/telegram/middleware"
	"github.com/KotFed0t/portfolio_tracker/utils"
	tele "gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"
)

type TGBot struct {
	bot *tele.Bot
}

func New(cfg *config.Config) *TGBot {
	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: cfg.Telegram.UpdTimeout},
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		panic(err)
	}

	return &TGBot{bot: b}
}

// Start registers the command handlers and starts polling in the background.
func (b *TGBot) Start(ctrl *telegram.Controller) {
	b.bot.Use(middleware.Recover(), customMW.Logger())

	b.bot.Handle("/start", ctrl.Start)
	b.bot.Handle("/link", ctrl.Link, customMW.PrivateOnly())
	b.bot.Handle("/quote", ctrl.Quote)

	go b.bot.Start()
	slog.Info("tgbot started!")
}

func (b *TGBot) Stop() {
	slog.Info("start stopping tgbot")
	b.bot.Stop()
	slog.Info("tgbot stopped")
}

// NotifyAlert delivers a fired alert to a linked chat.
func (b *TGBot) NotifyAlert(ctx context.Context, chatID int64, alert model.FiredAlert) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	_, err := b.bot.Send(tele.ChatID(chatID), telebotConverter.AlertMessage(alert), tele.ModeMarkdown)
	if err != nil {
		slog.Error(
			"failed to send alert",
			slog.String("rqID", rqID),
			slog.Int64("chatID", chatID),
			slog.Int64("alertID", alert.Alert.AlertID),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("send alert to chat %d: %w", chatID, err)
	}

	slog.Debug("alert sent", slog.String("rqID", rqID), slog.Int64("chatID", chatID), slog.Int64("alertID", alert.Alert.AlertID))
	return nil
}
