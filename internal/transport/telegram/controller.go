package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/KotFed0t/portfolio_tracker/internal/converter/telebotConverter"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/KotFed0t/portfolio_tracker/utils"
	tele "gopkg.in/telebot.v4"
)

const internalErrMsg = "что-то пошло не так..."

type PortfolioService interface {
	LinkTelegramByCode(ctx context.Context, code string, chatID int64) error
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
}

type Controller struct {
	portfolioService PortfolioService
}

func NewController(portfolioService PortfolioService) *Controller {
	return &Controller{portfolioService: portfolioService}
}

func (ctrl *Controller) Start(c tele.Context) error {
	return c.Send(telebotConverter.StartMessage(c.Chat().ID), tele.ModeMarkdown)
}

func (ctrl *Controller) Link(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	code := strings.TrimSpace(c.Message().Payload)
	if code == "" {
		return c.Send("Использование: /link <код>")
	}

	err := ctrl.portfolioService.LinkTelegramByCode(ctx, code, c.Chat().ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return c.Send("Код не найден или устарел")
		case errors.Is(err, service.ErrAlreadyExists):
			return c.Send("Этот чат уже привязан к другому пользователю")
		}
		slog.Error("got error from portfolioService.LinkTelegramByCode", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send("Готово! Уведомления будут приходить в этот чат.")
}

func (ctrl *Controller) Quote(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	symbol := strings.TrimSpace(c.Message().Payload)
	if symbol == "" {
		return c.Send("Использование: /quote <тикер>")
	}

	quote, err := ctrl.portfolioService.GetQuote(ctx, symbol)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return c.Send("Не удалось найти указанный тикер")
		case errors.Is(err, service.ErrUnavailable):
			return c.Send("Лимит запросов исчерпан, попробуйте позже")
		}
		slog.Error("got error from portfolioService.GetQuote", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send(telebotConverter.QuoteMessage(quote), tele.ModeMarkdown)
}
