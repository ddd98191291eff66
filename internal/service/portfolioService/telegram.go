package portfolioService

import (
	"context"
	"log/slog"
	"strings"

	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/google/uuid"
)

const linkCodeLen = 8

// LinkTelegram stores the chat alerts for userID are delivered to.
func (s *PortfolioService) LinkTelegram(ctx context.Context, userID, chatID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.LinkTelegram"

	slog.Debug("LinkTelegram start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID), slog.Int64("chatID", chatID))

	if chatID == 0 {
		return invalidInput("chat id is required")
	}

	if err := s.repo.EnsureUser(ctx, userID); err != nil {
		slog.Error("got error from repo.EnsureUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if err := s.repo.SetTelegramChatID(ctx, userID, chatID); err != nil {
		slog.Error("got error from repo.SetTelegramChatID", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return mapErr(err)
	}

	slog.Debug("LinkTelegram finished", slog.String("rqID", rqID), slog.String("op", op))
	return nil
}

// CreateTelegramLinkCode issues a one-time code the user sends to the bot with /link.
func (s *PortfolioService) CreateTelegramLinkCode(ctx context.Context, userID int64) (string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.CreateTelegramLinkCode"

	if s.session == nil {
		return "", service.ErrUnavailable
	}

	if err := s.repo.EnsureUser(ctx, userID); err != nil {
		slog.Error("got error from repo.EnsureUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	code := strings.ReplaceAll(uuid.NewString(), "-", "")[:linkCodeLen]
	if err := s.session.SaveLinkCode(ctx, code, userID); err != nil {
		slog.Error("got error from session.SaveLinkCode", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	return code, nil
}

// LinkTelegramByCode is the bot side of CreateTelegramLinkCode.
func (s *PortfolioService) LinkTelegramByCode(ctx context.Context, code string, chatID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.LinkTelegramByCode"

	if s.session == nil {
		return service.ErrUnavailable
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return invalidInput("link code is required")
	}

	userID, err := s.session.ConsumeLinkCode(ctx, code)
	if err != nil {
		slog.Warn("got error from session.ConsumeLinkCode", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return service.ErrNotFound
	}

	return s.LinkTelegram(ctx, userID, chatID)
}
