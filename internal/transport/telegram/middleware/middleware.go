package middleware

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"
)

const privateOnlyMsg = "Эта команда доступна только в личном чате с ботом."

// Logger tags the update with an rqID. Only the command is logged since payloads may carry link codes.
func Logger() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			now := time.Now()

			rqID := uuid.NewString()
			c.Set("rqID", rqID)

			slog.Info(
				"start request",
				slog.String("rqID", rqID),
				slog.Int64("chatID", chatID(c)),
				slog.String("command", commandOf(c.Text())),
			)

			defer func() {
				slog.Info(
					"request finished",
					slog.String("rqID", rqID),
					slog.String("request duration", fmt.Sprintf("%.2fs", time.Since(now).Seconds())),
				)
			}()

			return next(c)
		}
	}
}

// PrivateOnly keeps a handler out of group chats, so alerts are never bound to a shared chat.
func PrivateOnly() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if chat := c.Chat(); chat == nil || chat.Type != tele.ChatPrivate {
				slog.Warn("command rejected outside private chat", slog.Int64("chatID", chatID(c)), slog.String("command", commandOf(c.Text())))
				return c.Send(privateOnlyMsg)
			}
			return next(c)
		}
	}
}

func chatID(c tele.Context) int64 {
	if chat := c.Chat(); chat != nil {
		return chat.ID
	}
	return 0
}

// commandOf returns "/cmd" without the bot mention and payload, or "" for plain text.
func commandOf(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd, _, _ := strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return cmd
}
