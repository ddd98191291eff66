package session

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/redis/go-redis/v9"
)

var ErrLinkCodeNotFound = errors.New("link code not found")

const linkCodePrefix = "tg_link:"

// RedisSession keeps short-lived telegram link codes issued to authenticated users.
type RedisSession struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisSession(redisClient *redis.Client, ttl time.Duration) *RedisSession {
	return &RedisSession{redis: redisClient, ttl: ttl}
}

func (s *RedisSession) SaveLinkCode(ctx context.Context, code string, userID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisSession.SaveLinkCode"
	slog.Debug("SaveLinkCode start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))

	err := s.redis.Set(ctx, linkCodePrefix+code, userID, s.ttl).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SaveLinkCode completed", slog.String("rqID", rqID), slog.String("op", op))
	return nil
}

// ConsumeLinkCode returns the user the code was issued to and deletes it.
func (s *RedisSession) ConsumeLinkCode(ctx context.Context, code string) (int64, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisSession.ConsumeLinkCode"
	slog.Debug("ConsumeLinkCode start", slog.String("rqID", rqID), slog.String("op", op))

	res, err := s.redis.GetDel(ctx, linkCodePrefix+code).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrLinkCodeNotFound
		}
		slog.Error("failed on redis.GetDel", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return 0, err
	}

	userID, err := strconv.ParseInt(res, 10, 64)
	if err != nil {
		slog.Error("bad user id in link code", slog.String("rqID", rqID), slog.String("op", op), slog.String("value", res))
		return 0, err
	}

	slog.Debug("ConsumeLinkCode completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	return userID, nil
}
