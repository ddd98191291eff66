package postgres

import (
	"context"

	"github.com/KotFed0t/portfolio_tracker/internal/converter/dbConverter"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/model/dbModel"
)

// EnsureUser registers the user id taken from a verified token on first sight.
func (r *Postgres) EnsureUser(ctx context.Context, userID int64) (err error) {
	op := "Postgres.EnsureUser"
	query := `INSERT INTO users(user_id) VALUES($1) ON CONFLICT (user_id) DO NOTHING`

	rqID := logStart(ctx, op, query, map[string]any{"userID": userID})
	defer func() { logFinish(rqID, op, err) }()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, userID)
	return mapErr(err)
}

func (r *Postgres) GetUser(ctx context.Context, userID int64) (user model.User, err error) {
	op := "Postgres.GetUser"
	query := `SELECT user_id, telegram_chat_id, dt_create FROM users WHERE user_id = $1`

	rqID := logStart(ctx, op, query, map[string]any{"userID": userID})
	defer func() { logFinish(rqID, op, err) }()

	dbUser := dbModel.User{}
	err = r.txOrDb(ctx).GetContext(ctx, &dbUser, query, userID)
	if err != nil {
		return model.User{}, mapErr(err)
	}

	return dbConverter.ConvertUser(dbUser), nil
}

func (r *Postgres) SetTelegramChatID(ctx context.Context, userID, chatID int64) (err error) {
	op := "Postgres.SetTelegramChatID"
	query := `UPDATE users SET telegram_chat_id = $1 WHERE user_id = $2`

	rqID := logStart(ctx, op, query, map[string]any{"userID": userID, "chatID": chatID})
	defer func() { logFinish(rqID, op, err) }()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, chatID, userID)
	if err != nil {
		return mapErr(err)
	}
	return expectAffected(res)
}
