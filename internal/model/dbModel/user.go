package dbModel

import (
	"database/sql"
	"time"
)

type User struct {
	UserID         int64         `db:"user_id"`
	TelegramChatID sql.NullInt64 `db:"telegram_chat_id"`
	DtCreate       time.Time     `db:"dt_create"`
}
