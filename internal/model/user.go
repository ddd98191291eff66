package model

import "time"

type User struct {
	UserID         int64     `json:"userId"`
	TelegramChatID *int64    `json:"telegramChatId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}
