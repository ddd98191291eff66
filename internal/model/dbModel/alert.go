package dbModel

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type Alert struct {
	AlertID       int64           `db:"alert_id"`
	AssetID       int64           `db:"asset_id"`
	Type          string          `db:"type"`
	Value         decimal.Decimal `db:"value"`
	IsActive      bool            `db:"is_active"`
	LastTriggered sql.NullTime    `db:"last_triggered"`
	DtCreate      time.Time       `db:"dt_create"`
}
