package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	TransactionID int64           `db:"transaction_id"`
	PortfolioID   int64           `db:"portfolio_id"`
	AssetID       int64           `db:"asset_id"`
	UserID        int64           `db:"user_id"`
	Symbol        string          `db:"symbol"`
	Type          string          `db:"type"`
	Quantity      decimal.Decimal `db:"quantity"`
	Price         decimal.Decimal `db:"price"`
	TotalAmount   decimal.Decimal `db:"total_amount"`
	Fees          decimal.Decimal `db:"fees"`
	DtTransaction time.Time       `db:"dt_transaction"`
	IsActive      bool            `db:"is_active"`
	DtCreate      time.Time       `db:"dt_create"`
}
