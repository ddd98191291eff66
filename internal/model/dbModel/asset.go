package dbModel

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

type Asset struct {
	AssetID          int64           `db:"asset_id"`
	PortfolioID      int64           `db:"portfolio_id"`
	Symbol           string          `db:"symbol"`
	Name             string          `db:"name"`
	Quantity         decimal.Decimal `db:"quantity"`
	AveragePrice     decimal.Decimal `db:"average_price"`
	CurrentPrice     decimal.Decimal `db:"current_price"`
	RealizedGainLoss decimal.Decimal `db:"realized_gain_loss"`
	DividendIncome   decimal.Decimal `db:"dividend_income"`
	PriceHistory     []byte          `db:"price_history"`
	LastPriceUpdate  sql.NullTime    `db:"last_price_update"`
}
