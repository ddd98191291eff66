package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type Portfolio struct {
	PortfolioID             int64           `db:"portfolio_id"`
	UserID                  int64           `db:"user_id"`
	Name                    string          `db:"name"`
	TotalValue              decimal.Decimal `db:"total_value"`
	TotalCost               decimal.Decimal `db:"total_cost"`
	TotalGainLoss           decimal.Decimal `db:"total_gain_loss"`
	TotalGainLossPercentage decimal.Decimal `db:"total_gain_loss_percentage"`
	History                 []byte          `db:"history"`
	Performance             []byte          `db:"performance"`
	DtCreate                time.Time       `db:"dt_create"`
	DtUpdate                time.Time       `db:"dt_update"`
}
