package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionBuy      TransactionType = "buy"
	TransactionSell     TransactionType = "sell"
	TransactionDividend TransactionType = "dividend"
	TransactionSplit    TransactionType = "split"
	TransactionMerger   TransactionType = "merger"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionBuy, TransactionSell, TransactionDividend, TransactionSplit, TransactionMerger:
		return true
	}
	return false
}

// Transaction is an immutable audit record. For splits Quantity carries the split ratio.
type Transaction struct {
	TransactionID int64           `json:"transactionId"`
	PortfolioID   int64           `json:"portfolioId"`
	AssetID       int64           `json:"assetId"`
	UserID        int64           `json:"userId"`
	Symbol        string          `json:"symbol"`
	Type          TransactionType `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Fees          decimal.Decimal `json:"fees"`
	Date          time.Time       `json:"date"`
	IsActive      bool            `json:"isActive"`
	CreatedAt     time.Time       `json:"createdAt"`
}
