package valuation

import (
	"fmt"
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
)

// NewTransaction fills the computed fields of a transaction about to be recorded.
func NewTransaction(tx model.Transaction) model.Transaction {
	tx.TotalAmount = tx.Quantity.Mul(tx.Price)
	tx.IsActive = true
	return tx
}

func ValidateTransaction(tx model.Transaction, now time.Time) error {
	if !tx.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, tx.Type)
	}
	if tx.Quantity.IsNegative() {
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidTransaction)
	}
	if tx.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidTransaction)
	}
	if tx.Fees.IsNegative() {
		return fmt.Errorf("%w: fees must not be negative", ErrInvalidTransaction)
	}
	if tx.Date.After(now) {
		return fmt.Errorf("%w: date %s is in the future", ErrInvalidTransaction, tx.Date.Format(time.RFC3339))
	}
	if tx.Type == model.TransactionSplit && !tx.Quantity.IsPositive() {
		return fmt.Errorf("%w: split ratio must be positive", ErrInvalidTransaction)
	}
	return nil
}
