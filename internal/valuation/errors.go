package valuation

import "errors"

var (
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidPeriod      = errors.New("invalid performance period")
	ErrInvalidConfig      = errors.New("invalid valuation config")
)
