package externalApi

import "errors"

var (
	ErrNotFound      = errors.New("symbol not found")
	ErrRateLimited   = errors.New("provider rate limit reached")
	ErrInvalidPeriod = errors.New("invalid historical period")
	ErrBadResponse   = errors.New("unexpected provider response")
)
