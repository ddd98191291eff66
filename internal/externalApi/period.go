package externalApi

import (
	"fmt"
	"strings"
	"time"
)

const DefaultHistoricalPeriod = "1m"

var historicalPeriods = map[string]time.Duration{
	"1m":  30 * 24 * time.Hour,
	"6m":  182 * 24 * time.Hour,
	"1yr": 365 * 24 * time.Hour,
	"3yr": 3 * 365 * 24 * time.Hour,
	"5yr": 5 * 365 * 24 * time.Hour,
}

// ParseHistoricalPeriod normalizes a period and returns how far back it reaches.
func ParseHistoricalPeriod(period string) (string, time.Duration, error) {
	period = strings.ToLower(strings.TrimSpace(period))
	if period == "" {
		period = DefaultHistoricalPeriod
	}
	d, ok := historicalPeriods[period]
	if !ok {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
	return period, d, nil
}
