package valuation

import (
	"fmt"
	"math"
	"time"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
)

const day = 24 * time.Hour

// Band is the accepted age range of a history entry used as reference point for a horizon.
type Band struct {
	Min time.Duration
	Max time.Duration
}

func (b Band) Contains(age time.Duration) bool {
	return age >= b.Min && age <= b.Max
}

type PerformanceBands struct {
	Daily   Band
	Weekly  Band
	Monthly Band
	Yearly  Band
}

func (b PerformanceBands) band(period model.Period) Band {
	switch period {
	case model.PeriodDaily:
		return b.Daily
	case model.PeriodWeekly:
		return b.Weekly
	case model.PeriodMonthly:
		return b.Monthly
	default:
		return b.Yearly
	}
}

type Config struct {
	HistoryRetentionDays  int
	AlertDebounceHours    int
	SnapshotIntervalHours int
	PerformanceBands      PerformanceBands
}

func DefaultConfig() Config {
	return Config{
		HistoryRetentionDays:  90,
		AlertDebounceHours:    24,
		SnapshotIntervalHours: 24,
		PerformanceBands: PerformanceBands{
			Daily:   Band{Min: 19*time.Hour + 12*time.Minute, Max: 28*time.Hour + 48*time.Minute},
			Weekly:  Band{Min: 6 * day, Max: 8 * day},
			Monthly: Band{Min: 28 * day, Max: 32 * day},
			Yearly:  Band{Min: 360 * day, Max: 370 * day},
		},
	}
}

// BandFromHours builds a band from a [min, max] pair expressed in hours.
func BandFromHours(bounds []float64) (Band, error) {
	if len(bounds) != 2 {
		return Band{}, fmt.Errorf("%w: band needs exactly 2 bounds, got %d", ErrInvalidConfig, len(bounds))
	}
	return Band{
		Min: time.Duration(math.Round(bounds[0] * float64(time.Hour))),
		Max: time.Duration(math.Round(bounds[1] * float64(time.Hour))),
	}, nil
}

// ConfigFrom converts the env settings and validates the result.
func ConfigFrom(v config.Valuation) (Config, error) {
	c := Config{
		HistoryRetentionDays:  v.HistoryRetentionDays,
		AlertDebounceHours:    v.AlertDebounceHours,
		SnapshotIntervalHours: v.SnapshotIntervalHours,
	}

	bands := []struct {
		dst    *Band
		bounds []float64
	}{
		{&c.PerformanceBands.Daily, v.DailyBandHours},
		{&c.PerformanceBands.Weekly, v.WeeklyBandHours},
		{&c.PerformanceBands.Monthly, v.MonthlyBandHours},
		{&c.PerformanceBands.Yearly, v.YearlyBandHours},
	}
	for _, b := range bands {
		band, err := BandFromHours(b.bounds)
		if err != nil {
			return Config{}, err
		}
		*b.dst = band
	}

	return c, c.Validate()
}

func (c Config) Validate() error {
	if c.HistoryRetentionDays <= 0 {
		return fmt.Errorf("%w: history retention must be positive", ErrInvalidConfig)
	}
	if c.AlertDebounceHours <= 0 {
		return fmt.Errorf("%w: alert debounce must be positive", ErrInvalidConfig)
	}
	if c.SnapshotIntervalHours <= 0 {
		return fmt.Errorf("%w: snapshot interval must be positive", ErrInvalidConfig)
	}
	for _, period := range model.Periods {
		b := c.PerformanceBands.band(period)
		if b.Min < 0 || b.Min > b.Max {
			return fmt.Errorf("%w: invalid %s band [%s, %s]", ErrInvalidConfig, period, b.Min, b.Max)
		}
	}
	return nil
}

func (c Config) retention() time.Duration {
	return time.Duration(c.HistoryRetentionDays) * day
}

func (c Config) debounce() time.Duration {
	return time.Duration(c.AlertDebounceHours) * time.Hour
}

func (c Config) snapshotInterval() time.Duration {
	return time.Duration(c.SnapshotIntervalHours) * time.Hour
}
