package externalApi

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// UsageStats is a snapshot of one provider's consumption.
type UsageStats struct {
	Provider      string    `json:"provider"`
	RequestsToday int       `json:"requestsToday"`
	DailyLimit    int       `json:"dailyLimit"`
	TotalRequests int64     `json:"totalRequests"`
	Failures      int64     `json:"failures"`
	LastRequestAt time.Time `json:"lastRequestAt"`
}

// Usage throttles calls to a provider and counts them. Every client owns its own Usage.
type Usage struct {
	provider   string
	limiter    *rate.Limiter
	dailyLimit int

	mu            sync.Mutex
	day           string
	requestsToday int
	total         int64
	failures      int64
	lastRequestAt time.Time

	now func() time.Time
}

// NewUsage allows requestsPerMinute with a burst of the same size. dailyLimit <= 0 disables the daily quota.
func NewUsage(provider string, requestsPerMinute, dailyLimit int) *Usage {
	limit := rate.Inf
	burst := 1
	if requestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(requestsPerMinute))
		burst = requestsPerMinute
	}

	return &Usage{
		provider:   provider,
		limiter:    rate.NewLimiter(limit, burst),
		dailyLimit: dailyLimit,
		now:        time.Now,
	}
}

// Acquire reserves one request. It fails fast when the daily quota is spent and
// otherwise waits for the per-minute limiter.
func (u *Usage) Acquire(ctx context.Context) error {
	u.mu.Lock()
	now := u.now()
	u.rollDay(now)
	if u.dailyLimit > 0 && u.requestsToday >= u.dailyLimit {
		u.mu.Unlock()
		return fmt.Errorf("%w: %s daily quota of %d requests spent", ErrRateLimited, u.provider, u.dailyLimit)
	}
	u.requestsToday++
	u.total++
	u.lastRequestAt = now
	u.mu.Unlock()

	if err := u.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

func (u *Usage) RecordFailure() {
	u.mu.Lock()
	u.failures++
	u.mu.Unlock()
}

func (u *Usage) Stats() UsageStats {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.rollDay(u.now())

	return UsageStats{
		Provider:      u.provider,
		RequestsToday: u.requestsToday,
		DailyLimit:    u.dailyLimit,
		TotalRequests: u.total,
		Failures:      u.failures,
		LastRequestAt: u.lastRequestAt,
	}
}

// rollDay resets the daily counter on UTC day change. Caller holds mu.
func (u *Usage) rollDay(now time.Time) {
	day := now.UTC().Format(time.DateOnly)
	if day != u.day {
		u.day = day
		u.requestsToday = 0
	}
}
