package datasource

import (
	"context"
	"time"

	"active-etf-analyzer/internal/logger"
)

// Retrier re-runs transient upstream calls a fixed number of times with
// a constant delay between attempts.
type Retrier struct {
	MaxAttempts int
	Delay       time.Duration
}

// NewRetrier creates a retrier. Non-positive attempts are clamped to 1.
func NewRetrier(maxAttempts int, delay time.Duration) *Retrier {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Retrier{MaxAttempts: maxAttempts, Delay: delay}
}

// Do runs fn until it succeeds, attempts are exhausted, or the context
// is done. The last error is returned.
func (r *Retrier) Do(ctx context.Context, name string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		logger.Warn(ctx, "Upstream call failed", "call", name, "attempt", attempt, "max_attempts", r.MaxAttempts, "error", err)
		if attempt == r.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.Delay):
		}
	}
	return err
}
