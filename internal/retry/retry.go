// Package retry re-runs whole operations that lost a race with a concurrent
// transaction.
//
// There is no attempt limit: a transient conflict means another transaction
// committed, so the system as a whole made progress. The loop stops on
// success, on the first non-transient error, or when the context ends.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBackoff is the pause between retries when none is configured.
const DefaultBackoff = 5 * time.Millisecond

// Policy decides which errors are retried and how quickly.
type Policy struct {
	// Transient reports errors worth another attempt. Nil retries nothing.
	Transient func(error) bool

	// Limiter paces retries; the first attempt never waits. Nil means no
	// pacing.
	Limiter *rate.Limiter

	// Logger receives one Debug record per retry. Nil uses slog.Default().
	Logger *slog.Logger
}

// NewLimiter returns a limiter allowing one retry per backoff with the given
// burst. A non-positive backoff disables pacing.
func NewLimiter(backoff time.Duration, burst int) *rate.Limiter {
	if backoff <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(backoff), burst)
}

// Do runs fn until it returns nil or a non-transient error, and reports how
// many attempts were made.
func (p Policy) Do(ctx context.Context, name string, fn func(ctx context.Context) error) (int, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, err
		}

		err := fn(ctx)
		if err == nil {
			return attempt, nil
		}
		if p.Transient == nil || !p.Transient(err) {
			return attempt, err
		}

		logger.Debug("retrying after transient conflict",
			"op", name,
			"attempt", attempt,
			"error", err,
		)

		if p.Limiter != nil {
			if werr := p.Limiter.Wait(ctx); werr != nil {
				return attempt, fmt.Errorf("%s: waiting to retry: %w", name, werr)
			}
		}
	}
}
