// Package retry re-runs failing load operations with exponential backoff.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/infrastructure/metrics"
)

const (
	DefaultCount = 3
	DefaultDelay = time.Second
)

// ExhaustedError is returned once every attempt has failed.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Policy holds the retry budget. Attempt n (from 0) that fails is followed
// by a wait of Delay * 2^n, so at most Count+1 invocations happen.
type Policy struct {
	Count int
	Delay time.Duration

	logger  *logger.Logger
	metrics *metrics.Metrics
	sleep   func(ctx context.Context, d time.Duration) error
}

// Option configures a Policy.
type Option func(*Policy)

// WithLogger sets the logger used to report failed attempts.
func WithLogger(log *logger.Logger) Option {
	return func(p *Policy) {
		if log != nil {
			p.logger = log.WithComponent("retry")
		}
	}
}

// WithMetrics records attempt outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Policy) { p.metrics = m }
}

// WithSleep replaces the backoff wait, mainly for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Policy) { p.sleep = sleep }
}

// New creates a policy. A negative count or non-positive delay selects the default.
func New(count int, delay time.Duration, opts ...Option) *Policy {
	if count < 0 {
		count = DefaultCount
	}
	if delay <= 0 {
		delay = DefaultDelay
	}

	p := &Policy{
		Count:  count,
		Delay:  delay,
		logger: logger.NewNop(),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Backoff returns the wait after failed attempt n.
func (p *Policy) Backoff(attempt int) time.Duration {
	return p.Delay * time.Duration(1<<uint(attempt))
}

// Do runs fn until it succeeds or the budget is spent. Only a success or the
// terminal error is returned; cancellation during a wait returns ctx.Err().
func Do[T any](ctx context.Context, p *Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= p.Count; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				p.metrics.RetryResult("recovered")
				p.logger.Infow("Operation succeeded after retry", "attempts", attempt+1)
			}
			return result, nil
		}
		lastErr = err

		if attempt == p.Count {
			break
		}

		wait := p.Backoff(attempt)
		p.metrics.RetryResult("retried")
		p.logger.Warnw("Operation failed, retrying",
			"attempt", attempt+1,
			"max_attempts", p.Count+1,
			"backoff", wait.String(),
			"error", err,
		)

		if err := p.sleep(ctx, wait); err != nil {
			return zero, err
		}
	}

	p.metrics.RetryResult("exhausted")
	p.logger.Errorw("Operation failed, retries exhausted", "attempts", p.Count+1, "error", lastErr)
	return zero, &ExhaustedError{Attempts: p.Count + 1, Err: lastErr}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
