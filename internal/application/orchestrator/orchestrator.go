// Package orchestrator tracks the status of remote writes and diverts failed
// writes to a fallback.
package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/infrastructure/metrics"
)

// Operation is one unit of remote work.
type Operation func(ctx context.Context) error

// Fallback persists the same payload somewhere local. It may be nil.
// Returning ErrFallbackSkipped means nothing was written on purpose.
type Fallback func(ctx context.Context) error

// ErrFallbackSkipped is returned by a Fallback that declined to run.
var ErrFallbackSkipped = errors.New("fallback skipped")

// Outcome describes how a Sync call ended.
type Outcome struct {
	Status entities.SyncStatus
	// Err is the operation error when Status is error.
	Err error
	// Fallback is true when the fallback ran and succeeded.
	Fallback bool
	// FallbackErr is set when the fallback itself failed.
	FallbackErr error
}

// Orchestrator runs remote writes through idle -> saving -> saved|error.
// saved and error only return to idle through Reset. It never retries.
type Orchestrator struct {
	mu        sync.Mutex
	status    entities.SyncStatus
	lastSaved time.Time
	lastErr   error

	now      func() time.Time
	onError  func(error)
	onChange func(entities.SyncStatus)
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock sets the time source for LastSaved.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithErrorHook is notified after every failed operation.
func WithErrorHook(fn func(error)) Option {
	return func(o *Orchestrator) { o.onError = fn }
}

// WithStatusListener observes every status transition in order.
func WithStatusListener(fn func(entities.SyncStatus)) Option {
	return func(o *Orchestrator) { o.onChange = fn }
}

func WithLogger(log *logger.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.logger = log
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// New creates an idle orchestrator.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		status: entities.SyncIdle,
		now:    time.Now,
		logger: logger.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.WithComponent("sync")
	return o
}

// Sync runs op. On success the status becomes saved and LastSaved is set.
// On failure the status becomes error, fallback runs once and the error hook
// is notified. The error is reported in the Outcome, never returned.
//
// If ctx is done by the time op returns, the result is discarded: no
// transition to saved or error, no fallback, and the status goes back to idle.
func (o *Orchestrator) Sync(ctx context.Context, op Operation, fallback Fallback) Outcome {
	o.setStatus(entities.SyncSaving, nil, false)

	err := op(ctx)

	if ctxErr := ctx.Err(); ctxErr != nil {
		o.logger.Debugw("Discarding sync result after cancellation", "error", ctxErr)
		o.setStatus(entities.SyncIdle, nil, false)
		return Outcome{Status: entities.SyncIdle, Err: ctxErr}
	}

	if err == nil {
		o.setStatus(entities.SyncSaved, nil, true)
		o.metrics.SyncResult(string(entities.SyncSaved))
		return Outcome{Status: entities.SyncSaved}
	}

	o.setStatus(entities.SyncError, err, false)
	o.metrics.SyncResult(string(entities.SyncError))
	o.logger.Errorw("Remote write failed", "error", err)

	outcome := Outcome{Status: entities.SyncError, Err: err}
	if fallback != nil {
		fbErr := fallback(ctx)
		switch {
		case errors.Is(fbErr, ErrFallbackSkipped):
			o.logger.Debugw("Fallback skipped", "error", err)
		case fbErr != nil:
			outcome.FallbackErr = fbErr
			o.logger.Errorw("Fallback write failed", "error", fbErr)
		default:
			outcome.Fallback = true
			o.logger.Infow("Payload persisted to local fallback")
		}
	}

	if o.onError != nil {
		o.onError(err)
	}
	return outcome
}

// Reset returns the orchestrator to idle. LastSaved is kept.
func (o *Orchestrator) Reset() {
	o.setStatus(entities.SyncIdle, nil, false)
}

func (o *Orchestrator) Status() entities.SyncStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// LastSaved returns the time of the last successful sync, zero if none.
func (o *Orchestrator) LastSaved() time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastSaved
}

// LastError returns the error of the most recent failed operation.
func (o *Orchestrator) LastError() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// State returns a consistent copy of the observable fields.
func (o *Orchestrator) State() entities.SyncState {
	o.mu.Lock()
	defer o.mu.Unlock()

	state := entities.SyncState{Status: o.status}
	if !o.lastSaved.IsZero() {
		saved := o.lastSaved
		state.LastSaved = &saved
	}
	if o.lastErr != nil {
		state.LastError = o.lastErr.Error()
	}
	return state
}

func (o *Orchestrator) setStatus(status entities.SyncStatus, err error, saved bool) {
	o.mu.Lock()
	o.status = status
	if err != nil {
		o.lastErr = err
	}
	if saved {
		o.lastSaved = o.now()
	}
	onChange := o.onChange
	o.mu.Unlock()

	if onChange != nil {
		onChange(status)
	}
}
