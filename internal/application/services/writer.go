package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/daybook/core/internal/application/orchestrator"
	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/ports"
)

// PendingWrite is a payload kept in the local fallback store after the
// remote write failed.
type PendingWrite struct {
	Op      string          `json:"op"`
	Payload json.RawMessage `json:"payload"`
	At      time.Time       `json:"at"`
}

// SyncWriter runs every remote write of the services through the user's
// orchestrator, appending the payload to the fallback store on failure and
// invalidating the user's cached views on success.
type SyncWriter struct {
	registry *orchestrator.Registry
	fallback ports.FallbackStore
	cache    ports.CacheRepository
	timeout  time.Duration
	logger   *logger.Logger

	// serialises read-modify-write of fallback entries
	mu sync.Mutex
}

// NewSyncWriter creates a writer. timeout bounds each remote operation; zero
// disables the bound.
func NewSyncWriter(registry *orchestrator.Registry, fallback ports.FallbackStore, cache ports.CacheRepository, timeout time.Duration, log *logger.Logger) *SyncWriter {
	if log == nil {
		log = logger.NewNop()
	}
	return &SyncWriter{
		registry: registry,
		fallback: fallback,
		cache:    cache,
		timeout:  timeout,
		logger:   log.WithComponent("sync_writer"),
	}
}

// Write runs op for userID. When op fails with a transient error, payload is
// appended under fallbackKey; an empty key skips the fallback. Errors that a
// retry cannot fix (not found, invalid) are returned to the caller instead.
func (w *SyncWriter) Write(ctx context.Context, userID uuid.UUID, opName string, op func(ctx context.Context) error, fallbackKey string, payload interface{}) (ports.WriteResult, error) {
	orch := w.registry.For(userID)

	var opErr error
	operation := func(ctx context.Context) error {
		if w.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, w.timeout)
			defer cancel()
		}
		opErr = op(ctx)
		return opErr
	}

	var fallback orchestrator.Fallback
	if fallbackKey != "" && w.fallback != nil {
		fallback = func(ctx context.Context) error {
			if isPermanent(opErr) {
				return orchestrator.ErrFallbackSkipped
			}
			return w.appendPending(ctx, fallbackKey, opName, payload)
		}
	}

	outcome := orch.Sync(ctx, operation, fallback)

	if outcome.Status == entities.SyncSaved {
		w.invalidate(ctx, userID)
	}

	result := ports.WriteResult{Status: outcome.Status, Fallback: outcome.Fallback}
	if saved := orch.LastSaved(); !saved.IsZero() {
		result.LastSaved = &saved
	}

	if outcome.Status == entities.SyncError && isPermanent(outcome.Err) {
		return result, outcome.Err
	}
	if outcome.Status == entities.SyncIdle && outcome.Err != nil {
		return result, outcome.Err
	}
	return result, nil
}

func isPermanent(err error) bool {
	if err == nil {
		return false
	}
	switch entities.KindOf(err) {
	case entities.KindNotFound, entities.KindInvalid:
		return true
	}
	return errors.Is(err, entities.ErrInvalidInput) || errors.Is(err, entities.ErrInvalidDate)
}

// Pending returns the payloads stored under key, oldest first.
func (w *SyncWriter) Pending(ctx context.Context, key string) ([]PendingWrite, error) {
	if w.fallback == nil {
		return nil, nil
	}

	data, ok, err := w.fallback.Get(ctx, key)
	if err != nil || !ok {
		return nil, err
	}

	var pending []PendingWrite
	if err := json.Unmarshal(data, &pending); err != nil {
		return nil, fmt.Errorf("decode pending writes %q: %w", key, err)
	}
	return pending, nil
}

func (w *SyncWriter) appendPending(ctx context.Context, key, opName string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode fallback payload: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	pending, err := w.Pending(ctx, key)
	if err != nil {
		// Unreadable entry: start over rather than lose the new payload.
		w.logger.Warnw("Replacing unreadable fallback entry", "key", key, "error", err)
		pending = nil
	}
	pending = append(pending, PendingWrite{Op: opName, Payload: raw, At: time.Now().UTC()})

	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("encode pending writes: %w", err)
	}
	return w.fallback.Put(ctx, key, data)
}

// invalidate drops every cached view of the user: the snapshot and any
// per-date lists.
func (w *SyncWriter) invalidate(ctx context.Context, userID uuid.UUID) {
	if w.cache == nil {
		return
	}
	if err := w.cache.DeletePattern(ctx, userID.String()); err != nil {
		w.logger.Warnw("Failed to invalidate cache", "user_id", userID, "error", err)
	}
}
