// Package loader assembles a user's snapshot from concurrent reads of the
// remote store and keeps it in the cache.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/infrastructure/metrics"
	"github.com/daybook/core/internal/ports"
)

// Read groups, as reported in Snapshot.FailedGroups.
const (
	GroupNotes        = "notes"
	GroupFutureTasks  = "future_tasks"
	GroupPayroll      = "payroll"
	GroupWorkTracking = "work_tracking"
)

// SnapshotKey is the cache key of a user's snapshot.
func SnapshotKey(userID uuid.UUID) string {
	return "snapshot_" + userID.String()
}

// Sources are the gateway reads a snapshot is built from.
type Sources struct {
	Notes        ports.NoteRepository
	FutureTasks  ports.FutureTaskRepository
	Payroll      ports.PayrollRepository
	WorkTracking ports.WorkTrackingRepository
}

// Config controls caching and per-read deadlines.
type Config struct {
	TTL         time.Duration
	ReadTimeout time.Duration
	Now         func() time.Time
}

// Loader fans out the four reads, tolerating individual failures.
type Loader struct {
	sources Sources
	cache   ports.CacheRepository
	cfg     Config
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// New creates a loader. log and m may be nil.
func New(sources Sources, cache ports.CacheRepository, cfg Config, log *logger.Logger, m *metrics.Metrics) *Loader {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Loader{
		sources: sources,
		cache:   cache,
		cfg:     cfg,
		logger:  log.WithComponent("loader"),
		metrics: m,
	}
}

// Load returns the cached snapshot when fresh, otherwise fetches and caches it.
func (l *Loader) Load(ctx context.Context, userID uuid.UUID) (*entities.Snapshot, error) {
	var cached entities.Snapshot
	err := l.cache.Get(ctx, SnapshotKey(userID), &cached)
	switch {
	case err == nil:
		return &cached, nil
	case !errors.Is(err, entities.ErrCacheMiss):
		l.logger.Warnw("Cache lookup failed, loading from remote store", "user_id", userID, "error", err)
	}

	return l.Refresh(ctx, userID)
}

// Refresh bypasses the cache, rebuilds the snapshot and caches it.
// A snapshot with some failed groups is still cached; when every read fails
// nothing is cached and ErrSnapshotUnavailable is returned.
func (l *Loader) Refresh(ctx context.Context, userID uuid.UUID) (*entities.Snapshot, error) {
	start := time.Now()
	snapshot, err := l.fetch(ctx, userID)
	l.metrics.ObserveLoad(time.Since(start))
	if err != nil {
		return nil, err
	}

	if err := l.cache.Set(ctx, SnapshotKey(userID), snapshot, l.cfg.TTL); err != nil {
		l.logger.Warnw("Failed to cache snapshot", "user_id", userID, "error", err)
	}

	if snapshot.IsPartial() {
		l.logger.Warnw("Loaded partial snapshot", "user_id", userID, "failed_groups", snapshot.FailedGroups)
	} else {
		l.logger.Debugw("Loaded snapshot", "user_id", userID, "duration", time.Since(start).String())
	}
	return snapshot, nil
}

// ClearCache removes the user's cached snapshot.
func (l *Loader) ClearCache(ctx context.Context, userID uuid.UUID) error {
	if err := l.cache.Delete(ctx, SnapshotKey(userID)); err != nil {
		return fmt.Errorf("clear snapshot cache: %w", err)
	}
	return nil
}

func (l *Loader) fetch(ctx context.Context, userID uuid.UUID) (*entities.Snapshot, error) {
	var (
		notes    []*entities.Note
		tasks    []*entities.FutureTask
		payroll  []*entities.PayrollRecord
		tracking *entities.WorkTrackingState

		mu     sync.Mutex
		failed = map[string]error{}
	)

	// Every read reports its own outcome and returns nil, so one failure
	// never cancels the others.
	var g errgroup.Group
	read := func(group string, fn func(ctx context.Context) error) {
		g.Go(func() error {
			readCtx := ctx
			if l.cfg.ReadTimeout > 0 {
				var cancel context.CancelFunc
				readCtx, cancel = context.WithTimeout(ctx, l.cfg.ReadTimeout)
				defer cancel()
			}

			if err := fn(readCtx); err != nil {
				mu.Lock()
				failed[group] = err
				mu.Unlock()
			}
			return nil
		})
	}

	read(GroupNotes, func(ctx context.Context) (err error) {
		notes, err = l.sources.Notes.List(ctx, userID, ports.DateFilter{})
		return err
	})
	read(GroupFutureTasks, func(ctx context.Context) (err error) {
		tasks, err = l.sources.FutureTasks.List(ctx, userID, ports.DateFilter{})
		return err
	})
	read(GroupPayroll, func(ctx context.Context) (err error) {
		payroll, err = l.sources.Payroll.List(ctx, userID)
		return err
	})
	read(GroupWorkTracking, func(ctx context.Context) (err error) {
		tracking, err = l.sources.WorkTracking.Get(ctx, userID)
		return err
	})

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(failed) == 4 {
		errs := make([]error, 0, len(failed))
		for _, group := range []string{GroupNotes, GroupFutureTasks, GroupPayroll, GroupWorkTracking} {
			errs = append(errs, fmt.Errorf("%s: %w", group, failed[group]))
		}
		return nil, fmt.Errorf("%w: %w", entities.ErrSnapshotUnavailable, errors.Join(errs...))
	}

	snapshot := entities.NewSnapshot(userID, l.cfg.Now())

	for _, group := range []string{GroupNotes, GroupFutureTasks, GroupPayroll, GroupWorkTracking} {
		if err, ok := failed[group]; ok {
			snapshot.FailedGroups = append(snapshot.FailedGroups, group)
			l.metrics.ReadFailure(group)
			l.logger.Warnw("Snapshot read failed, using empty group", "user_id", userID, "group", group, "error", err)
		}
	}

	if _, ok := failed[GroupNotes]; !ok {
		for _, n := range notes {
			snapshot.NotesByDate[n.Date] = append(snapshot.NotesByDate[n.Date], *n)
		}
	}
	if _, ok := failed[GroupFutureTasks]; !ok {
		for _, t := range tasks {
			snapshot.FutureTasksByDate[t.Date] = append(snapshot.FutureTasksByDate[t.Date], *t)
		}
	}
	if _, ok := failed[GroupPayroll]; !ok {
		for _, p := range payroll {
			snapshot.PayrollHistory = append(snapshot.PayrollHistory, *p)
		}
	}
	if _, ok := failed[GroupWorkTracking]; !ok {
		snapshot.WorkTracking = tracking
	}

	// Attendance notes since the last payroll are authoritative; the stored
	// counter only stands in when notes or payroll history could not be read.
	_, notesFailed := failed[GroupNotes]
	_, payrollFailed := failed[GroupPayroll]
	switch {
	case !notesFailed && !payrollFailed:
		snapshot.DaysWorked = entities.CountAttendance(snapshot.NotesByDate, entities.CycleStart(snapshot.PayrollHistory))
	case snapshot.WorkTracking != nil:
		snapshot.DaysWorked = snapshot.WorkTracking.DaysWorked
	case !notesFailed:
		snapshot.DaysWorked = entities.CountAttendance(snapshot.NotesByDate, "")
	}

	return snapshot, nil
}
