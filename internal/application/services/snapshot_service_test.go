package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/daybook/core/internal/application/loader"
	"github.com/daybook/core/internal/application/retry"
	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/ports"
)

// flakyNotes fails its first n List calls.
type flakyNotes struct {
	ports.NoteRepository
	failures int32
	calls    atomic.Int32
}

func (f *flakyNotes) List(ctx context.Context, userID uuid.UUID, filter ports.DateFilter) ([]*entities.Note, error) {
	if f.calls.Add(1) <= f.failures {
		return nil, entities.NewGatewayError("notes.list", errOffline, nil)
	}
	return f.NoteRepository.List(ctx, userID, filter)
}

type downTasks struct{ ports.FutureTaskRepository }

func (downTasks) List(ctx context.Context, userID uuid.UUID, filter ports.DateFilter) ([]*entities.FutureTask, error) {
	return nil, errOffline
}

type downPayroll struct{ ports.PayrollRepository }

func (downPayroll) List(ctx context.Context, userID uuid.UUID) ([]*entities.PayrollRecord, error) {
	return nil, errOffline
}

type downTracking struct{ ports.WorkTrackingRepository }

func (downTracking) Get(ctx context.Context, userID uuid.UUID) (*entities.WorkTrackingState, error) {
	return nil, errOffline
}

func noSleep(ctx context.Context, d time.Duration) error { return ctx.Err() }

func TestSnapshotServiceRetriesTotalOutage(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	notes := &flakyNotes{NoteRepository: h.store.Notes(), failures: 2}

	l := loader.New(loader.Sources{
		Notes:        notes,
		FutureTasks:  downTasks{h.store.FutureTasks()},
		Payroll:      downPayroll{h.store.Payroll()},
		WorkTracking: downTracking{h.store.WorkTracking()},
	}, h.cache, loader.Config{TTL: time.Minute}, nil, nil)
	svc := NewSnapshotService(l, retry.New(3, time.Millisecond, retry.WithSleep(noSleep)))

	snap, err := svc.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got := notes.calls.Load(); got != 3 {
		t.Errorf("notes reads = %d, want 3", got)
	}
	if len(snap.FailedGroups) != 3 {
		t.Errorf("failed groups = %v, want the three down sources", snap.FailedGroups)
	}
}

func TestSnapshotServiceGivesUp(t *testing.T) {
	h := newHarness(t)
	notes := &flakyNotes{NoteRepository: h.store.Notes(), failures: 100}

	l := loader.New(loader.Sources{
		Notes:        notes,
		FutureTasks:  downTasks{h.store.FutureTasks()},
		Payroll:      downPayroll{h.store.Payroll()},
		WorkTracking: downTracking{h.store.WorkTracking()},
	}, h.cache, loader.Config{}, nil, nil)
	svc := NewSnapshotService(l, retry.New(2, time.Millisecond, retry.WithSleep(noSleep)))

	_, err := svc.Get(context.Background(), uuid.New())
	if !errors.Is(err, entities.ErrSnapshotUnavailable) {
		t.Fatalf("err = %v, want ErrSnapshotUnavailable", err)
	}
	var exhausted *retry.ExhaustedError
	if !errors.As(err, &exhausted) || exhausted.Attempts != 3 {
		t.Errorf("err = %v, want exhaustion after 3 attempts", err)
	}
	if got := notes.calls.Load(); got != 3 {
		t.Errorf("notes reads = %d, want 3", got)
	}
}

func TestSnapshotServiceClearCache(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	userID := uuid.New()
	notes := &flakyNotes{NoteRepository: h.store.Notes()}

	l := loader.New(loader.Sources{
		Notes:        notes,
		FutureTasks:  h.store.FutureTasks(),
		Payroll:      h.store.Payroll(),
		WorkTracking: h.store.WorkTracking(),
	}, h.cache, loader.Config{TTL: time.Minute}, nil, nil)
	svc := NewSnapshotService(l, retry.New(0, time.Millisecond))

	for i := 0; i < 2; i++ {
		if _, err := svc.Get(ctx, userID); err != nil {
			t.Fatal(err)
		}
	}
	if got := notes.calls.Load(); got != 1 {
		t.Fatalf("notes reads = %d, want 1 while cached", got)
	}

	if err := svc.ClearCache(ctx, userID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(ctx, userID); err != nil {
		t.Fatal(err)
	}
	if got := notes.calls.Load(); got != 2 {
		t.Errorf("notes reads = %d, want 2 after clear", got)
	}
}
