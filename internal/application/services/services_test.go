package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/daybook/core/internal/adapters/localstore"
	"github.com/daybook/core/internal/adapters/memory"
	"github.com/daybook/core/internal/application/orchestrator"
	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/cache"
	"github.com/daybook/core/internal/ports"
)

var errOffline = errors.New("dial tcp: connection refused")

type offlineNotes struct{ ports.NoteRepository }

func (offlineNotes) Create(ctx context.Context, note *entities.Note) error {
	return entities.NewGatewayError("notes.create", errOffline, nil)
}

type offlineTasks struct{ ports.FutureTaskRepository }

func (offlineTasks) List(ctx context.Context, userID uuid.UUID, filter ports.DateFilter) ([]*entities.FutureTask, error) {
	return nil, entities.NewGatewayError("future_tasks.list", errOffline, nil)
}

func (offlineTasks) Create(ctx context.Context, task *entities.FutureTask) error {
	return entities.NewGatewayError("future_tasks.create", errOffline, nil)
}

type countingTasks struct {
	ports.FutureTaskRepository
	lists int
}

func (c *countingTasks) List(ctx context.Context, userID uuid.UUID, filter ports.DateFilter) ([]*entities.FutureTask, error) {
	c.lists++
	return c.FutureTaskRepository.List(ctx, userID, filter)
}

type harness struct {
	store    *memory.Store
	cache    *cache.Store
	local    *localstore.Store
	registry *orchestrator.Registry
	writer   *SyncWriter
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	local, err := localstore.Open(":memory:")
	if err != nil {
		t.Fatalf("open local store: %v", err)
	}
	t.Cleanup(func() { local.Close() })

	h := &harness{
		store:    memory.New(nil),
		cache:    cache.NewStore(nil, nil, nil),
		local:    local,
		registry: orchestrator.NewRegistry(),
	}
	h.writer = NewSyncWriter(h.registry, local, h.cache, time.Second, nil)
	return h
}

func TestNoteCreateSavedInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	userID := uuid.New()
	svc := NewNoteService(h.store.Notes(), h.writer, nil)

	snapshotKey := "snapshot_" + userID.String()
	if err := h.cache.Set(ctx, snapshotKey, map[string]int{"stale": 1}, time.Minute); err != nil {
		t.Fatal(err)
	}

	note, result, err := svc.Create(ctx, userID, ports.CreateNoteRequest{Date: "2024-03-01", Text: "standup"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !result.Saved() || result.Fallback || result.LastSaved == nil {
		t.Errorf("result = %+v, want saved with timestamp", result)
	}
	if note.Type != entities.NoteTypeNote || note.Timestamp == "" {
		t.Errorf("defaults not applied: %+v", note)
	}
	if ok, _ := h.cache.Exists(ctx, snapshotKey); ok {
		t.Error("snapshot should be invalidated after a saved write")
	}

	notes, err := svc.List(ctx, userID, ports.DateFilter{})
	if err != nil || len(notes) != 1 {
		t.Fatalf("List = %v, %v", notes, err)
	}
	if state := h.registry.For(userID).State(); state.Status != entities.SyncSaved {
		t.Errorf("status = %s, want saved", state.Status)
	}
}

func TestNoteCreateFallsBackWhenOffline(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	userID := uuid.New()
	svc := NewNoteService(offlineNotes{h.store.Notes()}, h.writer, nil)

	_, result, err := svc.Create(ctx, userID, ports.CreateNoteRequest{Date: "2024-03-01", Text: "offline"})
	if err != nil {
		t.Fatalf("transient failure should not surface as an error: %v", err)
	}
	if result.Status != entities.SyncError || !result.Fallback {
		t.Errorf("result = %+v, want error with fallback", result)
	}
	if result.LastSaved != nil {
		t.Error("nothing was ever saved")
	}

	pending, err := h.writer.Pending(ctx, localstore.NotesKey(userID.String(), "2024-03-01"))
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].Op != "create" {
		t.Fatalf("pending = %+v", pending)
	}

	// A second failure appends rather than replaces.
	if _, _, err := svc.Create(ctx, userID, ports.CreateNoteRequest{Date: "2024-03-01", Text: "again"}); err != nil {
		t.Fatal(err)
	}
	pending, _ = h.writer.Pending(ctx, localstore.NotesKey(userID.String(), "2024-03-01"))
	if len(pending) != 2 {
		t.Errorf("pending = %d entries, want 2", len(pending))
	}
}

func TestNoteUpdateNotFoundIsNotStored(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	userID := uuid.New()
	svc := NewNoteService(h.store.Notes(), h.writer, nil)

	text := "edited"
	result, err := svc.Update(ctx, userID, uuid.New(), ports.NotePatch{Text: &text})
	if !errors.Is(err, entities.ErrNoteNotFound) {
		t.Fatalf("err = %v, want ErrNoteNotFound", err)
	}
	if result.Fallback {
		t.Error("a missing note must not be written to the fallback store")
	}
	pending, _ := h.writer.Pending(ctx, localstore.NotesKey(userID.String(), "pending"))
	if len(pending) != 0 {
		t.Errorf("pending = %+v", pending)
	}

	if _, err := svc.Update(ctx, userID, uuid.New(), ports.NotePatch{}); !errors.Is(err, entities.ErrInvalidInput) {
		t.Errorf("empty patch err = %v, want ErrInvalidInput", err)
	}
}

func TestNoteUpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	userID := uuid.New()
	svc := NewNoteService(h.store.Notes(), h.writer, nil)

	note, _, err := svc.Create(ctx, userID, ports.CreateNoteRequest{Date: "2024-03-01", Text: "draft", Color: "blue"})
	if err != nil {
		t.Fatal(err)
	}

	done := true
	if _, err := svc.Update(ctx, userID, note.ID, ports.NotePatch{Completed: &done}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	notes, _ := svc.List(ctx, userID, ports.DateFilter{})
	got := notes[0]
	if got.Text != "draft" || got.Color != "blue" {
		t.Errorf("untouched fields changed: %+v", got)
	}
	if got.Completed == nil || !*got.Completed {
		t.Error("completed should be set")
	}
}

func TestFutureTaskListServesLocalFallback(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	userID := uuid.New()
	svc := NewFutureTaskService(offlineTasks{h.store.FutureTasks()}, h.cache, h.writer, time.Minute, nil)

	created, result, err := svc.Create(ctx, userID, ports.CreateFutureTaskRequest{Date: "2024-04-02", Text: "renew visa"})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Fallback {
		t.Fatalf("result = %+v, want fallback", result)
	}

	date := "2024-04-02"
	tasks, err := svc.List(ctx, userID, ports.DateFilter{Date: &date})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != created.ID {
		t.Fatalf("tasks = %+v", tasks)
	}
	if tasks[0].Priority != entities.PriorityMedium || tasks[0].Status != entities.StatusPlanning {
		t.Errorf("defaults lost: %+v", tasks[0])
	}

	other := "2024-04-03"
	tasks, err = svc.List(ctx, userID, ports.DateFilter{Date: &other})
	if err != nil || len(tasks) != 0 {
		t.Errorf("other date = %v, %v; want empty", tasks, err)
	}
}

func TestFutureTaskListIsCachedUntilWrite(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	userID := uuid.New()
	repo := &countingTasks{FutureTaskRepository: h.store.FutureTasks()}
	svc := NewFutureTaskService(repo, h.cache, h.writer, time.Minute, nil)

	date := "2024-04-02"
	if _, _, err := svc.Create(ctx, userID, ports.CreateFutureTaskRequest{Date: date, Text: "a"}); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.List(ctx, userID, ports.DateFilter{Date: &date}); err != nil {
			t.Fatal(err)
		}
	}
	if repo.lists != 1 {
		t.Errorf("remote lists = %d, want 1", repo.lists)
	}

	if _, _, err := svc.Create(ctx, userID, ports.CreateFutureTaskRequest{Date: date, Text: "b"}); err != nil {
		t.Fatal(err)
	}
	tasks, err := svc.List(ctx, userID, ports.DateFilter{Date: &date})
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 2 || repo.lists != 2 {
		t.Errorf("after write: %d tasks, %d lists; want 2, 2", len(tasks), repo.lists)
	}
}

func TestFutureTaskListRejectsBadDate(t *testing.T) {
	h := newHarness(t)
	svc := NewFutureTaskService(h.store.FutureTasks(), h.cache, h.writer, time.Minute, nil)

	bad := "04/02/2024"
	if _, err := svc.List(context.Background(), uuid.New(), ports.DateFilter{Date: &bad}); !errors.Is(err, entities.ErrInvalidDate) {
		t.Errorf("err = %v, want ErrInvalidDate", err)
	}
}

func TestSpecialDaySetAndDelete(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	userID := uuid.New()
	svc := NewSpecialDayService(h.store.SpecialDays(), h.writer)

	if _, _, err := svc.Set(ctx, userID, "2024-05-01", ports.SetSpecialDayRequest{Type: "holiday"}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Set(ctx, userID, "2024-05-01", ports.SetSpecialDayRequest{Type: "vacation"}); err != nil {
		t.Fatal(err)
	}

	days, err := svc.List(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 1 || days[0].Type != "vacation" {
		t.Fatalf("days = %+v, want single vacation", days)
	}

	if _, err := svc.Delete(ctx, userID, "2024-05-01"); err != nil {
		t.Fatal(err)
	}
	days, _ = svc.List(ctx, userID)
	if len(days) != 0 {
		t.Errorf("days = %+v after delete", days)
	}

	if _, _, err := svc.Set(ctx, userID, "May 1", ports.SetSpecialDayRequest{Type: "holiday"}); !errors.Is(err, entities.ErrInvalidDate) {
		t.Errorf("bad date err = %v", err)
	}
}

func TestSyncServiceReset(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	userID := uuid.New()
	notes := NewNoteService(offlineNotes{h.store.Notes()}, h.writer, nil)
	svc := NewSyncService(h.registry)

	if _, _, err := notes.Create(ctx, userID, ports.CreateNoteRequest{Date: "2024-03-01", Text: "x"}); err != nil {
		t.Fatal(err)
	}
	state := svc.State(userID)
	if state.Status != entities.SyncError || state.LastError == "" {
		t.Errorf("state = %+v, want error", state)
	}

	state = svc.Reset(userID)
	if state.Status != entities.SyncIdle {
		t.Errorf("status after reset = %s", state.Status)
	}
}
