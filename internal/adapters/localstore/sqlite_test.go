package localstore

import (
	"context"
	"path/filepath"
	"testing"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutGetDelete(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	key := FutureTasksKey("u1", "2024-03-01")

	// Absent
	if _, ok, err := store.Get(ctx, key); err != nil || ok {
		t.Fatalf("Get absent = ok %v, err %v", ok, err)
	}

	if err := store.Put(ctx, key, []byte(`[{"text":"a"}]`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	// Last write wins
	if err := store.Put(ctx, key, []byte(`[{"text":"b"}]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	value, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("get: ok %v, err %v", ok, err)
	}
	if string(value) != `[{"text":"b"}]` {
		t.Errorf("value = %s", value)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, key); ok {
		t.Error("entry should be gone after delete")
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "local.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("ping: %v", err)
	}
}

func TestKeysAreDistinct(t *testing.T) {
	if NotesKey("u1", "2024-03-01") == FutureTasksKey("u1", "2024-03-01") {
		t.Error("notes and future task keys must not collide")
	}
}
