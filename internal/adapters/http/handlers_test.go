package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/daybook/core/internal/adapters/localstore"
	"github.com/daybook/core/internal/adapters/memory"
	"github.com/daybook/core/internal/application/orchestrator"
	"github.com/daybook/core/internal/application/services"
	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/cache"
	"github.com/daybook/core/internal/ports"
)

type offlineNotes struct{ ports.NoteRepository }

func (offlineNotes) Create(ctx context.Context, note *entities.Note) error {
	return entities.NewGatewayError("notes.create", errors.New("connection refused"), nil)
}

type testAPI struct {
	echo   *echo.Echo
	userID uuid.UUID
}

func newTestAPI(t *testing.T, notesRepo func(*memory.Store) ports.NoteRepository) *testAPI {
	t.Helper()

	local, err := localstore.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { local.Close() })

	store := memory.New(nil)
	c := cache.NewStore(nil, nil, nil)
	registry := orchestrator.NewRegistry()
	writer := services.NewSyncWriter(registry, local, c, time.Second, nil)

	notes := store.Notes()
	if notesRepo != nil {
		notes = notesRepo(store)
	}

	api := &testAPI{echo: echo.New(), userID: uuid.New()}
	api.echo.Validator = NewValidator()
	api.echo.HTTPErrorHandler = ErrorHandler(nil)

	g := api.echo.Group("/api/v1", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("user", api.userID.String())
			return next(c)
		}
	})

	noteHandler := NewNoteHandler(services.NewNoteService(notes, writer, nil))
	g.GET("/notes", noteHandler.List)
	g.POST("/notes", noteHandler.Create)
	g.PATCH("/notes/:id", noteHandler.Update)
	g.DELETE("/notes/:id", noteHandler.Delete)

	workHandler := NewWorkHandler(
		services.NewWorkService(notes, store.Payroll(), store.WorkTracking(), writer, nil),
		services.NewSpecialDayService(store.SpecialDays(), writer),
	)
	g.GET("/work/status", workHandler.Status)
	g.POST("/work/payroll", workHandler.ConfirmPayroll)
	g.PUT("/special-days/:date", workHandler.SetSpecialDay)

	syncHandler := NewSyncHandler(services.NewSyncService(registry))
	g.GET("/sync", syncHandler.State)

	return api
}

func (a *testAPI) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	return rec
}

func TestCreateNoteSaved(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(http.MethodPost, "/api/v1/notes", `{"date":"2024-03-01","text":"standup"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp struct {
		Data entities.Note     `json:"data"`
		Sync ports.WriteResult `json:"sync"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Text != "standup" || resp.Sync.Status != entities.SyncSaved {
		t.Errorf("response = %+v", resp)
	}

	rec = api.do(http.MethodGet, "/api/v1/notes?date=2024-03-01", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "standup") {
		t.Errorf("list = %d %s", rec.Code, rec.Body)
	}
}

func TestCreateNoteFallbackIsAccepted(t *testing.T) {
	api := newTestAPI(t, func(s *memory.Store) ports.NoteRepository { return offlineNotes{s.Notes()} })

	rec := api.do(http.MethodPost, "/api/v1/notes", `{"date":"2024-03-01","text":"offline"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), `"fallback":true`) {
		t.Errorf("body = %s", rec.Body)
	}

	rec = api.do(http.MethodGet, "/api/v1/sync", "")
	if !strings.Contains(rec.Body.String(), `"status":"error"`) {
		t.Errorf("sync state = %s", rec.Body)
	}
}

func TestCreateNoteValidation(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(http.MethodPost, "/api/v1/notes", `{"date":"March 1","text":"x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp ports.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Message != "validation failed" || resp.Details["Date"] == nil {
		t.Errorf("response = %+v", resp)
	}

	rec = api.do(http.MethodPost, "/api/v1/notes", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d", rec.Code)
	}
}

func TestUpdateMissingNoteIsNotFound(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(http.MethodPatch, "/api/v1/notes/"+uuid.NewString(), `{"text":"edit"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, body = %s", rec.Code, rec.Body)
	}

	rec = api.do(http.MethodDelete, "/api/v1/notes/not-a-uuid", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d", rec.Code)
	}
}

func TestConfirmPayrollBeforeThreshold(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(http.MethodPost, "/api/v1/work/payroll", `{"amount":100}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, body = %s", rec.Code, rec.Body)
	}

	rec = api.do(http.MethodGet, "/api/v1/work/status", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"threshold":30`) {
		t.Errorf("status = %d %s", rec.Code, rec.Body)
	}
}

func TestSetSpecialDay(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(http.MethodPut, "/api/v1/special-days/2024-05-01", `{"type":"holiday"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	rec = api.do(http.MethodPut, "/api/v1/special-days/someday", `{"type":"holiday"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad date status = %d", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{entities.ErrInvalidDate, http.StatusBadRequest},
		{entities.ErrUnauthorized, http.StatusUnauthorized},
		{entities.ErrUserExists, http.StatusConflict},
		{entities.NewGatewayError("notes.update", entities.ErrNoteNotFound, entities.ErrNoteNotFound), http.StatusNotFound},
		{entities.NewGatewayError("notes.list", context.DeadlineExceeded, nil), http.StatusServiceUnavailable},
		{entities.ErrSnapshotUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
