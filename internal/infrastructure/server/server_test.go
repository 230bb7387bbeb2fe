package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/daybook/core/internal/adapters/memory"
	"github.com/daybook/core/internal/infrastructure/cache"
	"github.com/daybook/core/internal/infrastructure/config"
	"github.com/daybook/core/internal/infrastructure/metrics"
	"github.com/daybook/core/internal/ports"
)

func testConfig() *config.Config {
	return &config.Config{
		App:      config.AppConfig{Name: "Daybook", Version: "test"},
		Server:   config.ServerConfig{Port: 8080, RequestTimeout: 5 * time.Second},
		Database: config.DatabaseConfig{Driver: "memory"},
		Cache:    config.CacheConfig{Backend: "memory", TTL: time.Minute},
		Sync:     config.SyncConfig{RetryCount: 1, RetryDelay: time.Millisecond, RequestTimeout: time.Second},
		JWT:      config.JWTConfig{Secret: "0123456789abcdef-test", ExpiresIn: time.Hour, Issuer: "daybook"},
		Security: config.SecurityConfig{CORSAllowedOrigins: "*"},
		Metrics:  config.MetricsConfig{Enabled: true},
	}
}

func newTestServer(t *testing.T, checks map[string]HealthCheck) *Server {
	t.Helper()
	store := memory.New(nil)
	srv, err := New(testConfig(), Backend{
		Users:        store.Users(),
		Notes:        store.Notes(),
		FutureTasks:  store.FutureTasks(),
		Payroll:      store.Payroll(),
		WorkTracking: store.WorkTracking(),
		SpecialDays:  store.SpecialDays(),
		Cache:        cache.NewStore(nil, nil, nil),
		Checks:       checks,
	}, nil, metrics.New())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return srv
}

func request(srv *Server, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func signUp(t *testing.T, srv *Server) string {
	t.Helper()
	rec := request(srv, http.MethodPost, "/api/v1/auth/signup", "", `{"email":"ana@example.com","password":"correct-horse"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp ports.AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp.AccessToken
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, map[string]HealthCheck{
		"cache": func(ctx context.Context) error { return nil },
	})

	if rec := request(srv, http.MethodGet, "/health", "", ""); rec.Code != http.StatusOK {
		t.Errorf("/health = %d", rec.Code)
	}
	if rec := request(srv, http.MethodGet, "/ready", "", ""); rec.Code != http.StatusOK {
		t.Errorf("/ready = %d, body = %s", rec.Code, rec.Body)
	}
}

func TestReadinessReportsFailingCheck(t *testing.T) {
	srv := newTestServer(t, map[string]HealthCheck{
		"database": func(ctx context.Context) error { return errors.New("connection refused") },
	})

	rec := request(srv, http.MethodGet, "/ready", "", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("/ready = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "connection refused") {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t, nil)

	if rec := request(srv, http.MethodGet, "/api/v1/notes", "", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d", rec.Code)
	}
	if rec := request(srv, http.MethodGet, "/api/v1/notes", "garbage", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token = %d", rec.Code)
	}
}

func TestNoteFlowAndSnapshot(t *testing.T) {
	srv := newTestServer(t, nil)
	token := signUp(t, srv)

	rec := request(srv, http.MethodPost, "/api/v1/notes", token, `{"date":"2024-03-01","text":"present","type":"attendance"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d, body = %s", rec.Code, rec.Body)
	}

	rec = request(srv, http.MethodGet, "/api/v1/snapshot", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("snapshot = %d, body = %s", rec.Code, rec.Body)
	}
	var snap struct {
		NotesByDate map[string][]json.RawMessage `json:"notes_by_date"`
		DaysWorked  int                          `json:"days_worked"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.NotesByDate["2024-03-01"]) != 1 || snap.DaysWorked != 1 {
		t.Errorf("snapshot = %s", rec.Body)
	}

	rec = request(srv, http.MethodGet, "/api/v1/sync", token, "")
	if !strings.Contains(rec.Body.String(), `"status":"saved"`) {
		t.Errorf("sync = %s", rec.Body)
	}

	if rec := request(srv, http.MethodPost, "/api/v1/auth/signout", token, ""); rec.Code != http.StatusOK {
		t.Errorf("signout = %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	request(srv, http.MethodGet, "/health", "", "")

	rec := request(srv, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("/metrics = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "daybook_http_requests_total") {
		t.Error("http request counter missing from /metrics")
	}
}
