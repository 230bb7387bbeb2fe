package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/daybook/core/internal/infrastructure/config"
)

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(config.LoggerConfig{Level: "loud", Format: "json", Output: "stdout"})
	if err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daybook.log")

	log, err := New(config.LoggerConfig{
		Level:      "info",
		Format:     "json",
		Output:     "file",
		Filename:   path,
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	log.WithComponent("test").WithUserID("u1").Infow("hello", "k", "v")
	log.WithRequestID("req-42").Warnw("warned")
	_ = log.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"request_id":"req-42"`) {
		t.Fatalf("log file missing request id: %s", data)
	}
}

func TestNopLogger(t *testing.T) {
	log := NewNop()
	log.LogUserAction("u1", "create_note", map[string]interface{}{"date": "2024-01-01"})
	log.LogDatabaseQuery("list notes", 1.5, errors.New("down"))
}
