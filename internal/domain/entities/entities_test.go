package entities

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
)

func TestNewWorkStatus(t *testing.T) {
	start := "2024-03-01"
	tests := []struct {
		name      string
		days      int
		state     *WorkTrackingState
		remaining int
		progress  float64
		eligible  bool
	}{
		{name: "fresh cycle", days: 0, state: nil, remaining: 30, progress: 0},
		{name: "half way", days: 15, state: &WorkTrackingState{StartDate: &start, DaysWorked: 14}, remaining: 15, progress: 50},
		{name: "threshold", days: 30, remaining: 0, progress: 100, eligible: true},
		{name: "past threshold", days: 34, remaining: 0, progress: 100, eligible: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewWorkStatus(tt.days, tt.state)
			if got.DaysRemaining != tt.remaining {
				t.Errorf("DaysRemaining = %d, want %d", got.DaysRemaining, tt.remaining)
			}
			if got.Progress != tt.progress {
				t.Errorf("Progress = %v, want %v", got.Progress, tt.progress)
			}
			if got.Eligible != tt.eligible {
				t.Errorf("Eligible = %v, want %v", got.Eligible, tt.eligible)
			}
			if tt.state != nil && got.StoredCounter != tt.state.DaysWorked {
				t.Errorf("StoredCounter = %d, want %d", got.StoredCounter, tt.state.DaysWorked)
			}
		})
	}
}

func TestCountAttendance(t *testing.T) {
	notes := map[string][]Note{
		"2024-03-01": {{Type: NoteTypeAttendance}, {Type: NoteTypeNote}},
		"2024-03-02": {{Type: NoteTypeAttendance}},
		"2024-03-03": {},
	}
	if got := CountAttendance(notes, ""); got != 2 {
		t.Errorf("CountAttendance = %d, want 2", got)
	}
	if got := CountAttendance(notes, "2024-03-01"); got != 1 {
		t.Errorf("CountAttendance after 2024-03-01 = %d, want 1", got)
	}
}

func TestCycleStart(t *testing.T) {
	if got := CycleStart(nil); got != "" {
		t.Errorf("CycleStart(nil) = %q", got)
	}
	history := []PayrollRecord{{Date: "2024-01-31"}, {Date: "2024-03-02"}, {Date: "2024-02-15"}}
	if got := CycleStart(history); got != "2024-03-02" {
		t.Errorf("CycleStart = %q, want 2024-03-02", got)
	}
}

func TestValidateDate(t *testing.T) {
	if err := ValidateDate("2024-02-29"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, bad := range []string{"", "2024-2-1", "01/02/2024", "2023-02-29"} {
		if err := ValidateDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ValidateDate(%q) = %v, want ErrInvalidDate", bad, err)
		}
	}
}

func TestNewGatewayError(t *testing.T) {
	if NewGatewayError("noop", nil, nil) != nil {
		t.Fatal("nil error should stay nil")
	}

	err := NewGatewayError("get note", sql.ErrNoRows, ErrNoteNotFound)
	if KindOf(err) != KindNotFound {
		t.Errorf("kind = %s, want %s", KindOf(err), KindNotFound)
	}
	if !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected errors.Is(err, ErrNoteNotFound), got %v", err)
	}

	err = NewGatewayError("create note", fmt.Errorf("bad: %w", ErrInvalidInput), nil)
	if KindOf(err) != KindInvalid {
		t.Errorf("kind = %s, want %s", KindOf(err), KindInvalid)
	}

	err = NewGatewayError("list notes", errors.New("boom"), nil)
	if KindOf(err) != KindUnknown {
		t.Errorf("kind = %s, want %s", KindOf(err), KindUnknown)
	}
}

func TestEnumValidity(t *testing.T) {
	if !PriorityUrgent.IsValid() || Priority("critical").IsValid() {
		t.Error("priority validity mismatch")
	}
	if !StatusNearDone.IsValid() || ProgressStatus("done").IsValid() {
		t.Error("status validity mismatch")
	}
	if !NoteTypeAttendance.IsValid() || NoteType("task").IsValid() {
		t.Error("note type validity mismatch")
	}
}
