package entities

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrNotFound            = errors.New("not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrNoteNotFound        = errors.New("note not found")
	ErrFutureTaskNotFound  = errors.New("future task not found")
	ErrSpecialDayNotFound  = errors.New("special day not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidDate         = errors.New("invalid date, expected YYYY-MM-DD")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrUserExists          = errors.New("user already exists")
	ErrThresholdNotReached = errors.New("payroll threshold not reached")
	ErrSnapshotUnavailable = errors.New("snapshot unavailable: every read failed")
	ErrCacheMiss           = errors.New("cache miss")
)

// DateLayout is the calendar bucket key format used everywhere a date keys data.
const DateLayout = "2006-01-02"

// PayrollThreshold is the number of attendance days that completes a payroll cycle.
const PayrollThreshold = 30

// Enums and types
type NoteType string

const (
	NoteTypeNote       NoteType = "note"
	NoteTypeAttendance NoteType = "attendance"
)

type ProgressStatus string

const (
	StatusPlanning   ProgressStatus = "planning"
	StatusInProgress ProgressStatus = "inProgress"
	StatusWorking    ProgressStatus = "working"
	StatusNearDone   ProgressStatus = "nearDone"
	StatusCompleted  ProgressStatus = "completed"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// SyncStatus is the state of the last remote write for a user.
type SyncStatus string

const (
	SyncIdle   SyncStatus = "idle"
	SyncSaving SyncStatus = "saving"
	SyncSaved  SyncStatus = "saved"
	SyncError  SyncStatus = "error"
)

// SyncState is the observable state of a user's sync orchestrator.
type SyncState struct {
	Status    SyncStatus `json:"status"`
	LastSaved *time.Time `json:"last_saved,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

// User backs the auth provider. The sync layer only ever sees ID.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	DisplayName  string    `json:"display_name" db:"display_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Note is a dated journal entry; attendance notes count toward the payroll cycle.
type Note struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	UserID    uuid.UUID       `json:"user_id" db:"user_id"`
	Date      string          `json:"date" db:"date"`
	Text      string          `json:"text" db:"text"`
	Timestamp string          `json:"timestamp" db:"timestamp"`
	Type      NoteType        `json:"type" db:"type"`
	Color     string          `json:"color" db:"color"`
	Progress  *int            `json:"progress,omitempty" db:"progress"`
	Completed *bool           `json:"completed,omitempty" db:"completed"`
	Status    *ProgressStatus `json:"status,omitempty" db:"status"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// FutureTask is a forward-looking action item grouped under a target date.
type FutureTask struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	UserID    uuid.UUID      `json:"user_id" db:"user_id"`
	Date      string         `json:"date" db:"date"`
	Text      string         `json:"text" db:"text"`
	Color     string         `json:"color" db:"color"`
	Priority  Priority       `json:"priority" db:"priority"`
	Status    ProgressStatus `json:"status" db:"status"`
	Completed bool           `json:"completed" db:"completed"`
	Tags      []string       `json:"tags" db:"-"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// PayrollRecord is append-only.
type PayrollRecord struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	Date       string    `json:"date" db:"date"`
	Amount     float64   `json:"amount" db:"amount"`
	DaysWorked int       `json:"days_worked" db:"days_worked"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// WorkTrackingState is the per-user payroll cycle. DaysWorked is a cached
// counter; the attendance notes are authoritative.
type WorkTrackingState struct {
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	StartDate  *string   `json:"start_date" db:"start_date"`
	DaysWorked int       `json:"days_worked" db:"days_worked"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// SpecialDay marks a date (holiday, leave, ...). One per date per user.
type SpecialDay struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Date      string    `json:"date" db:"date"`
	Type      string    `json:"type" db:"type"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Snapshot is the unified view assembled by the batch loader.
type Snapshot struct {
	UserID            uuid.UUID               `json:"user_id"`
	NotesByDate       map[string][]Note       `json:"notes_by_date"`
	FutureTasksByDate map[string][]FutureTask `json:"future_tasks_by_date"`
	PayrollHistory    []PayrollRecord         `json:"payroll_history"`
	WorkTracking      *WorkTrackingState      `json:"work_tracking"`
	DaysWorked        int                     `json:"days_worked"`
	FailedGroups      []string                `json:"failed_groups"`
	LoadedAt          time.Time               `json:"loaded_at"`
}

// NewSnapshot returns a snapshot with every group present and empty.
func NewSnapshot(userID uuid.UUID, loadedAt time.Time) *Snapshot {
	return &Snapshot{
		UserID:            userID,
		NotesByDate:       map[string][]Note{},
		FutureTasksByDate: map[string][]FutureTask{},
		PayrollHistory:    []PayrollRecord{},
		FailedGroups:      []string{},
		LoadedAt:          loadedAt,
	}
}

// IsPartial reports whether any group failed to load.
func (s *Snapshot) IsPartial() bool {
	return len(s.FailedGroups) > 0
}

// WorkStatus summarises progress toward the next payroll.
type WorkStatus struct {
	StartDate     *string `json:"start_date"`
	DaysWorked    int     `json:"days_worked"`
	StoredCounter int     `json:"stored_counter"`
	Threshold     int     `json:"threshold"`
	DaysRemaining int     `json:"days_remaining"`
	Progress      float64 `json:"progress"`
	Eligible      bool    `json:"eligible"`
}

// NewWorkStatus derives the cycle status from the authoritative attendance count.
func NewWorkStatus(daysWorked int, state *WorkTrackingState) WorkStatus {
	status := WorkStatus{
		DaysWorked: daysWorked,
		Threshold:  PayrollThreshold,
	}
	if state != nil {
		status.StartDate = state.StartDate
		status.StoredCounter = state.DaysWorked
	}

	status.DaysRemaining = PayrollThreshold - daysWorked
	if status.DaysRemaining < 0 {
		status.DaysRemaining = 0
	}
	status.Progress = float64(daysWorked) / float64(PayrollThreshold) * 100
	if status.Progress > 100 {
		status.Progress = 100
	}
	status.Eligible = daysWorked >= PayrollThreshold
	return status
}

// CountAttendance counts attendance notes dated after the given bucket key.
// An empty after counts every date.
func CountAttendance(notesByDate map[string][]Note, after string) int {
	count := 0
	for date, notes := range notesByDate {
		if after != "" && date <= after {
			continue
		}
		for _, n := range notes {
			if n.Type == NoteTypeAttendance {
				count++
			}
		}
	}
	return count
}

// CycleStart returns the date the current payroll cycle counts from: the
// most recent payroll date, or "" when no payroll was ever confirmed.
func CycleStart(history []PayrollRecord) string {
	last := ""
	for _, p := range history {
		if p.Date > last {
			last = p.Date
		}
	}
	return last
}

// ValidateDate checks a YYYY-MM-DD bucket key.
func ValidateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return nil
}

// Today returns the bucket key for t.
func Today(t time.Time) string {
	return t.Format(DateLayout)
}

// Utility methods
func (nt NoteType) IsValid() bool {
	switch nt {
	case NoteTypeNote, NoteTypeAttendance:
		return true
	default:
		return false
	}
}

func (ps ProgressStatus) IsValid() bool {
	switch ps {
	case StatusPlanning, StatusInProgress, StatusWorking, StatusNearDone, StatusCompleted:
		return true
	default:
		return false
	}
}

func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncIdle, SyncSaving, SyncSaved, SyncError:
		return true
	default:
		return false
	}
}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}
