package ports

import (
	"context"
	"time"

	"github.com/daybook/core/internal/domain/entities"
	"github.com/google/uuid"
)

// AuthService interface for authentication operations
type AuthService interface {
	SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	SignOut(ctx context.Context, userID uuid.UUID) error
	GetUser(ctx context.Context, userID uuid.UUID) (*entities.User, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// SnapshotService serves the unified per-user view.
type SnapshotService interface {
	Get(ctx context.Context, userID uuid.UUID) (*entities.Snapshot, error)
	Refresh(ctx context.Context, userID uuid.UUID) (*entities.Snapshot, error)
}

// NoteService interface for note operations. Writes go through the sync
// orchestrator and report how they ended in a WriteResult.
type NoteService interface {
	List(ctx context.Context, userID uuid.UUID, filter DateFilter) ([]*entities.Note, error)
	Create(ctx context.Context, userID uuid.UUID, req CreateNoteRequest) (*entities.Note, WriteResult, error)
	Update(ctx context.Context, userID, id uuid.UUID, patch NotePatch) (WriteResult, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (WriteResult, error)
}

// FutureTaskService interface for future task operations
type FutureTaskService interface {
	List(ctx context.Context, userID uuid.UUID, filter DateFilter) ([]*entities.FutureTask, error)
	Create(ctx context.Context, userID uuid.UUID, req CreateFutureTaskRequest) (*entities.FutureTask, WriteResult, error)
	Update(ctx context.Context, userID, id uuid.UUID, patch FutureTaskPatch) (WriteResult, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (WriteResult, error)
}

// WorkService tracks the payroll cycle.
type WorkService interface {
	Status(ctx context.Context, userID uuid.UUID) (*entities.WorkStatus, error)
	ConfirmPayroll(ctx context.Context, userID uuid.UUID, req ConfirmPayrollRequest) (*entities.PayrollRecord, WriteResult, error)
	History(ctx context.Context, userID uuid.UUID) ([]*entities.PayrollRecord, error)
}

// SpecialDayService interface for special day operations
type SpecialDayService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*entities.SpecialDay, error)
	Set(ctx context.Context, userID uuid.UUID, date string, req SetSpecialDayRequest) (*entities.SpecialDay, WriteResult, error)
	Delete(ctx context.Context, userID uuid.UUID, date string) (WriteResult, error)
}

// SyncService exposes per-user sync state.
type SyncService interface {
	State(userID uuid.UUID) entities.SyncState
	Reset(userID uuid.UUID) entities.SyncState
}

// WriteResult reports how a remote write ended.
type WriteResult struct {
	Status    entities.SyncStatus `json:"status"`
	Fallback  bool                `json:"fallback"`
	LastSaved *time.Time          `json:"last_saved,omitempty"`
}

// Saved reports whether the remote store accepted the write.
func (r WriteResult) Saved() bool {
	return r.Status == entities.SyncSaved
}

// Request/Response Types

// Auth related types
type SignUpRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresIn   int64          `json:"expires_in"`
	User        *entities.User `json:"user"`
}

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Note related types
type CreateNoteRequest struct {
	Date      string                   `json:"date" validate:"required,datetime=2006-01-02"`
	Text      string                   `json:"text" validate:"required,max=10000"`
	Timestamp string                   `json:"timestamp" validate:"omitempty,datetime=15:04:05"`
	Type      entities.NoteType        `json:"type" validate:"omitempty,oneof=note attendance"`
	Color     string                   `json:"color" validate:"omitempty,max=32"`
	Progress  *int                     `json:"progress" validate:"omitempty,min=0,max=100"`
	Completed *bool                    `json:"completed"`
	Status    *entities.ProgressStatus `json:"status" validate:"omitempty,oneof=planning inProgress working nearDone completed"`
}

// Future task related types
type CreateFutureTaskRequest struct {
	Date      string                  `json:"date" validate:"required,datetime=2006-01-02"`
	Text      string                  `json:"text" validate:"required,max=10000"`
	Color     string                  `json:"color" validate:"omitempty,max=32"`
	Priority  entities.Priority       `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Status    entities.ProgressStatus `json:"status" validate:"omitempty,oneof=planning inProgress working nearDone completed"`
	Completed bool                    `json:"completed"`
	Tags      []string                `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

// Payroll related types
type ConfirmPayrollRequest struct {
	Amount float64 `json:"amount" validate:"gte=0"`
	Date   string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type SetSpecialDayRequest struct {
	Type string `json:"type" validate:"required,max=32"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
