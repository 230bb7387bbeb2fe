package ports

import (
	"context"
	"time"

	"github.com/daybook/core/internal/domain/entities"
	"github.com/google/uuid"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
}

// NoteRepository defines the interface for note data operations.
// Every call is scoped by userID and lists are ordered by created_at ascending.
type NoteRepository interface {
	List(ctx context.Context, userID uuid.UUID, filter DateFilter) ([]*entities.Note, error)
	Create(ctx context.Context, note *entities.Note) error
	Update(ctx context.Context, userID, id uuid.UUID, patch NotePatch) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// FutureTaskRepository defines the interface for future task data operations
type FutureTaskRepository interface {
	List(ctx context.Context, userID uuid.UUID, filter DateFilter) ([]*entities.FutureTask, error)
	Create(ctx context.Context, task *entities.FutureTask) error
	Update(ctx context.Context, userID, id uuid.UUID, patch FutureTaskPatch) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// PayrollRepository is append-only. CloseCycle is the only write: it appends
// the record and resets the user's work tracking row in one transaction.
type PayrollRepository interface {
	List(ctx context.Context, userID uuid.UUID) ([]*entities.PayrollRecord, error)
	CloseCycle(ctx context.Context, record *entities.PayrollRecord) error
}

// WorkTrackingRepository holds one row per user. Get returns nil, nil when absent.
type WorkTrackingRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*entities.WorkTrackingState, error)
	Upsert(ctx context.Context, state *entities.WorkTrackingState) error
}

// SpecialDayRepository defines the interface for special day data operations
type SpecialDayRepository interface {
	List(ctx context.Context, userID uuid.UUID) ([]*entities.SpecialDay, error)
	Upsert(ctx context.Context, day *entities.SpecialDay) error
	Delete(ctx context.Context, userID uuid.UUID, date string) error
}

// CacheRepository defines the interface for caching operations.
// Get returns entities.ErrCacheMiss for absent, expired or undecodable entries.
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
	DeletePattern(ctx context.Context, pattern string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// FallbackStore is the local last-resort key/value store.
// Get reports false when the key is absent.
type FallbackStore interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
}

// Filter types for repository queries
type DateFilter struct {
	Date *string
}

// ForDate is a shorthand for a single-day filter.
func ForDate(date string) DateFilter {
	return DateFilter{Date: &date}
}

// NotePatch carries a partial update; nil fields are left untouched.
type NotePatch struct {
	Text      *string                  `json:"text" validate:"omitempty,max=10000"`
	Color     *string                  `json:"color" validate:"omitempty,max=32"`
	Type      *entities.NoteType       `json:"type" validate:"omitempty,oneof=note attendance"`
	Progress  *int                     `json:"progress" validate:"omitempty,min=0,max=100"`
	Completed *bool                    `json:"completed"`
	Status    *entities.ProgressStatus `json:"status" validate:"omitempty,oneof=planning inProgress working nearDone completed"`
}

// IsEmpty reports whether the patch changes nothing.
func (p NotePatch) IsEmpty() bool {
	return p.Text == nil && p.Color == nil && p.Type == nil &&
		p.Progress == nil && p.Completed == nil && p.Status == nil
}

// FutureTaskPatch carries a partial update; nil fields are left untouched.
type FutureTaskPatch struct {
	Text      *string                  `json:"text" validate:"omitempty,max=10000"`
	Color     *string                  `json:"color" validate:"omitempty,max=32"`
	Priority  *entities.Priority       `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Status    *entities.ProgressStatus `json:"status" validate:"omitempty,oneof=planning inProgress working nearDone completed"`
	Completed *bool                    `json:"completed"`
	Tags      *[]string                `json:"tags" validate:"omitempty,max=20"`
}

// IsEmpty reports whether the patch changes nothing.
func (p FutureTaskPatch) IsEmpty() bool {
	return p.Text == nil && p.Color == nil && p.Priority == nil &&
		p.Status == nil && p.Completed == nil && p.Tags == nil
}
