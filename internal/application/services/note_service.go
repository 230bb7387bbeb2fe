package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/daybook/core/internal/adapters/localstore"
	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/ports"
)

// NoteService handles note operations
type NoteService struct {
	notes  ports.NoteRepository
	writer *SyncWriter
	now    func() time.Time
	logger *logger.Logger
}

// NewNoteService creates a new note service
func NewNoteService(notes ports.NoteRepository, writer *SyncWriter, log *logger.Logger) *NoteService {
	if log == nil {
		log = logger.NewNop()
	}
	return &NoteService{
		notes:  notes,
		writer: writer,
		now:    time.Now,
		logger: log.WithComponent("note_service"),
	}
}

var _ ports.NoteService = (*NoteService)(nil)

func (s *NoteService) List(ctx context.Context, userID uuid.UUID, filter ports.DateFilter) ([]*entities.Note, error) {
	notes, err := s.notes.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

// Create stores a note. Type defaults to note and the display timestamp to
// the current time of day.
func (s *NoteService) Create(ctx context.Context, userID uuid.UUID, req ports.CreateNoteRequest) (*entities.Note, ports.WriteResult, error) {
	if err := entities.ValidateDate(req.Date); err != nil {
		return nil, ports.WriteResult{}, err
	}

	note := &entities.Note{
		ID:        uuid.New(),
		UserID:    userID,
		Date:      req.Date,
		Text:      req.Text,
		Timestamp: req.Timestamp,
		Type:      req.Type,
		Color:     req.Color,
		Progress:  req.Progress,
		Completed: req.Completed,
		Status:    req.Status,
		CreatedAt: s.now(),
	}
	if note.Type == "" {
		note.Type = entities.NoteTypeNote
	}
	if !note.Type.IsValid() {
		return nil, ports.WriteResult{}, fmt.Errorf("%w: unknown note type %q", entities.ErrInvalidInput, note.Type)
	}
	if note.Timestamp == "" {
		note.Timestamp = s.now().Format("15:04:05")
	}

	result, err := s.writer.Write(ctx, userID, "create",
		func(ctx context.Context) error { return s.notes.Create(ctx, note) },
		localstore.NotesKey(userID.String(), note.Date), note,
	)
	if err != nil {
		return nil, result, err
	}

	if result.Saved() {
		s.logger.LogUserAction(userID.String(), "note_created", map[string]interface{}{
			"note_id": note.ID.String(),
			"date":    note.Date,
			"type":    string(note.Type),
		})
	}
	return note, result, nil
}

// Update merges the provided fields into the note.
func (s *NoteService) Update(ctx context.Context, userID, id uuid.UUID, patch ports.NotePatch) (ports.WriteResult, error) {
	if patch.IsEmpty() {
		return ports.WriteResult{}, fmt.Errorf("%w: nothing to update", entities.ErrInvalidInput)
	}
	if patch.Type != nil && !patch.Type.IsValid() {
		return ports.WriteResult{}, fmt.Errorf("%w: unknown note type %q", entities.ErrInvalidInput, *patch.Type)
	}

	payload := struct {
		ID    uuid.UUID       `json:"id"`
		Patch ports.NotePatch `json:"patch"`
	}{id, patch}

	return s.writer.Write(ctx, userID, "update",
		func(ctx context.Context) error { return s.notes.Update(ctx, userID, id, patch) },
		localstore.NotesKey(userID.String(), "pending"), payload,
	)
}

func (s *NoteService) Delete(ctx context.Context, userID, id uuid.UUID) (ports.WriteResult, error) {
	payload := struct {
		ID uuid.UUID `json:"id"`
	}{id}

	return s.writer.Write(ctx, userID, "delete",
		func(ctx context.Context) error { return s.notes.Delete(ctx, userID, id) },
		localstore.NotesKey(userID.String(), "pending"), payload,
	)
}
