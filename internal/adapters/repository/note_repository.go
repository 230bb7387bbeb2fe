package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/ports"
)

const noteColumns = `id, user_id, date, text, timestamp, type, color, progress, completed, status, created_at`

// NoteRepositoryImpl implements the NoteRepository interface
type NoteRepositoryImpl struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *sqlx.DB, log *logger.Logger) ports.NoteRepository {
	if log == nil {
		log = logger.NewNop()
	}
	return &NoteRepositoryImpl{db: db, logger: log.WithComponent("note_repository")}
}

func (r *NoteRepositoryImpl) List(ctx context.Context, userID uuid.UUID, filter ports.DateFilter) (notes []*entities.Note, err error) {
	start := time.Now()
	defer func() { err = observe(r.logger, "notes.list", start, err, entities.ErrNoteNotFound) }()

	query, args, err := listQuery(noteColumns, "notes", userID, filter)
	if err != nil {
		return nil, err
	}

	notes = []*entities.Note{}
	if err := r.db.SelectContext(ctx, &notes, query, args...); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

func (r *NoteRepositoryImpl) Create(ctx context.Context, note *entities.Note) (err error) {
	start := time.Now()
	defer func() { err = observe(r.logger, "notes.create", start, err, entities.ErrNoteNotFound) }()

	if err := entities.ValidateDate(note.Date); err != nil {
		return err
	}
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}

	query := `
		INSERT INTO notes (id, user_id, date, text, timestamp, type, color, progress, completed, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`

	err = r.db.QueryRowContext(ctx, query,
		note.ID, note.UserID, note.Date, note.Text, note.Timestamp, note.Type,
		note.Color, note.Progress, note.Completed, note.Status,
	).Scan(&note.CreatedAt)
	if err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

func (r *NoteRepositoryImpl) Update(ctx context.Context, userID, id uuid.UUID, patch ports.NotePatch) (err error) {
	start := time.Now()
	defer func() { err = observe(r.logger, "notes.update", start, err, entities.ErrNoteNotFound) }()

	var b updateBuilder
	if patch.Text != nil {
		b.set("text", *patch.Text)
	}
	if patch.Color != nil {
		b.set("color", *patch.Color)
	}
	if patch.Type != nil {
		b.set("type", *patch.Type)
	}
	if patch.Progress != nil {
		b.set("progress", *patch.Progress)
	}
	if patch.Completed != nil {
		b.set("completed", *patch.Completed)
	}
	if patch.Status != nil {
		b.set("status", *patch.Status)
	}
	if b.empty() {
		return nil
	}

	query, args := b.build("notes", userID, id)
	return execAffectingOne(ctx, r.db, entities.ErrNoteNotFound, query, args...)
}

func (r *NoteRepositoryImpl) Delete(ctx context.Context, userID, id uuid.UUID) (err error) {
	start := time.Now()
	defer func() { err = observe(r.logger, "notes.delete", start, err, entities.ErrNoteNotFound) }()

	return execAffectingOne(ctx, r.db, entities.ErrNoteNotFound,
		`DELETE FROM notes WHERE id = $1 AND user_id = $2`, id, userID)
}

// execAffectingOne runs a write and reports notFound when no row matched.
func execAffectingOne(ctx context.Context, db sqlx.ExecerContext, notFound error, query string, args ...interface{}) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
