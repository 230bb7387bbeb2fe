package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/ports"
)

const futureTaskColumns = `id, user_id, date, text, color, priority, status, completed, tags, created_at`

// futureTaskRow maps the TEXT[] tags column.
type futureTaskRow struct {
	entities.FutureTask
	Tags pq.StringArray `db:"tags"`
}

func (row *futureTaskRow) toEntity() *entities.FutureTask {
	task := row.FutureTask
	task.Tags = []string(row.Tags)
	if task.Tags == nil {
		task.Tags = []string{}
	}
	return &task
}

// FutureTaskRepositoryImpl implements the FutureTaskRepository interface
type FutureTaskRepositoryImpl struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewFutureTaskRepository creates a new future task repository
func NewFutureTaskRepository(db *sqlx.DB, log *logger.Logger) ports.FutureTaskRepository {
	if log == nil {
		log = logger.NewNop()
	}
	return &FutureTaskRepositoryImpl{db: db, logger: log.WithComponent("future_task_repository")}
}

func (r *FutureTaskRepositoryImpl) List(ctx context.Context, userID uuid.UUID, filter ports.DateFilter) (tasks []*entities.FutureTask, err error) {
	start := time.Now()
	defer func() { err = observe(r.logger, "future_tasks.list", start, err, entities.ErrFutureTaskNotFound) }()

	query, args, err := listQuery(futureTaskColumns, "future_tasks", userID, filter)
	if err != nil {
		return nil, err
	}

	var rows []futureTaskRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list future tasks: %w", err)
	}

	tasks = make([]*entities.FutureTask, 0, len(rows))
	for i := range rows {
		tasks = append(tasks, rows[i].toEntity())
	}
	return tasks, nil
}

func (r *FutureTaskRepositoryImpl) Create(ctx context.Context, task *entities.FutureTask) (err error) {
	start := time.Now()
	defer func() { err = observe(r.logger, "future_tasks.create", start, err, entities.ErrFutureTaskNotFound) }()

	if err := entities.ValidateDate(task.Date); err != nil {
		return err
	}
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}

	query := `
		INSERT INTO future_tasks (id, user_id, date, text, color, priority, status, completed, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	err = r.db.QueryRowContext(ctx, query,
		task.ID, task.UserID, task.Date, task.Text, task.Color, task.Priority,
		task.Status, task.Completed, pq.Array(task.Tags),
	).Scan(&task.CreatedAt)
	if err != nil {
		return fmt.Errorf("create future task: %w", err)
	}
	return nil
}

func (r *FutureTaskRepositoryImpl) Update(ctx context.Context, userID, id uuid.UUID, patch ports.FutureTaskPatch) (err error) {
	start := time.Now()
	defer func() { err = observe(r.logger, "future_tasks.update", start, err, entities.ErrFutureTaskNotFound) }()

	var b updateBuilder
	if patch.Text != nil {
		b.set("text", *patch.Text)
	}
	if patch.Color != nil {
		b.set("color", *patch.Color)
	}
	if patch.Priority != nil {
		b.set("priority", *patch.Priority)
	}
	if patch.Status != nil {
		b.set("status", *patch.Status)
	}
	if patch.Completed != nil {
		b.set("completed", *patch.Completed)
	}
	if patch.Tags != nil {
		b.set("tags", pq.Array(*patch.Tags))
	}
	if b.empty() {
		return nil
	}

	query, args := b.build("future_tasks", userID, id)
	return execAffectingOne(ctx, r.db, entities.ErrFutureTaskNotFound, query, args...)
}

func (r *FutureTaskRepositoryImpl) Delete(ctx context.Context, userID, id uuid.UUID) (err error) {
	start := time.Now()
	defer func() { err = observe(r.logger, "future_tasks.delete", start, err, entities.ErrFutureTaskNotFound) }()

	return execAffectingOne(ctx, r.db, entities.ErrFutureTaskNotFound,
		`DELETE FROM future_tasks WHERE id = $1 AND user_id = $2`, id, userID)
}
