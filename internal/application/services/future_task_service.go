package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/daybook/core/internal/adapters/localstore"
	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/ports"
)

// FutureTaskService handles future task operations. Date-scoped lists are
// cached; when the remote read fails they fall back to tasks still pending in
// the local store.
type FutureTaskService struct {
	tasks  ports.FutureTaskRepository
	cache  ports.CacheRepository
	writer *SyncWriter
	ttl    time.Duration
	now    func() time.Time
	logger *logger.Logger
}

// NewFutureTaskService creates a new future task service
func NewFutureTaskService(tasks ports.FutureTaskRepository, cache ports.CacheRepository, writer *SyncWriter, ttl time.Duration, log *logger.Logger) *FutureTaskService {
	if log == nil {
		log = logger.NewNop()
	}
	return &FutureTaskService{
		tasks:  tasks,
		cache:  cache,
		writer: writer,
		ttl:    ttl,
		now:    time.Now,
		logger: log.WithComponent("future_task_service"),
	}
}

var _ ports.FutureTaskService = (*FutureTaskService)(nil)

func futureTasksCacheKey(userID uuid.UUID, date string) string {
	return "future_tasks_" + userID.String() + "_" + date
}

func (s *FutureTaskService) List(ctx context.Context, userID uuid.UUID, filter ports.DateFilter) ([]*entities.FutureTask, error) {
	if filter.Date == nil {
		tasks, err := s.tasks.List(ctx, userID, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to list future tasks: %w", err)
		}
		return tasks, nil
	}

	date := *filter.Date
	if err := entities.ValidateDate(date); err != nil {
		return nil, err
	}

	key := futureTasksCacheKey(userID, date)
	var cached []*entities.FutureTask
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, entities.ErrCacheMiss) {
		s.logger.Warnw("Cache lookup failed", "key", key, "error", err)
	}

	tasks, err := s.tasks.List(ctx, userID, filter)
	if err != nil {
		if entities.KindOf(err) == entities.KindInvalid {
			return nil, err
		}

		local, localErr := s.localTasks(ctx, userID, date)
		if localErr != nil {
			s.logger.Errorw("Local fallback read failed", "user_id", userID, "date", date, "error", localErr)
			return nil, fmt.Errorf("failed to list future tasks: %w", err)
		}
		s.logger.Warnw("Serving future tasks from local fallback", "user_id", userID, "date", date, "count", len(local), "error", err)
		return local, nil
	}

	if err := s.cache.Set(ctx, key, tasks, s.ttl); err != nil {
		s.logger.Warnw("Failed to cache future tasks", "key", key, "error", err)
	}
	return tasks, nil
}

// localTasks decodes the tasks created while the remote store was unreachable.
func (s *FutureTaskService) localTasks(ctx context.Context, userID uuid.UUID, date string) ([]*entities.FutureTask, error) {
	pending, err := s.writer.Pending(ctx, localstore.FutureTasksKey(userID.String(), date))
	if err != nil {
		return nil, err
	}

	tasks := []*entities.FutureTask{}
	for _, p := range pending {
		if p.Op != "create" {
			continue
		}
		var task entities.FutureTask
		if err := json.Unmarshal(p.Payload, &task); err != nil {
			return nil, fmt.Errorf("decode pending future task: %w", err)
		}
		tasks = append(tasks, &task)
	}
	return tasks, nil
}

func (s *FutureTaskService) Create(ctx context.Context, userID uuid.UUID, req ports.CreateFutureTaskRequest) (*entities.FutureTask, ports.WriteResult, error) {
	if err := entities.ValidateDate(req.Date); err != nil {
		return nil, ports.WriteResult{}, err
	}

	task := &entities.FutureTask{
		ID:        uuid.New(),
		UserID:    userID,
		Date:      req.Date,
		Text:      req.Text,
		Color:     req.Color,
		Priority:  req.Priority,
		Status:    req.Status,
		Completed: req.Completed,
		Tags:      req.Tags,
		CreatedAt: s.now(),
	}
	if task.Priority == "" {
		task.Priority = entities.PriorityMedium
	}
	if task.Status == "" {
		task.Status = entities.StatusPlanning
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}
	if !task.Priority.IsValid() || !task.Status.IsValid() {
		return nil, ports.WriteResult{}, fmt.Errorf("%w: invalid priority or status", entities.ErrInvalidInput)
	}

	result, err := s.writer.Write(ctx, userID, "create",
		func(ctx context.Context) error { return s.tasks.Create(ctx, task) },
		localstore.FutureTasksKey(userID.String(), task.Date), task,
	)
	if err != nil {
		return nil, result, err
	}

	if result.Saved() {
		s.logger.LogUserAction(userID.String(), "future_task_created", map[string]interface{}{
			"task_id": task.ID.String(),
			"date":    task.Date,
		})
	}
	return task, result, nil
}

func (s *FutureTaskService) Update(ctx context.Context, userID, id uuid.UUID, patch ports.FutureTaskPatch) (ports.WriteResult, error) {
	if patch.IsEmpty() {
		return ports.WriteResult{}, fmt.Errorf("%w: nothing to update", entities.ErrInvalidInput)
	}
	if patch.Priority != nil && !patch.Priority.IsValid() {
		return ports.WriteResult{}, fmt.Errorf("%w: unknown priority %q", entities.ErrInvalidInput, *patch.Priority)
	}
	if patch.Status != nil && !patch.Status.IsValid() {
		return ports.WriteResult{}, fmt.Errorf("%w: unknown status %q", entities.ErrInvalidInput, *patch.Status)
	}

	payload := struct {
		ID    uuid.UUID             `json:"id"`
		Patch ports.FutureTaskPatch `json:"patch"`
	}{id, patch}

	return s.writer.Write(ctx, userID, "update",
		func(ctx context.Context) error { return s.tasks.Update(ctx, userID, id, patch) },
		localstore.FutureTasksKey(userID.String(), "pending"), payload,
	)
}

func (s *FutureTaskService) Delete(ctx context.Context, userID, id uuid.UUID) (ports.WriteResult, error) {
	payload := struct {
		ID uuid.UUID `json:"id"`
	}{id}

	return s.writer.Write(ctx, userID, "delete",
		func(ctx context.Context) error { return s.tasks.Delete(ctx, userID, id) },
		localstore.FutureTasksKey(userID.String(), "pending"), payload,
	)
}
