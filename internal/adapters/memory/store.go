// Package memory implements the gateway ports in process memory. It backs the
// "memory" database driver used for local development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/ports"
)

// Store holds every table. Rows are kept in insertion order, which is also
// created_at order.
type Store struct {
	mu sync.Mutex

	users        []*entities.User
	notes        []*entities.Note
	futureTasks  []*entities.FutureTask
	payroll      []*entities.PayrollRecord
	workTracking map[uuid.UUID]*entities.WorkTrackingState
	specialDays  map[uuid.UUID]map[string]*entities.SpecialDay

	now func() time.Time
}

// New creates an empty store. now may be nil.
func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		workTracking: make(map[uuid.UUID]*entities.WorkTrackingState),
		specialDays:  make(map[uuid.UUID]map[string]*entities.SpecialDay),
		now:          now,
	}
}

func (s *Store) Users() ports.UserRepository { return userRepo{s} }
func (s *Store) Notes() ports.NoteRepository { return noteRepo{s} }
func (s *Store) FutureTasks() ports.FutureTaskRepository { return futureTaskRepo{s} }
func (s *Store) Payroll() ports.PayrollRepository { return payrollRepo{s} }
func (s *Store) WorkTracking() ports.WorkTrackingRepository { return workTrackingRepo{s} }
func (s *Store) SpecialDays() ports.SpecialDayRepository { return specialDayRepo{s} }

func matches(filter ports.DateFilter, date string) bool {
	return filter.Date == nil || *filter.Date == date
}

func checkFilter(op string, filter ports.DateFilter) error {
	if filter.Date == nil {
		return nil
	}
	return entities.NewGatewayError(op, entities.ValidateDate(*filter.Date), nil)
}

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, user *entities.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return entities.ErrUserExists
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = r.s.now()
	stored := *user
	r.s.users = append(r.s.users, &stored)
	return nil
}

func (r userRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.ID == id {
			found := *u
			return &found, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email {
			found := *u
			return &found, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

type noteRepo struct{ s *Store }

func (r noteRepo) List(ctx context.Context, userID uuid.UUID, filter ports.DateFilter) ([]*entities.Note, error) {
	if err := checkFilter("notes.list", filter); err != nil {
		return nil, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	notes := []*entities.Note{}
	for _, n := range r.s.notes {
		if n.UserID == userID && matches(filter, n.Date) {
			c := *n
			notes = append(notes, &c)
		}
	}
	return notes, nil
}

func (r noteRepo) Create(ctx context.Context, note *entities.Note) error {
	if err := entities.ValidateDate(note.Date); err != nil {
		return entities.NewGatewayError("notes.create", err, nil)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	note.CreatedAt = r.s.now()
	stored := *note
	r.s.notes = append(r.s.notes, &stored)
	return nil
}

func (r noteRepo) Update(ctx context.Context, userID, id uuid.UUID, patch ports.NotePatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, n := range r.s.notes {
		if n.ID != id || n.UserID != userID {
			continue
		}
		if patch.Text != nil {
			n.Text = *patch.Text
		}
		if patch.Color != nil {
			n.Color = *patch.Color
		}
		if patch.Type != nil {
			n.Type = *patch.Type
		}
		if patch.Progress != nil {
			v := *patch.Progress
			n.Progress = &v
		}
		if patch.Completed != nil {
			v := *patch.Completed
			n.Completed = &v
		}
		if patch.Status != nil {
			v := *patch.Status
			n.Status = &v
		}
		return nil
	}
	return entities.NewGatewayError("notes.update", entities.ErrNoteNotFound, entities.ErrNoteNotFound)
}

func (r noteRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, n := range r.s.notes {
		if n.ID == id && n.UserID == userID {
			r.s.notes = append(r.s.notes[:i], r.s.notes[i+1:]...)
			return nil
		}
	}
	return entities.NewGatewayError("notes.delete", entities.ErrNoteNotFound, entities.ErrNoteNotFound)
}

type futureTaskRepo struct{ s *Store }

func copyTask(t *entities.FutureTask) *entities.FutureTask {
	c := *t
	c.Tags = append([]string{}, t.Tags...)
	return &c
}

func (r futureTaskRepo) List(ctx context.Context, userID uuid.UUID, filter ports.DateFilter) ([]*entities.FutureTask, error) {
	if err := checkFilter("future_tasks.list", filter); err != nil {
		return nil, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tasks := []*entities.FutureTask{}
	for _, t := range r.s.futureTasks {
		if t.UserID == userID && matches(filter, t.Date) {
			tasks = append(tasks, copyTask(t))
		}
	}
	return tasks, nil
}

func (r futureTaskRepo) Create(ctx context.Context, task *entities.FutureTask) error {
	if err := entities.ValidateDate(task.Date); err != nil {
		return entities.NewGatewayError("future_tasks.create", err, nil)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}
	task.CreatedAt = r.s.now()
	r.s.futureTasks = append(r.s.futureTasks, copyTask(task))
	return nil
}

func (r futureTaskRepo) Update(ctx context.Context, userID, id uuid.UUID, patch ports.FutureTaskPatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, t := range r.s.futureTasks {
		if t.ID != id || t.UserID != userID {
			continue
		}
		if patch.Text != nil {
			t.Text = *patch.Text
		}
		if patch.Color != nil {
			t.Color = *patch.Color
		}
		if patch.Priority != nil {
			t.Priority = *patch.Priority
		}
		if patch.Status != nil {
			t.Status = *patch.Status
		}
		if patch.Completed != nil {
			t.Completed = *patch.Completed
		}
		if patch.Tags != nil {
			t.Tags = append([]string{}, (*patch.Tags)...)
		}
		return nil
	}
	return entities.NewGatewayError("future_tasks.update", entities.ErrFutureTaskNotFound, entities.ErrFutureTaskNotFound)
}

func (r futureTaskRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, t := range r.s.futureTasks {
		if t.ID == id && t.UserID == userID {
			r.s.futureTasks = append(r.s.futureTasks[:i], r.s.futureTasks[i+1:]...)
			return nil
		}
	}
	return entities.NewGatewayError("future_tasks.delete", entities.ErrFutureTaskNotFound, entities.ErrFutureTaskNotFound)
}

type payrollRepo struct{ s *Store }

func (r payrollRepo) List(ctx context.Context, userID uuid.UUID) ([]*entities.PayrollRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	records := []*entities.PayrollRecord{}
	for _, p := range r.s.payroll {
		if p.UserID == userID {
			c := *p
			records = append(records, &c)
		}
	}
	return records, nil
}

func (r payrollRepo) CloseCycle(ctx context.Context, record *entities.PayrollRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.insert(record); err != nil {
		return err
	}
	r.s.workTracking[record.UserID] = &entities.WorkTrackingState{
		UserID:    record.UserID,
		UpdatedAt: r.s.now(),
	}
	return nil
}

func (r payrollRepo) insert(record *entities.PayrollRecord) error {
	if err := entities.ValidateDate(record.Date); err != nil {
		return entities.NewGatewayError("payroll.create", err, nil)
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.CreatedAt = r.s.now()
	stored := *record
	r.s.payroll = append(r.s.payroll, &stored)
	return nil
}

type workTrackingRepo struct{ s *Store }

func (r workTrackingRepo) Get(ctx context.Context, userID uuid.UUID) (*entities.WorkTrackingState, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	state, ok := r.s.workTracking[userID]
	if !ok {
		return nil, nil
	}
	c := *state
	return &c, nil
}

func (r workTrackingRepo) Upsert(ctx context.Context, state *entities.WorkTrackingState) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	state.UpdatedAt = r.s.now()
	c := *state
	r.s.workTracking[state.UserID] = &c
	return nil
}

type specialDayRepo struct{ s *Store }

func (r specialDayRepo) List(ctx context.Context, userID uuid.UUID) ([]*entities.SpecialDay, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	days := []*entities.SpecialDay{}
	for _, d := range r.s.specialDays[userID] {
		c := *d
		days = append(days, &c)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, nil
}

func (r specialDayRepo) Upsert(ctx context.Context, day *entities.SpecialDay) error {
	if err := entities.ValidateDate(day.Date); err != nil {
		return entities.NewGatewayError("special_days.upsert", err, nil)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	byDate, ok := r.s.specialDays[day.UserID]
	if !ok {
		byDate = make(map[string]*entities.SpecialDay)
		r.s.specialDays[day.UserID] = byDate
	}
	if existing, ok := byDate[day.Date]; ok {
		day.CreatedAt = existing.CreatedAt
	} else {
		day.CreatedAt = r.s.now()
	}
	c := *day
	byDate[day.Date] = &c
	return nil
}

func (r specialDayRepo) Delete(ctx context.Context, userID uuid.UUID, date string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.specialDays[userID][date]; !ok {
		return entities.NewGatewayError("special_days.delete", entities.ErrSpecialDayNotFound, entities.ErrSpecialDayNotFound)
	}
	delete(r.s.specialDays[userID], date)
	return nil
}
