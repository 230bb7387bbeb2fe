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

// WorkService tracks attendance toward the payroll threshold. The attendance
// notes since the last payroll are the source of truth; the stored
// work_tracking counter is resynced whenever it drifts.
type WorkService struct {
	notes    ports.NoteRepository
	payroll  ports.PayrollRepository
	tracking ports.WorkTrackingRepository
	writer   *SyncWriter
	now      func() time.Time
	logger   *logger.Logger
}

// NewWorkService creates a new work service
func NewWorkService(notes ports.NoteRepository, payroll ports.PayrollRepository, tracking ports.WorkTrackingRepository, writer *SyncWriter, log *logger.Logger) *WorkService {
	if log == nil {
		log = logger.NewNop()
	}
	return &WorkService{
		notes:    notes,
		payroll:  payroll,
		tracking: tracking,
		writer:   writer,
		now:      time.Now,
		logger:   log.WithComponent("work_service"),
	}
}

var _ ports.WorkService = (*WorkService)(nil)

// cycle is the recounted state of the current payroll cycle.
type cycle struct {
	daysWorked int
	firstDay   string
	lastDay    string
	state      *entities.WorkTrackingState
}

func (s *WorkService) currentCycle(ctx context.Context, userID uuid.UUID) (*cycle, error) {
	notes, err := s.notes.List(ctx, userID, ports.DateFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	history, err := s.payroll.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll history: %w", err)
	}
	state, err := s.tracking.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get work tracking: %w", err)
	}

	records := make([]entities.PayrollRecord, 0, len(history))
	for _, p := range history {
		records = append(records, *p)
	}
	since := entities.CycleStart(records)

	byDate := make(map[string][]entities.Note)
	firstDay, lastDay := "", ""
	for _, n := range notes {
		byDate[n.Date] = append(byDate[n.Date], *n)
		if n.Type != entities.NoteTypeAttendance || n.Date <= since {
			continue
		}
		if firstDay == "" || n.Date < firstDay {
			firstDay = n.Date
		}
		if n.Date > lastDay {
			lastDay = n.Date
		}
	}

	return &cycle{
		daysWorked: entities.CountAttendance(byDate, since),
		firstDay:   firstDay,
		lastDay:    lastDay,
		state:      state,
	}, nil
}

// Status recounts the cycle and resyncs the stored counter if it drifted.
func (s *WorkService) Status(ctx context.Context, userID uuid.UUID) (*entities.WorkStatus, error) {
	c, err := s.currentCycle(ctx, userID)
	if err != nil {
		return nil, err
	}

	state := s.resync(ctx, userID, c)
	status := entities.NewWorkStatus(c.daysWorked, state)
	return &status, nil
}

func (s *WorkService) resync(ctx context.Context, userID uuid.UUID, c *cycle) *entities.WorkTrackingState {
	state := c.state
	drifted := state == nil || state.DaysWorked != c.daysWorked ||
		(state.StartDate == nil && c.firstDay != "")
	if !drifted {
		return state
	}

	updated := &entities.WorkTrackingState{UserID: userID, DaysWorked: c.daysWorked}
	if state != nil && state.StartDate != nil && c.daysWorked > 0 {
		updated.StartDate = state.StartDate
	} else if c.firstDay != "" {
		first := c.firstDay
		updated.StartDate = &first
	}

	if err := s.tracking.Upsert(ctx, updated); err != nil {
		s.logger.Warnw("Failed to resync work tracking counter", "user_id", userID, "error", err)
		return state
	}

	stored := 0
	if state != nil {
		stored = state.DaysWorked
	}
	s.logger.Infow("Resynced work tracking counter", "user_id", userID, "stored", stored, "counted", c.daysWorked)
	return updated
}

// ConfirmPayroll records a payout once the threshold is reached and starts a
// new cycle.
func (s *WorkService) ConfirmPayroll(ctx context.Context, userID uuid.UUID, req ports.ConfirmPayrollRequest) (*entities.PayrollRecord, ports.WriteResult, error) {
	if req.Amount < 0 {
		return nil, ports.WriteResult{}, fmt.Errorf("%w: amount must not be negative", entities.ErrInvalidInput)
	}

	date := req.Date
	if date == "" {
		date = entities.Today(s.now())
	}
	if err := entities.ValidateDate(date); err != nil {
		return nil, ports.WriteResult{}, err
	}

	c, err := s.currentCycle(ctx, userID)
	if err != nil {
		return nil, ports.WriteResult{}, err
	}
	if c.daysWorked < entities.PayrollThreshold {
		return nil, ports.WriteResult{}, fmt.Errorf("%w: %d of %d days", entities.ErrThresholdNotReached, c.daysWorked, entities.PayrollThreshold)
	}

	// The payroll date becomes the next cycle start, so it must cover every
	// attendance day being paid and must not reach past them into the future.
	if date < c.lastDay {
		return nil, ports.WriteResult{}, fmt.Errorf("%w: payroll date %s precedes attendance on %s", entities.ErrInvalidInput, date, c.lastDay)
	}
	if latest := entities.Today(s.now()); date > latest && date > c.lastDay {
		return nil, ports.WriteResult{}, fmt.Errorf("%w: payroll date %s is in the future", entities.ErrInvalidInput, date)
	}

	record := &entities.PayrollRecord{
		ID:         uuid.New(),
		UserID:     userID,
		Date:       date,
		Amount:     req.Amount,
		DaysWorked: c.daysWorked,
		CreatedAt:  s.now(),
	}

	result, err := s.writer.Write(ctx, userID, "confirm_payroll",
		func(ctx context.Context) error { return s.payroll.CloseCycle(ctx, record) },
		localstore.PayrollKey(userID.String()), record,
	)
	if err != nil {
		return nil, result, err
	}

	if result.Saved() {
		s.logger.LogUserAction(userID.String(), "payroll_confirmed", map[string]interface{}{
			"amount":      record.Amount,
			"days_worked": record.DaysWorked,
		})
	}
	return record, result, nil
}

func (s *WorkService) History(ctx context.Context, userID uuid.UUID) ([]*entities.PayrollRecord, error) {
	history, err := s.payroll.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll history: %w", err)
	}
	return history, nil
}
