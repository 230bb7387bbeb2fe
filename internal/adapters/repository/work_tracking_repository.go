package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/ports"
)

// WorkTrackingRepositoryImpl implements the WorkTrackingRepository interface
type WorkTrackingRepositoryImpl struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewWorkTrackingRepository creates a new work tracking repository
func NewWorkTrackingRepository(db *sqlx.DB, log *logger.Logger) ports.WorkTrackingRepository {
	if log == nil {
		log = logger.NewNop()
	}
	return &WorkTrackingRepositoryImpl{db: db, logger: log.WithComponent("work_tracking_repository")}
}

func (r *WorkTrackingRepositoryImpl) Get(ctx context.Context, userID uuid.UUID) (state *entities.WorkTrackingState, err error) {
	start := time.Now()
	defer func() { err = observe(r.logger, "work_tracking.get", start, err, nil) }()

	query := `
		SELECT user_id, start_date, days_worked, updated_at
		FROM work_tracking
		WHERE user_id = $1`

	var row entities.WorkTrackingState
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get work tracking: %w", err)
	}
	return &row, nil
}

func (r *WorkTrackingRepositoryImpl) Upsert(ctx context.Context, state *entities.WorkTrackingState) (err error) {
	start := time.Now()
	defer func() { err = observe(r.logger, "work_tracking.upsert", start, err, nil) }()

	if state.StartDate != nil {
		if err := entities.ValidateDate(*state.StartDate); err != nil {
			return err
		}
	}
	if state.DaysWorked < 0 {
		return fmt.Errorf("%w: days worked must not be negative", entities.ErrInvalidInput)
	}

	query := `
		INSERT INTO work_tracking (user_id, start_date, days_worked, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE
		SET start_date = EXCLUDED.start_date, days_worked = EXCLUDED.days_worked, updated_at = CURRENT_TIMESTAMP
		RETURNING updated_at`

	err = r.db.QueryRowContext(ctx, query, state.UserID, state.StartDate, state.DaysWorked).Scan(&state.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert work tracking: %w", err)
	}
	return nil
}
