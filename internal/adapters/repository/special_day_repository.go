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

// SpecialDayRepositoryImpl implements the SpecialDayRepository interface
type SpecialDayRepositoryImpl struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewSpecialDayRepository creates a new special day repository
func NewSpecialDayRepository(db *sqlx.DB, log *logger.Logger) ports.SpecialDayRepository {
	if log == nil {
		log = logger.NewNop()
	}
	return &SpecialDayRepositoryImpl{db: db, logger: log.WithComponent("special_day_repository")}
}

func (r *SpecialDayRepositoryImpl) List(ctx context.Context, userID uuid.UUID) (days []*entities.SpecialDay, err error) {
	start := time.Now()
	defer func() { err = observe(r.logger, "special_days.list", start, err, nil) }()

	query := `
		SELECT user_id, date, type, created_at
		FROM special_days
		WHERE user_id = $1
		ORDER BY date ASC`

	days = []*entities.SpecialDay{}
	if err := r.db.SelectContext(ctx, &days, query, userID); err != nil {
		return nil, fmt.Errorf("list special days: %w", err)
	}
	return days, nil
}

func (r *SpecialDayRepositoryImpl) Upsert(ctx context.Context, day *entities.SpecialDay) (err error) {
	start := time.Now()
	defer func() { err = observe(r.logger, "special_days.upsert", start, err, nil) }()

	if err := entities.ValidateDate(day.Date); err != nil {
		return err
	}

	query := `
		INSERT INTO special_days (user_id, date, type)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, date) DO UPDATE SET type = EXCLUDED.type
		RETURNING created_at`

	if err := r.db.QueryRowContext(ctx, query, day.UserID, day.Date, day.Type).Scan(&day.CreatedAt); err != nil {
		return fmt.Errorf("upsert special day: %w", err)
	}
	return nil
}

func (r *SpecialDayRepositoryImpl) Delete(ctx context.Context, userID uuid.UUID, date string) (err error) {
	start := time.Now()
	defer func() { err = observe(r.logger, "special_days.delete", start, err, entities.ErrSpecialDayNotFound) }()

	return execAffectingOne(ctx, r.db, entities.ErrSpecialDayNotFound,
		`DELETE FROM special_days WHERE user_id = $1 AND date = $2`, userID, date)
}
