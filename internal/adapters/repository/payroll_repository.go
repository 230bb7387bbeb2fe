package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/database"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/ports"
)

// PayrollRepositoryImpl implements the PayrollRepository interface
type PayrollRepositoryImpl struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewPayrollRepository creates a new payroll repository
func NewPayrollRepository(db *sqlx.DB, log *logger.Logger) ports.PayrollRepository {
	if log == nil {
		log = logger.NewNop()
	}
	return &PayrollRepositoryImpl{db: db, logger: log.WithComponent("payroll_repository")}
}

func (r *PayrollRepositoryImpl) List(ctx context.Context, userID uuid.UUID) (records []*entities.PayrollRecord, err error) {
	start := time.Now()
	defer func() { err = observe(r.logger, "payroll.list", start, err, nil) }()

	query := `
		SELECT id, user_id, date, amount, days_worked, created_at
		FROM payroll_history
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC`

	records = []*entities.PayrollRecord{}
	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, fmt.Errorf("list payroll history: %w", err)
	}
	return records, nil
}

func (r *PayrollRepositoryImpl) CloseCycle(ctx context.Context, record *entities.PayrollRecord) (err error) {
	start := time.Now()
	defer func() { err = observe(r.logger, "payroll.close_cycle", start, err, nil) }()

	return database.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := insertPayroll(ctx, tx, record); err != nil {
			return err
		}

		query := `
			INSERT INTO work_tracking (user_id, start_date, days_worked, updated_at)
			VALUES ($1, NULL, 0, CURRENT_TIMESTAMP)
			ON CONFLICT (user_id) DO UPDATE
			SET start_date = NULL, days_worked = 0, updated_at = CURRENT_TIMESTAMP`

		if _, err := tx.ExecContext(ctx, query, record.UserID); err != nil {
			return fmt.Errorf("reset work tracking: %w", err)
		}
		return nil
	})
}

func insertPayroll(ctx context.Context, q sqlx.QueryerContext, record *entities.PayrollRecord) error {
	if err := entities.ValidateDate(record.Date); err != nil {
		return err
	}
	if record.Amount < 0 {
		return fmt.Errorf("%w: amount must not be negative", entities.ErrInvalidInput)
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	query := `
		INSERT INTO payroll_history (id, user_id, date, amount, days_worked)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := q.QueryRowxContext(ctx, query,
		record.ID, record.UserID, record.Date, record.Amount, record.DaysWorked,
	).Scan(&record.CreatedAt)
	if err != nil {
		return fmt.Errorf("create payroll record: %w", err)
	}
	return nil
}
