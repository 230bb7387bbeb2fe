package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/ports"
)

// listQuery builds a user-scoped SELECT ordered oldest first. Rows are
// always returned in creation order.
func listQuery(columns, table string, userID uuid.UUID, filter ports.DateFilter) (string, []interface{}, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}

	if filter.Date != nil {
		if err := entities.ValidateDate(*filter.Date); err != nil {
			return "", nil, err
		}
		args = append(args, *filter.Date)
		conditions = append(conditions, fmt.Sprintf("date = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY created_at ASC, id ASC`,
		columns, table, strings.Join(conditions, " AND "))

	return query, args, nil
}

// updateBuilder collects SET assignments for a partial update.
type updateBuilder struct {
	sets []string
	args []interface{}
}

func (b *updateBuilder) set(column string, value interface{}) {
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

func (b *updateBuilder) empty() bool {
	return len(b.sets) == 0
}

// build renders an UPDATE restricted to one row owned by userID.
func (b *updateBuilder) build(table string, userID, id uuid.UUID) (string, []interface{}) {
	args := append(b.args, id, userID)
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d AND user_id = $%d`,
		table, strings.Join(b.sets, ", "), len(args)-1, len(args))
	return query, args
}

// observe logs a gateway call and converts its error into a GatewayError.
func observe(log *logger.Logger, op string, start time.Time, err error, notFound error) error {
	log.LogDatabaseQuery(op, float64(time.Since(start).Microseconds())/1000, err)
	return entities.NewGatewayError(op, err, notFound)
}
