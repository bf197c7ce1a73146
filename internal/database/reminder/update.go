package reminder

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/groupcal/reminder-service/internal/database"
)

// UpdateReminder reschedules a row in place, keeping its identity. Rows
// only move forward: an update to an earlier or equal date is a no-op.
func (*Repository) UpdateReminder(ctx context.Context, q database.Queryable, id int64, notificationDate int64) error {
	qb := database.PSQL.
		Update(database.RemindersTable).
		Set("notification_date", notificationDate).
		Where(sq.Eq{"id": id}).
		Where(sq.Lt{"notification_date": notificationDate})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}
