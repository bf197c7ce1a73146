package reminder

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/groupcal/reminder-service/internal/database"
	"github.com/jackc/pgx/v4"
)

// DeleteReminder is idempotent; deleting an absent row is not an error.
func (*Repository) DeleteReminder(ctx context.Context, q database.Queryable, id int64) error {
	qb := database.PSQL.
		Delete(database.RemindersTable).
		Where(sq.Eq{"id": id})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

// DeleteReminderReturning claims the row: only the caller that actually
// deleted it gets claimed == true, so two workers processing the same due
// set cannot both fire one reminder.
func (*Repository) DeleteReminderReturning(ctx context.Context, q database.Queryable, id int64) (bool, error) {
	qb := database.PSQL.
		Delete(database.RemindersTable).
		Where(sq.Eq{"id": id}).
		Suffix("returning id")

	var deleted int64
	if err := q.Get(ctx, &deleted, qb); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("SQL request: %w", err)
	}

	return true, nil
}

func (*Repository) DeleteRemindersForObject(ctx context.Context, q database.Queryable, objectID int64) error {
	qb := database.PSQL.
		Delete(database.RemindersTable).
		Where(sq.Eq{"object_id": objectID})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

func (*Repository) DeleteRemindersForCalendar(ctx context.Context, q database.Queryable, calendarID int64) error {
	qb := database.PSQL.
		Delete(database.RemindersTable).
		Where(sq.Eq{"calendar_id": calendarID})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}
