package reminder

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/groupcal/reminder-service/internal/database"
	"github.com/groupcal/reminder-service/internal/model"
)

// GetDueReminders returns rows with notification_date <= now joined with the
// calendar and object context needed for dispatch, so a tick does not issue
// per-row lookups.
func (*Repository) GetDueReminders(ctx context.Context, q database.Queryable, now int64) ([]*model.DueReminder, error) {
	qb := database.PSQL.
		Select(
			"r.id",
			"r.calendar_id",
			"r.object_id",
			"r.uid",
			"r.is_recurring",
			"r.recurrence_id",
			"r.is_recurrence_exception",
			"r.event_hash",
			"r.alarm_hash",
			"r.type",
			"r.is_relative",
			"r.notification_date",
			"r.is_repeat_based",
			"c.displayname",
			"c.principaluri",
			"o.calendardata",
		).
		From(database.RemindersTable + " r").
		Join(database.CalendarsTable + " c on c.id = r.calendar_id").
		Join(database.CalendarObjectsTable + " o on o.id = r.object_id").
		Where(sq.LtOrEq{"r.notification_date": now})

	var dtos []*dueReminderDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.DueReminder, len(dtos))
	for i, d := range dtos {
		res[i] = mapToDueReminder(d)
	}

	return res, nil
}

func (*Repository) GetRemindersForObject(ctx context.Context, q database.Queryable, objectID int64) ([]*model.Reminder, error) {
	qb := baseQuery.
		Where(sq.Eq{"object_id": objectID})

	var dtos []*reminderDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.Reminder, len(dtos))
	for i, d := range dtos {
		res[i] = mapToReminder(d)
	}

	return res, nil
}
