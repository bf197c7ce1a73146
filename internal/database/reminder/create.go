package reminder

import (
	"context"
	"fmt"

	"github.com/groupcal/reminder-service/internal/database"
	"github.com/groupcal/reminder-service/internal/model"
)

func (*Repository) CreateReminder(ctx context.Context, q database.Queryable, reminder *model.ReminderCreate) (int64, error) {
	qb := database.PSQL.
		Insert(database.RemindersTable).
		Columns(
			"calendar_id",
			"object_id",
			"uid",
			"is_recurring",
			"recurrence_id",
			"is_recurrence_exception",
			"event_hash",
			"alarm_hash",
			"type",
			"is_relative",
			"notification_date",
			"is_repeat_based",
		).
		Values(
			reminder.CalendarID,
			reminder.ObjectID,
			reminder.UID,
			reminder.IsRecurring,
			reminder.RecurrenceID,
			reminder.IsRecurrenceException,
			reminder.EventHash,
			reminder.AlarmHash,
			string(reminder.Type),
			reminder.IsRelative,
			reminder.NotificationDate,
			reminder.IsRepeatBased,
		).
		Suffix("returning id")

	var id int64
	if err := q.Get(ctx, &id, qb); err != nil {
		return 0, fmt.Errorf("SQL request: %w", err)
	}

	return id, nil
}
