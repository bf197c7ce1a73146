package reminder

import "github.com/groupcal/reminder-service/internal/database"

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

var baseQuery = database.PSQL.
	Select(
		"id",
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
	From(database.RemindersTable)
