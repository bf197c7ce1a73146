package database

import sq "github.com/Masterminds/squirrel"

// PSQL - squirrel builder с postgres placeholder-ами.
var PSQL = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	RemindersTable       = "calendar_reminders"
	CalendarsTable       = "calendars"
	CalendarObjectsTable = "calendar_objects"
	UsersTable           = "users"
)
