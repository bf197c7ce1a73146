package calendar

import (
	"github.com/groupcal/reminder-service/internal/database"
)

type Repository struct {
}

func NewRepository() *Repository {
	return &Repository{}
}

var baseQuery = database.PSQL.
	Select(
		"id",
		"displayname",
		"principaluri",
		"timezone",
	).
	From(database.CalendarsTable)
