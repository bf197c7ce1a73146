package user

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
		"uid",
		"principaluri",
		"displayname",
		"email",
		"push_token",
		"notify",
	).
	From(database.UsersTable)
