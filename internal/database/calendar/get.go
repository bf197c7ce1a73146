package calendar

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/groupcal/reminder-service/internal/database"
	"github.com/groupcal/reminder-service/internal/model"
)

type calendarDTO struct {
	ID           int64
	Displayname  string
	Principaluri string
	Timezone     string
}

func (*Repository) GetCalendarByID(ctx context.Context, q database.Queryable, id int64) (*model.Calendar, error) {
	qb := baseQuery.
		Where(sq.Eq{"id": id})

	var dtos []*calendarDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	if len(dtos) == 0 {
		return nil, model.ErrNoRecord
	}

	d := dtos[0]
	return &model.Calendar{
		ID:           d.ID,
		DisplayName:  d.Displayname,
		PrincipalURI: d.Principaluri,
		Timezone:     d.Timezone,
	}, nil
}
