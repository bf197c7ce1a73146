package reminder

import (
	"github.com/groupcal/reminder-service/internal/model"
)

type reminderDTO struct {
	ID                    int64
	CalendarID            int64
	ObjectID              int64
	UID                   string
	IsRecurring           bool
	RecurrenceID          int64
	IsRecurrenceException bool
	EventHash             string
	AlarmHash             string
	ReminderType          string `db:"type"`
	IsRelative            bool
	NotificationDate      int64
	IsRepeatBased         bool
}

type dueReminderDTO struct {
	reminderDTO
	Displayname  string
	Principaluri string
	Calendardata string
}

func mapToReminder(dto *reminderDTO) *model.Reminder {
	return &model.Reminder{
		ID: dto.ID,
		ReminderCreate: model.ReminderCreate{
			CalendarID:            dto.CalendarID,
			ObjectID:              dto.ObjectID,
			UID:                   dto.UID,
			IsRecurring:           dto.IsRecurring,
			RecurrenceID:          dto.RecurrenceID,
			IsRecurrenceException: dto.IsRecurrenceException,
			EventHash:             dto.EventHash,
			AlarmHash:             dto.AlarmHash,
			Type:                  model.NotificationType(dto.ReminderType),
			IsRelative:            dto.IsRelative,
			NotificationDate:      dto.NotificationDate,
			IsRepeatBased:         dto.IsRepeatBased,
		},
	}
}

func mapToDueReminder(dto *dueReminderDTO) *model.DueReminder {
	return &model.DueReminder{
		Reminder:            *mapToReminder(&dto.reminderDTO),
		CalendarDisplayName: dto.Displayname,
		PrincipalURI:        dto.Principaluri,
		CalendarData:        dto.Calendardata,
	}
}
