package model

import "time"

type NotificationType string

const (
	NotificationTypeEmail   NotificationType = "EMAIL"
	NotificationTypeDisplay NotificationType = "DISPLAY"
	NotificationTypeAudio   NotificationType = "AUDIO"
	NotificationTypePush    NotificationType = "PUSH"
)

// Valid reports whether t is one of the recognized channel identifiers.
// Rows referencing anything else are a data integrity problem, not a
// configuration gap.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeEmail, NotificationTypeDisplay, NotificationTypeAudio, NotificationTypePush:
		return true
	default:
		return false
	}
}

type ReminderCreate struct {
	CalendarID            int64
	ObjectID              int64
	UID                   string
	IsRecurring           bool
	RecurrenceID          int64
	IsRecurrenceException bool
	EventHash             string
	AlarmHash             string
	Type                  NotificationType
	IsRelative            bool
	NotificationDate      int64
	IsRepeatBased         bool
}

type Reminder struct {
	ID int64
	ReminderCreate
}

// DueReminder is a reminder row joined with the calendar and object context
// needed for dispatch, so a tick does not fan out into per-row lookups.
type DueReminder struct {
	Reminder
	CalendarDisplayName string
	PrincipalURI        string
	CalendarData        string
}

// EventOccurrence is one concrete instance of an event, reconstructed from
// the stored calendar data for delivery to a notification provider.
type EventOccurrence struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	AllDay      bool
}

type ChangeAction string

const (
	ChangeActionCreate ChangeAction = "create"
	ChangeActionUpdate ChangeAction = "update"
	ChangeActionDelete ChangeAction = "delete"
)

// ObjectChange describes one calendar-object mutation reported by the
// calendar backend.
type ObjectChange struct {
	Action       ChangeAction
	ObjectID     int64
	CalendarID   int64
	CalendarData string
	Component    string
}
