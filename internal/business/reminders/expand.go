package reminders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/groupcal/reminder-service/internal/ical"
	"github.com/groupcal/reminder-service/internal/model"
)

type alarmKey struct {
	eventHash string
	alarmHash string
}

// OnCalendarObjectChange reconciles the stored reminders of one calendar
// object with its current VALARM definitions. It is invoked synchronously
// by the calendar backend's mutation handler for every create, update and
// delete.
func (s *Service) OnCalendarObjectChange(ctx context.Context, change *model.ObjectChange) error {
	if !strings.EqualFold(change.Component, "VEVENT") {
		return nil
	}

	if change.Action == model.ChangeActionDelete {
		if err := s.reminders.DeleteRemindersForObject(ctx, s.db, change.ObjectID); err != nil {
			return fmt.Errorf("remindersRepository.DeleteRemindersForObject: %w", err)
		}
		return nil
	}

	loc := s.locationFor(ctx, change.CalendarID)

	set, err := ical.ParseEvents(change.CalendarData, loc)
	if err != nil {
		s.logger.Warnw("skipping unparseable calendar object",
			"object", change.ObjectID,
			"err", err,
		)
		return nil
	}
	for _, w := range set.Warnings {
		s.logger.Warnw("calendar object parse warning", "object", change.ObjectID, "warning", w)
	}

	desired := s.computeReminders(set, change, loc, s.clock.Now())

	existing, err := s.reminders.GetRemindersForObject(ctx, s.db, change.ObjectID)
	if err != nil {
		return fmt.Errorf("remindersRepository.GetRemindersForObject: %w", err)
	}

	// Rows whose alarm definition still matches keep their stored
	// scheduling, so an unrelated edit does not reset an already advanced
	// recurring reminder. Everything else is stale and goes away.
	kept := map[alarmKey]struct{}{}
	for _, r := range existing {
		key := alarmKey{eventHash: r.EventHash, alarmHash: r.AlarmHash}
		if _, ok := desired[key]; ok {
			kept[key] = struct{}{}
			continue
		}

		if err := s.reminders.DeleteReminder(ctx, s.db, r.ID); err != nil {
			return fmt.Errorf("remindersRepository.DeleteReminder: %w", err)
		}
	}

	for key, rows := range desired {
		if _, ok := kept[key]; ok {
			continue
		}

		for _, row := range rows {
			if _, err := s.reminders.CreateReminder(ctx, s.db, row); err != nil {
				return fmt.Errorf("remindersRepository.CreateReminder: %w", err)
			}
		}
	}

	return nil
}

// OnCalendarDeleted drops every reminder of a deleted calendar.
func (s *Service) OnCalendarDeleted(ctx context.Context, calendarID int64) error {
	if err := s.reminders.DeleteRemindersForCalendar(ctx, s.db, calendarID); err != nil {
		return fmt.Errorf("remindersRepository.DeleteRemindersForCalendar: %w", err)
	}

	return nil
}

// computeReminders turns the parsed object into the rows that should exist,
// grouped by (event fingerprint, alarm fingerprint). A malformed or
// unrecognized alarm never aborts its siblings.
func (s *Service) computeReminders(set *ical.EventSet, change *model.ObjectChange, loc *time.Location, now time.Time) map[alarmKey][]*model.ReminderCreate {
	res := map[alarmKey][]*model.ReminderCreate{}
	overridden := set.OverriddenTimes()

	events := make([]*ical.Event, 0, len(set.Overrides)+1)
	if set.Master != nil {
		events = append(events, set.Master)
	}
	events = append(events, set.Overrides...)

	for _, e := range events {
		eventHash := e.Hash()

		for _, a := range e.Alarms {
			if !model.NotificationType(a.Action).Valid() {
				s.logger.Warnw("skipping alarm with unrecognized action",
					"object", change.ObjectID,
					"action", a.Action,
				)
				continue
			}

			var skip map[int64]struct{}
			if !e.IsOverride {
				skip = overridden
			}

			occ, trigger, ok, err := e.NextTrigger(a, loc, now, time.Time{}, skip)
			if err != nil {
				s.logger.Warnw("skipping alarm", "object", change.ObjectID, "err", err)
				continue
			}
			if !ok {
				// Rule exhausted: no occurrence left to remind about.
				continue
			}

			key := alarmKey{eventHash: eventHash, alarmHash: a.Hash()}
			res[key] = append(res[key], reminderRows(change, e, a, occ, trigger, key)...)
		}
	}

	return res
}

// reminderRows materializes the primary trigger and, when the alarm carries
// a REPEAT/DURATION clause, all its repeat ticks. Repeat chains are bounded
// by REPEAT so eager materialization is safe, unlike recurrence.
func reminderRows(change *model.ObjectChange, e *ical.Event, a *ical.Alarm, occ, trigger time.Time, key alarmKey) []*model.ReminderCreate {
	// An override is looked up again at dispatch by the recurrence id it
	// declares, not by its possibly moved start.
	recurrenceID := occ
	if e.IsOverride {
		recurrenceID = e.RecurrenceID
	}

	base := model.ReminderCreate{
		CalendarID:            change.CalendarID,
		ObjectID:              change.ObjectID,
		UID:                   e.UID,
		IsRecurring:           e.Recurring(),
		RecurrenceID:          recurrenceID.Unix(),
		IsRecurrenceException: e.IsOverride,
		EventHash:             key.eventHash,
		AlarmHash:             key.alarmHash,
		Type:                  model.NotificationType(a.Action),
		IsRelative:            a.IsRelative,
		NotificationDate:      trigger.Unix(),
		IsRepeatBased:         false,
	}

	rows := make([]*model.ReminderCreate, 0, a.Repeat+1)
	rows = append(rows, &base)
	for k := 1; k <= a.Repeat; k++ {
		tick := base
		tick.IsRepeatBased = true
		tick.NotificationDate = trigger.Add(time.Duration(k) * a.RepeatDelay).Unix()
		rows = append(rows, &tick)
	}

	return rows
}
