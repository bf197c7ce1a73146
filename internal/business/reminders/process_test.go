package reminders

import (
	"context"
	"errors"
	"testing"

	"github.com/groupcal/reminder-service/internal/model"
)

func TestProcessRemindersFiresAndRemoves(t *testing.T) {
	t.Parallel()

	env := newTestEnv(ts(t, "2016-06-01 00:00:00"))

	data := icsObject(
		"BEGIN:VEVENT",
		"UID:event-1",
		"DTSTART:20160609T000000Z",
		"DTEND:20160609T010000Z",
		"SUMMARY:Team standup",
		"BEGIN:VALARM",
		"ACTION:EMAIL",
		"TRIGGER:-PT15M",
		"END:VALARM",
		"END:VEVENT",
	)
	change := &model.ObjectChange{
		Action: model.ChangeActionCreate, ObjectID: 42, CalendarID: 1337,
		Component: "VEVENT", CalendarData: data,
	}
	if err := env.service.OnCalendarObjectChange(context.Background(), change); err != nil {
		t.Fatalf("setup error: %v", err)
	}
	env.store.calendarData[42] = data

	// Before the trigger nothing is due.
	if err := env.service.ProcessReminders(context.Background()); err != nil {
		t.Fatalf("ProcessReminders error: %v", err)
	}
	if len(env.emailSink.sends) != 0 {
		t.Fatal("nothing should fire before the trigger time")
	}

	env.clock.now = ts(t, "2016-06-09 00:00:00")
	if err := env.service.ProcessReminders(context.Background()); err != nil {
		t.Fatalf("ProcessReminders error: %v", err)
	}

	if len(env.emailSink.sends) != 1 {
		t.Fatalf("sends = %d, want 1", len(env.emailSink.sends))
	}
	sent := env.emailSink.sends[0]
	if sent.occurrence.Summary != "Team standup" {
		t.Errorf("occurrence summary = %q", sent.occurrence.Summary)
	}
	if got := sent.occurrence.Start.Unix(); got != 1465430400 {
		t.Errorf("occurrence start = %d, want 1465430400", got)
	}
	if sent.calendar != "Personal" || sent.user.Email != "alice@example.com" {
		t.Errorf("unexpected dispatch context: %q %q", sent.calendar, sent.user.Email)
	}

	if rows := env.store.all(); len(rows) != 0 {
		t.Fatalf("rows after firing = %d, want none", len(rows))
	}
	if env.locks.acquired != 2 || env.locks.released != 2 {
		t.Errorf("lock usage = %d/%d, want 2/2", env.locks.acquired, env.locks.released)
	}
}

func TestProcessRemindersAdvancesRecurring(t *testing.T) {
	t.Parallel()

	env := newTestEnv(ts(t, "2025-01-05 08:00:00"))

	data := icsObject(
		"BEGIN:VEVENT",
		"UID:rec-1",
		"DTSTART:20250101T090000Z",
		"DTEND:20250101T093000Z",
		"SUMMARY:Daily sync",
		"RRULE:FREQ=DAILY",
		"BEGIN:VALARM",
		"ACTION:EMAIL",
		"TRIGGER:-PT15M",
		"END:VALARM",
		"END:VEVENT",
	)
	change := &model.ObjectChange{
		Action: model.ChangeActionCreate, ObjectID: 42, CalendarID: 1337,
		Component: "VEVENT", CalendarData: data,
	}
	if err := env.service.OnCalendarObjectChange(context.Background(), change); err != nil {
		t.Fatalf("setup error: %v", err)
	}
	env.store.calendarData[42] = data

	firedID := env.store.all()[0].ID

	env.clock.now = ts(t, "2025-01-05 09:00:00")
	if err := env.service.ProcessReminders(context.Background()); err != nil {
		t.Fatalf("ProcessReminders error: %v", err)
	}

	if len(env.emailSink.sends) != 1 {
		t.Fatalf("sends = %d, want 1", len(env.emailSink.sends))
	}
	if want := ts(t, "2025-01-05 09:00:00"); !env.emailSink.sends[0].occurrence.Start.Equal(want) {
		t.Errorf("occurrence start = %v, want %v", env.emailSink.sends[0].occurrence.Start, want)
	}

	// The fired row is replaced by exactly one successor at the next
	// occurrence, keeping a single pending row per alarm.
	rows := env.store.all()
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	next := rows[0]
	if next.ID == firedID {
		t.Error("successor must be a new row")
	}
	if want := ts(t, "2025-01-06 08:45:00").Unix(); next.NotificationDate != want {
		t.Errorf("successor NotificationDate = %d, want %d", next.NotificationDate, want)
	}
	if want := ts(t, "2025-01-06 09:00:00").Unix(); next.RecurrenceID != want {
		t.Errorf("successor RecurrenceID = %d, want %d", next.RecurrenceID, want)
	}
	if !next.IsRecurring || next.IsRepeatBased {
		t.Errorf("unexpected successor flags: %+v", next)
	}
}

func TestProcessRemindersLastOccurrenceEndsChain(t *testing.T) {
	t.Parallel()

	env := newTestEnv(ts(t, "2025-01-05 08:00:00"))

	data := icsObject(
		"BEGIN:VEVENT",
		"UID:rec-1",
		"DTSTART:20250101T090000Z",
		"DTEND:20250101T093000Z",
		"RRULE:FREQ=DAILY;UNTIL=20250105T090000Z",
		"BEGIN:VALARM",
		"ACTION:EMAIL",
		"TRIGGER:-PT15M",
		"END:VALARM",
		"END:VEVENT",
	)
	change := &model.ObjectChange{
		Action: model.ChangeActionCreate, ObjectID: 42, CalendarID: 1337,
		Component: "VEVENT", CalendarData: data,
	}
	if err := env.service.OnCalendarObjectChange(context.Background(), change); err != nil {
		t.Fatalf("setup error: %v", err)
	}
	env.store.calendarData[42] = data

	env.clock.now = ts(t, "2025-01-05 09:00:00")
	if err := env.service.ProcessReminders(context.Background()); err != nil {
		t.Fatalf("ProcessReminders error: %v", err)
	}

	if len(env.emailSink.sends) != 1 {
		t.Fatalf("sends = %d, want 1", len(env.emailSink.sends))
	}
	if rows := env.store.all(); len(rows) != 0 {
		t.Fatalf("rows after final occurrence = %d, want none", len(rows))
	}
}

func TestProcessRemindersRepeatTicks(t *testing.T) {
	t.Parallel()

	env := newTestEnv(ts(t, "2016-06-01 00:00:00"))

	data := icsObject(
		"BEGIN:VEVENT",
		"UID:event-1",
		"DTSTART:20160609T000000Z",
		"BEGIN:VALARM",
		"ACTION:EMAIL",
		"TRIGGER:-PT15M",
		"REPEAT:2",
		"DURATION:PT2M",
		"END:VALARM",
		"END:VEVENT",
	)
	change := &model.ObjectChange{
		Action: model.ChangeActionCreate, ObjectID: 42, CalendarID: 1337,
		Component: "VEVENT", CalendarData: data,
	}
	if err := env.service.OnCalendarObjectChange(context.Background(), change); err != nil {
		t.Fatalf("setup error: %v", err)
	}
	env.store.calendarData[42] = data

	// At the primary trigger only the first row is due.
	env.clock.now = ts(t, "2016-06-08 23:45:00")
	if err := env.service.ProcessReminders(context.Background()); err != nil {
		t.Fatalf("ProcessReminders error: %v", err)
	}
	if len(env.emailSink.sends) != 1 {
		t.Fatalf("sends = %d, want 1", len(env.emailSink.sends))
	}
	if rows := env.store.all(); len(rows) != 2 {
		t.Fatalf("remaining ticks = %d, want 2", len(rows))
	}

	// The ticks fire as their own rows and never spawn successors.
	env.clock.now = ts(t, "2016-06-08 23:49:00")
	if err := env.service.ProcessReminders(context.Background()); err != nil {
		t.Fatalf("ProcessReminders error: %v", err)
	}
	if len(env.emailSink.sends) != 3 {
		t.Fatalf("sends = %d, want 3", len(env.emailSink.sends))
	}
	if rows := env.store.all(); len(rows) != 0 {
		t.Fatalf("rows after all ticks = %d, want none", len(rows))
	}
}

func TestProcessRemindersLockHeld(t *testing.T) {
	t.Parallel()

	env := newTestEnv(ts(t, "2016-06-09 00:00:00"))
	env.locks.held = true

	id, err := env.store.CreateReminder(context.Background(), nil, &model.ReminderCreate{
		CalendarID: 1337, ObjectID: 42, UID: "event-1",
		Type: model.NotificationTypeEmail, NotificationDate: ts(t, "2016-06-08 23:45:00").Unix(),
	})
	if err != nil {
		t.Fatalf("setup error: %v", err)
	}

	if err := env.service.ProcessReminders(context.Background()); err != nil {
		t.Fatalf("ProcessReminders error: %v", err)
	}

	if len(env.emailSink.sends) != 0 {
		t.Error("tick behind a held lock must not dispatch")
	}
	if _, ok := env.store.rows[id]; !ok {
		t.Error("tick behind a held lock must not touch rows")
	}
}

func TestProcessRemindersMissingProviderStillAdvances(t *testing.T) {
	t.Parallel()

	env := newTestEnv(ts(t, "2025-01-05 08:00:00"))

	// AUDIO is a recognized channel but nothing is registered for it.
	data := icsObject(
		"BEGIN:VEVENT",
		"UID:rec-1",
		"DTSTART:20250101T090000Z",
		"DTEND:20250101T093000Z",
		"RRULE:FREQ=DAILY",
		"BEGIN:VALARM",
		"ACTION:AUDIO",
		"TRIGGER:-PT15M",
		"END:VALARM",
		"END:VEVENT",
	)
	change := &model.ObjectChange{
		Action: model.ChangeActionCreate, ObjectID: 42, CalendarID: 1337,
		Component: "VEVENT", CalendarData: data,
	}
	if err := env.service.OnCalendarObjectChange(context.Background(), change); err != nil {
		t.Fatalf("setup error: %v", err)
	}
	env.store.calendarData[42] = data

	env.clock.now = ts(t, "2025-01-05 09:00:00")
	if err := env.service.ProcessReminders(context.Background()); err != nil {
		t.Fatalf("ProcessReminders error: %v", err)
	}

	if len(env.emailSink.sends) != 0 {
		t.Error("no provider means no delivery")
	}

	rows := env.store.all()
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want the advanced successor", len(rows))
	}
	if want := ts(t, "2025-01-06 08:45:00").Unix(); rows[0].NotificationDate != want {
		t.Errorf("successor NotificationDate = %d, want %d", rows[0].NotificationDate, want)
	}
}

func TestProcessRemindersUnparseableDataRetired(t *testing.T) {
	t.Parallel()

	env := newTestEnv(ts(t, "2016-06-09 00:00:00"))

	id, err := env.store.CreateReminder(context.Background(), nil, &model.ReminderCreate{
		CalendarID: 1337, ObjectID: 42, UID: "event-1",
		Type: model.NotificationTypeEmail, NotificationDate: ts(t, "2016-06-08 23:45:00").Unix(),
	})
	if err != nil {
		t.Fatalf("setup error: %v", err)
	}
	env.store.calendarData[42] = "not a calendar"

	if err := env.service.ProcessReminders(context.Background()); err != nil {
		t.Fatalf("ProcessReminders error: %v", err)
	}

	if len(env.emailSink.sends) != 0 {
		t.Error("broken data must not be dispatched")
	}
	if _, ok := env.store.rows[id]; ok {
		t.Error("broken row must be retired so it cannot jam the queue")
	}
}

func TestProcessRemindersUnknownOwnerRetired(t *testing.T) {
	t.Parallel()

	env := newTestEnv(ts(t, "2016-06-01 00:00:00"))
	env.service.users = &fakeUsersStore{users: map[string]*model.User{}}

	data := icsObject(
		"BEGIN:VEVENT",
		"UID:event-1",
		"DTSTART:20160609T000000Z",
		"BEGIN:VALARM",
		"ACTION:EMAIL",
		"TRIGGER:-PT15M",
		"END:VALARM",
		"END:VEVENT",
	)
	change := &model.ObjectChange{
		Action: model.ChangeActionCreate, ObjectID: 42, CalendarID: 1337,
		Component: "VEVENT", CalendarData: data,
	}
	if err := env.service.OnCalendarObjectChange(context.Background(), change); err != nil {
		t.Fatalf("setup error: %v", err)
	}
	env.store.calendarData[42] = data

	env.clock.now = ts(t, "2016-06-09 00:00:00")
	if err := env.service.ProcessReminders(context.Background()); err != nil {
		t.Fatalf("ProcessReminders error: %v", err)
	}

	if len(env.emailSink.sends) != 0 {
		t.Error("unresolvable owner must skip delivery")
	}
	if rows := env.store.all(); len(rows) != 0 {
		t.Fatalf("rows = %d, want none", len(rows))
	}
}

func TestSnoozeReminder(t *testing.T) {
	t.Parallel()

	env := newTestEnv(ts(t, "2025-01-05 09:00:00"))

	id, err := env.store.CreateReminder(context.Background(), nil, &model.ReminderCreate{
		CalendarID: 1337, ObjectID: 42, UID: "event-1",
		Type: model.NotificationTypeEmail, NotificationDate: ts(t, "2025-01-05 08:45:00").Unix(),
	})
	if err != nil {
		t.Fatalf("setup error: %v", err)
	}

	if err := env.service.SnoozeReminder(context.Background(), id, ts(t, "2025-01-05 08:00:00")); !errors.Is(err, ErrSnoozeInPast) {
		t.Errorf("past snooze error = %v, want ErrSnoozeInPast", err)
	}
	if err := env.service.SnoozeReminder(context.Background(), id, env.clock.now); !errors.Is(err, ErrSnoozeInPast) {
		t.Errorf("snooze to now error = %v, want ErrSnoozeInPast", err)
	}

	until := ts(t, "2025-01-05 09:30:00")
	if err := env.service.SnoozeReminder(context.Background(), id, until); err != nil {
		t.Fatalf("SnoozeReminder error: %v", err)
	}
	if got := env.store.rows[id].NotificationDate; got != until.Unix() {
		t.Errorf("NotificationDate = %d, want %d", got, until.Unix())
	}
}
