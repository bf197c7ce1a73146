package reminders

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/groupcal/reminder-service/internal/database"
	"github.com/groupcal/reminder-service/internal/model"
	"github.com/groupcal/reminder-service/internal/notifications"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"go.uber.org/zap"
)

type fakePGX struct{}

func (fakePGX) Exec(context.Context, database.Sqlizer) (pgconn.CommandTag, error) { return nil, nil }
func (fakePGX) Get(context.Context, interface{}, database.Sqlizer) error          { return nil }
func (fakePGX) Select(context.Context, interface{}, database.Sqlizer) error       { return nil }

func (fakePGX) BeginTx(context.Context, *pgx.TxOptions) (database.Tx, error) {
	return fakeTx{}, nil
}

type fakeTx struct{ fakePGX }

func (fakeTx) Commit(context.Context) error   { return nil }
func (fakeTx) Rollback(context.Context) error { return nil }

// fakeRemindersStore keeps rows in memory and serves the joined dispatch
// context from fixed calendar fields, mirroring what the SQL layer produces.
// The mutex stands in for the isolation the database gives concurrent
// dispatch slots.
type fakeRemindersStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*model.Reminder

	calendarData map[int64]string
	displayName  string
	principalURI string
}

func newFakeRemindersStore() *fakeRemindersStore {
	return &fakeRemindersStore{
		rows:         map[int64]*model.Reminder{},
		calendarData: map[int64]string{},
		displayName:  "Personal",
		principalURI: "principals/users/alice",
	}
}

func (f *fakeRemindersStore) CreateReminder(_ context.Context, _ database.Queryable, reminder *model.ReminderCreate) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	f.rows[f.nextID] = &model.Reminder{ID: f.nextID, ReminderCreate: *reminder}

	return f.nextID, nil
}

func (f *fakeRemindersStore) DeleteReminder(_ context.Context, _ database.Queryable, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.rows, id)
	return nil
}

func (f *fakeRemindersStore) DeleteReminderReturning(_ context.Context, _ database.Queryable, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.rows[id]
	delete(f.rows, id)

	return ok, nil
}

func (f *fakeRemindersStore) DeleteRemindersForObject(_ context.Context, _ database.Queryable, objectID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, r := range f.rows {
		if r.ObjectID == objectID {
			delete(f.rows, id)
		}
	}

	return nil
}

func (f *fakeRemindersStore) DeleteRemindersForCalendar(_ context.Context, _ database.Queryable, calendarID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, r := range f.rows {
		if r.CalendarID == calendarID {
			delete(f.rows, id)
		}
	}

	return nil
}

func (f *fakeRemindersStore) UpdateReminder(_ context.Context, _ database.Queryable, id int64, notificationDate int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r, ok := f.rows[id]; ok && r.NotificationDate < notificationDate {
		r.NotificationDate = notificationDate
	}

	return nil
}

func (f *fakeRemindersStore) GetDueReminders(_ context.Context, _ database.Queryable, now int64) ([]*model.DueReminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var res []*model.DueReminder
	for _, r := range f.rows {
		if r.NotificationDate <= now {
			res = append(res, &model.DueReminder{
				Reminder:            *r,
				CalendarDisplayName: f.displayName,
				PrincipalURI:        f.principalURI,
				CalendarData:        f.calendarData[r.ObjectID],
			})
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })

	return res, nil
}

func (f *fakeRemindersStore) GetRemindersForObject(_ context.Context, _ database.Queryable, objectID int64) ([]*model.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var res []*model.Reminder
	for _, r := range f.rows {
		if r.ObjectID == objectID {
			res = append(res, r)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })

	return res, nil
}

func (f *fakeRemindersStore) all() []*model.Reminder {
	f.mu.Lock()
	defer f.mu.Unlock()

	res := make([]*model.Reminder, 0, len(f.rows))
	for _, r := range f.rows {
		res = append(res, r)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].NotificationDate != res[j].NotificationDate {
			return res[i].NotificationDate < res[j].NotificationDate
		}
		return res[i].ID < res[j].ID
	})

	return res
}

type fakeUsersStore struct {
	users map[string]*model.User
}

func (f *fakeUsersStore) GetUserByPrincipal(_ context.Context, _ database.Queryable, principalURI string) (*model.User, error) {
	u, ok := f.users[principalURI]
	if !ok {
		return nil, model.ErrNoRecord
	}

	return u, nil
}

type fakeCalendarsStore struct {
	calendar *model.Calendar
}

func (f *fakeCalendarsStore) GetCalendarByID(_ context.Context, _ database.Queryable, id int64) (*model.Calendar, error) {
	if f.calendar == nil || f.calendar.ID != id {
		return nil, model.ErrNoRecord
	}

	return f.calendar, nil
}

type fakeLocksStore struct {
	held     bool
	acquired int
	released int
}

func (f *fakeLocksStore) Acquire(_ context.Context, _, _ string, _ time.Duration) (bool, error) {
	if f.held {
		return false, nil
	}
	f.acquired++

	return true, nil
}

func (f *fakeLocksStore) Release(_ context.Context, _, _ string) error {
	f.released++
	return nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type sentNotification struct {
	occurrence *model.EventOccurrence
	calendar   string
	user       *model.User
}

type captureProvider struct {
	mu    sync.Mutex
	err   error
	sends []sentNotification
}

func (p *captureProvider) Send(_ context.Context, occurrence *model.EventOccurrence, calendarDisplayName string, user *model.User) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sends = append(p.sends, sentNotification{
		occurrence: occurrence,
		calendar:   calendarDisplayName,
		user:       user,
	})

	return p.err
}

type testEnv struct {
	service   *Service
	store     *fakeRemindersStore
	clock     *fakeClock
	locks     *fakeLocksStore
	registry  *notifications.Registry
	emailSink *captureProvider
}

func newTestEnv(now time.Time) *testEnv {
	logger := zap.NewNop().Sugar()

	store := newFakeRemindersStore()
	clk := &fakeClock{now: now}
	locks := &fakeLocksStore{}
	emailSink := &captureProvider{}

	registry := notifications.NewRegistry(logger)
	registry.RegisterProvider(model.NotificationTypeEmail, emailSink)
	registry.RegisterProvider(model.NotificationTypeDisplay, emailSink)

	service := &Service{
		db:     fakePGX{},
		logger: logger,
		clock:  clk,
		reminders: store,
		users: &fakeUsersStore{users: map[string]*model.User{
			"principals/users/alice": {
				UID:          "alice",
				PrincipalURI: "principals/users/alice",
				DisplayName:  "Alice",
				Email:        "alice@example.com",
				Notify:       true,
			},
		}},
		calendars:   &fakeCalendarsStore{},
		registry:    registry,
		locks:       locks,
		loc:         time.UTC,
		sendTimeout: time.Second,
		lockTTL:     time.Minute,
	}

	return &testEnv{
		service:   service,
		store:     store,
		clock:     clk,
		locks:     locks,
		registry:  registry,
		emailSink: emailSink,
	}
}

func icsObject(lines ...string) string {
	all := append([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//groupcal//reminder-service//EN",
	}, lines...)
	all = append(all, "END:VCALENDAR")

	return strings.Join(all, "\r\n") + "\r\n"
}
