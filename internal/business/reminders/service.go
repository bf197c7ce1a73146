package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/groupcal/reminder-service/internal/config"
	"github.com/groupcal/reminder-service/internal/database"
	"github.com/groupcal/reminder-service/internal/model"
	"github.com/groupcal/reminder-service/internal/notifications"
	"github.com/groupcal/reminder-service/internal/pkg/clock"
	"go.uber.org/zap"
)

type Service struct {
	db     database.PGX
	logger *zap.SugaredLogger
	clock  clock.Clock

	reminders remindersRepository
	users     usersRepository
	calendars calendarsRepository
	registry  providerRegistry
	locks     locksRepository

	loc         *time.Location
	sendTimeout time.Duration
	lockTTL     time.Duration
}

type remindersRepository interface {
	CreateReminder(ctx context.Context, q database.Queryable, reminder *model.ReminderCreate) (int64, error)
	DeleteReminder(ctx context.Context, q database.Queryable, id int64) error
	DeleteReminderReturning(ctx context.Context, q database.Queryable, id int64) (bool, error)
	DeleteRemindersForObject(ctx context.Context, q database.Queryable, objectID int64) error
	DeleteRemindersForCalendar(ctx context.Context, q database.Queryable, calendarID int64) error
	UpdateReminder(ctx context.Context, q database.Queryable, id int64, notificationDate int64) error
	GetDueReminders(ctx context.Context, q database.Queryable, now int64) ([]*model.DueReminder, error)
	GetRemindersForObject(ctx context.Context, q database.Queryable, objectID int64) ([]*model.Reminder, error)
}

type usersRepository interface {
	GetUserByPrincipal(ctx context.Context, q database.Queryable, principalURI string) (*model.User, error)
}

type calendarsRepository interface {
	GetCalendarByID(ctx context.Context, q database.Queryable, id int64) (*model.Calendar, error)
}

type providerRegistry interface {
	HasProvider(t model.NotificationType) bool
	GetProvider(t model.NotificationType) (notifications.Provider, error)
}

type locksRepository interface {
	Acquire(ctx context.Context, name, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name, token string) error
}

func NewService(
	db database.PGX,
	logger *zap.SugaredLogger,
	clock clock.Clock,
	reminders remindersRepository,
	users usersRepository,
	calendars calendarsRepository,
	registry providerRegistry,
	locks locksRepository,
) (*Service, error) {
	loc, err := time.LoadLocation(config.DefaultTimezone())
	if err != nil {
		return nil, fmt.Errorf("load default timezone %q: %w", config.DefaultTimezone(), err)
	}

	return &Service{
		db:          db,
		logger:      logger,
		clock:       clock,
		reminders:   reminders,
		users:       users,
		calendars:   calendars,
		registry:    registry,
		locks:       locks,
		loc:         loc,
		sendTimeout: config.SendTimeout(),
		lockTTL:     config.TickLockTTL(),
	}, nil
}

// locationFor resolves the calendar's timezone for interpreting floating
// and date-only values, falling back to the configured default when the
// calendar carries none or an unknown one.
func (s *Service) locationFor(ctx context.Context, calendarID int64) *time.Location {
	cal, err := s.calendars.GetCalendarByID(ctx, s.db, calendarID)
	if err != nil {
		s.logger.Debugw("cannot look up calendar timezone", "calendar", calendarID, "err", err)
		return s.loc
	}
	if cal.Timezone == "" {
		return s.loc
	}

	loc, err := time.LoadLocation(cal.Timezone)
	if err != nil {
		s.logger.Debugw("unknown calendar timezone", "calendar", calendarID, "timezone", cal.Timezone)
		return s.loc
	}

	return loc
}
