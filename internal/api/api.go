package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/groupcal/reminder-service/internal/model"
	"go.uber.org/zap"
)

// Api is the surface the calendar backend talks to: it reports object
// mutations here and may snooze pending reminders on behalf of users.
type Api struct {
	handler http.Handler
	logger  *zap.SugaredLogger

	jwts      jwtManager
	reminders remindersService
}

type jwtManager interface {
	GetSubjectFromToken(token string) (string, error)
}

type remindersService interface {
	OnCalendarObjectChange(ctx context.Context, change *model.ObjectChange) error
	OnCalendarDeleted(ctx context.Context, calendarID int64) error
	SnoozeReminder(ctx context.Context, id int64, until time.Time) error
}

func NewApi(
	logger *zap.SugaredLogger,
	jwts jwtManager,
	reminders remindersService,
) (*Api, error) {
	a := &Api{
		logger:    logger,
		jwts:      jwts,
		reminders: reminders,
	}
	a.setupHandler()

	return a, nil
}

func (a *Api) setupHandler() {
	middleware.DefaultLogger = func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a.logger.Debugw(r.URL.RequestURI(),
				"addr", r.RemoteAddr,
				"protocol", r.Proto,
				"method", r.Method,
			)
			next.ServeHTTP(w, r)
		})
	}

	r := chi.NewMux()

	r.Use(middleware.Logger, middleware.Recoverer, middleware.StripSlashes)
	r.NotFound(a.notFoundResponse)
	r.MethodNotAllowed(a.methodNotAllowedResponse)

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.With(a.auth).Route("/v1", func(r chi.Router) {
		r.Post("/calendar-objects", a.calendarObjectChangeHandler)
		r.Delete("/calendars/{calendarID}", a.calendarDeletedHandler)
		r.Post("/reminders/{reminderID}/snooze", a.snoozeReminderHandler)
	})

	a.handler = r
}

func (a *Api) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}
