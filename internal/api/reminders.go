package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/groupcal/reminder-service/internal/business/reminders"
	"github.com/groupcal/reminder-service/internal/model"
)

func (a *Api) calendarObjectChangeHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Action       string `json:"action"`
		ID           int64  `json:"id"`
		CalendarID   int64  `json:"calendarId"`
		CalendarData string `json:"calendarData"`
		Component    string `json:"component"`
	}

	if err := a.readJSON(w, r, &input); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	action := model.ChangeAction(input.Action)
	switch action {
	case model.ChangeActionCreate, model.ChangeActionUpdate, model.ChangeActionDelete:
	default:
		a.failedValidationResponse(w, r, map[string]string{"action": "must be create, update or delete"})
		return
	}

	change := &model.ObjectChange{
		Action:       action,
		ObjectID:     input.ID,
		CalendarID:   input.CalendarID,
		CalendarData: input.CalendarData,
		Component:    input.Component,
	}

	if err := a.reminders.OnCalendarObjectChange(r.Context(), change); err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *Api) calendarDeletedHandler(w http.ResponseWriter, r *http.Request) {
	calendarID, err := strconv.ParseInt(chi.URLParam(r, "calendarID"), 10, 64)
	if err != nil {
		a.notFoundResponse(w, r)
		return
	}

	if err := a.reminders.OnCalendarDeleted(r.Context(), calendarID); err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *Api) snoozeReminderHandler(w http.ResponseWriter, r *http.Request) {
	reminderID, err := strconv.ParseInt(chi.URLParam(r, "reminderID"), 10, 64)
	if err != nil {
		a.notFoundResponse(w, r)
		return
	}

	var input struct {
		Until int64 `json:"until"`
	}

	if err := a.readJSON(w, r, &input); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	if err := a.reminders.SnoozeReminder(r.Context(), reminderID, time.Unix(input.Until, 0)); err != nil {
		switch {
		case errors.Is(err, reminders.ErrSnoozeInPast):
			a.failedValidationResponse(w, r, map[string]string{"until": "must be in the future"})
		default:
			a.serverErrorResponse(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
