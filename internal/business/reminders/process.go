package reminders

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/groupcal/reminder-service/internal/ical"
	"github.com/groupcal/reminder-service/internal/model"
	"golang.org/x/sync/errgroup"
)

const (
	tickLockName = "reminders:process"

	dispatchConcurrency = 8
)

// ProcessReminders is one scheduler tick: it dispatches every due reminder
// and advances recurring chains by a single occurrence. The cadence belongs
// to the caller; this only does the work.
func (s *Service) ProcessReminders(ctx context.Context) error {
	token, err := lockToken()
	if err != nil {
		return fmt.Errorf("generate lock token: %w", err)
	}

	acquired, err := s.locks.Acquire(ctx, tickLockName, token, s.lockTTL)
	if err != nil {
		return fmt.Errorf("locksRepository.Acquire: %w", err)
	}
	if !acquired {
		s.logger.Infow("another worker holds the processing lock, skipping tick")
		return nil
	}
	defer func() {
		if err := s.locks.Release(ctx, tickLockName, token); err != nil {
			s.logger.Warnw("failed releasing processing lock", "err", err)
		}
	}()

	now := s.clock.Now()
	due, err := s.reminders.GetDueReminders(ctx, s.db, now.Unix())
	if err != nil {
		return fmt.Errorf("remindersRepository.GetDueReminders: %w", err)
	}

	// Reminders are independent; one failure never aborts the tick and
	// slow providers only stall their own slot.
	g := &errgroup.Group{}
	g.SetLimit(dispatchConcurrency)
	for _, r := range due {
		r := r
		g.Go(func() error {
			if err := s.processReminder(ctx, now, r); err != nil {
				s.logger.Errorw("failed processing reminder",
					"reminder", r.ID,
					"object", r.ObjectID,
					"err", err,
				)
			}
			return nil
		})
	}

	return g.Wait()
}

func (s *Service) processReminder(ctx context.Context, now time.Time, r *model.DueReminder) error {
	set, parseErr := ical.ParseEvents(r.CalendarData, s.loc)
	if parseErr != nil {
		// The row is retired anyway so broken data cannot jam the queue.
		s.logger.Warnw("retiring reminder with unparseable calendar data",
			"reminder", r.ID,
			"object", r.ObjectID,
			"err", parseErr,
		)
	}

	var successors []*model.ReminderCreate
	if parseErr == nil {
		successors = s.computeSuccessors(set, r, now)
	}

	claimed, err := s.claimAndAdvance(ctx, r.ID, successors)
	if err != nil {
		return err
	}
	if !claimed {
		// Another worker owns this row.
		return nil
	}

	if parseErr != nil {
		return nil
	}

	s.dispatch(ctx, set, r)
	return nil
}

// computeSuccessors implements the lazy advancement step: the primary
// reminder of a recurring event is replaced by exactly one reminder at the
// next future occurrence, keeping the store at one pending row per alarm no
// matter how far the rule runs. Repeat ticks already exist as their own
// rows and never spawn successors.
func (s *Service) computeSuccessors(set *ical.EventSet, r *model.DueReminder, now time.Time) []*model.ReminderCreate {
	if r.IsRepeatBased || !r.IsRecurring || r.IsRecurrenceException || set.Master == nil {
		return nil
	}

	master := set.Master

	var alarm *ical.Alarm
	for _, a := range master.Alarms {
		if a.Hash() == r.AlarmHash {
			alarm = a
			break
		}
	}
	if alarm == nil {
		// The alarm definition changed after this row was computed.
		return nil
	}

	occ, trigger, ok, err := master.NextTrigger(alarm, s.loc, now, time.Unix(r.RecurrenceID, 0), set.OverriddenTimes())
	if err != nil {
		s.logger.Warnw("cannot advance recurring reminder", "reminder", r.ID, "err", err)
		return nil
	}
	if !ok {
		// Rule exhausted: the chain terminates here.
		return nil
	}

	base := model.ReminderCreate{
		CalendarID:            r.CalendarID,
		ObjectID:              r.ObjectID,
		UID:                   r.UID,
		IsRecurring:           true,
		RecurrenceID:          occ.Unix(),
		IsRecurrenceException: false,
		EventHash:             master.Hash(),
		AlarmHash:             r.AlarmHash,
		Type:                  r.Type,
		IsRelative:            alarm.IsRelative,
		NotificationDate:      trigger.Unix(),
		IsRepeatBased:         false,
	}

	rows := make([]*model.ReminderCreate, 0, alarm.Repeat+1)
	rows = append(rows, &base)
	for k := 1; k <= alarm.Repeat; k++ {
		tick := base
		tick.IsRepeatBased = true
		tick.NotificationDate = trigger.Add(time.Duration(k) * alarm.RepeatDelay).Unix()
		rows = append(rows, &tick)
	}

	return rows
}

// claimAndAdvance retires the fired row and inserts its successors as one
// transaction, so a crash can never leave a recurring chain without a
// pending row. Only the worker whose delete actually removed the row gets
// to dispatch it.
func (s *Service) claimAndAdvance(ctx context.Context, id int64, successors []*model.ReminderCreate) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	claimed, err := s.reminders.DeleteReminderReturning(ctx, tx, id)
	if err != nil {
		return false, fmt.Errorf("remindersRepository.DeleteReminderReturning: %w", err)
	}
	if !claimed {
		return false, nil
	}

	for _, row := range successors {
		if _, err := s.reminders.CreateReminder(ctx, tx, row); err != nil {
			return false, fmt.Errorf("remindersRepository.CreateReminder: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit tx: %w", err)
	}

	return true, nil
}

// dispatch is best effort: every failure is a logged per-reminder outcome,
// the row is already retired and recurrence advancement already happened.
func (s *Service) dispatch(ctx context.Context, set *ical.EventSet, r *model.DueReminder) {
	user, err := s.users.GetUserByPrincipal(ctx, s.db, r.PrincipalURI)
	if err != nil {
		s.logger.Warnw("skipping delivery, cannot resolve calendar owner",
			"reminder", r.ID,
			"principal", r.PrincipalURI,
			"err", err,
		)
		return
	}

	if !s.registry.HasProvider(r.Type) {
		s.logger.Warnw("no provider registered for channel, delivery skipped",
			"reminder", r.ID,
			"type", r.Type,
		)
		return
	}

	provider, err := s.registry.GetProvider(r.Type)
	if err != nil {
		if errors.Is(err, model.ErrNotificationTypeDoesNotExist) {
			s.logger.Errorw("reminder references unknown channel type",
				"reminder", r.ID,
				"type", r.Type,
			)
		} else {
			s.logger.Warnw("provider unavailable", "reminder", r.ID, "type", r.Type, "err", err)
		}
		return
	}

	occurrence, err := set.OccurrenceAt(time.Unix(r.RecurrenceID, 0), r.IsRecurrenceException)
	if err != nil {
		s.logger.Warnw("cannot reconstruct occurrence", "reminder", r.ID, "err", err)
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	if err := provider.Send(sendCtx, occurrence, r.CalendarDisplayName, user); err != nil {
		s.logger.Warnw("delivery failed", "reminder", r.ID, "type", r.Type, "err", err)
	}
}

func lockToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
