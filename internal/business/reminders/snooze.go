package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrSnoozeInPast = errors.New("snooze time must be in the future")

// SnoozeReminder moves a pending reminder forward in place without giving
// it a new identity. Rows only ever move forward; the store refuses a date
// at or before the current one.
func (s *Service) SnoozeReminder(ctx context.Context, id int64, until time.Time) error {
	if !until.After(s.clock.Now()) {
		return ErrSnoozeInPast
	}

	if err := s.reminders.UpdateReminder(ctx, s.db, id, until.Unix()); err != nil {
		return fmt.Errorf("remindersRepository.UpdateReminder: %w", err)
	}

	return nil
}
