package ical

import (
	"fmt"
	"time"

	"github.com/groupcal/reminder-service/internal/model"
	"github.com/teambition/rrule-go"
)

// Walking an unbounded rule must terminate even when every candidate is
// filtered out; relative triggers grow monotonically so this bound is never
// reached for well-formed data.
const maxWalk = 100000

// TriggerTime returns the absolute time the alarm fires for an occurrence
// starting at occStart.
func (e *Event) TriggerTime(a *Alarm, occStart time.Time) time.Time {
	if !a.IsRelative {
		return a.Absolute
	}

	base := occStart
	if a.RelatedToEnd {
		base = occStart.Add(e.Duration())
	}

	return base.Add(a.Offset)
}

// NextTrigger computes the single next occurrence of e whose trigger for a
// is not before ref, never enumerating the rule past that first candidate.
// A non-zero after restricts the walk to occurrences strictly after it,
// which is how a fired recurring reminder advances one step. skip holds
// occurrence times claimed by RECURRENCE-ID overrides. ok is false when the
// rule is exhausted.
func (e *Event) NextTrigger(a *Alarm, loc *time.Location, ref, after time.Time, skip map[int64]struct{}) (occ, trigger time.Time, ok bool, err error) {
	if !e.Recurring() {
		if !after.IsZero() {
			// A single occurrence has no successor.
			return time.Time{}, time.Time{}, false, nil
		}
		return e.Start, e.TriggerTime(a, e.Start), true, nil
	}

	// An absolute trigger fires once no matter how many occurrences the
	// rule generates.
	if !a.IsRelative && !after.IsZero() {
		return time.Time{}, time.Time{}, false, nil
	}

	set, err := e.ruleSet(loc)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}

	next := set.Iterator()
	for i := 0; i < maxWalk; i++ {
		o, more := next()
		if !more {
			return time.Time{}, time.Time{}, false, nil
		}
		if !after.IsZero() && !o.After(after) {
			continue
		}
		if _, overridden := skip[o.Unix()]; overridden {
			continue
		}

		// A fixed DATE-TIME trigger fires at its literal value no matter
		// which occurrence it is attached to.
		if !a.IsRelative {
			return o, a.Absolute, true, nil
		}

		t := e.TriggerTime(a, o)
		if t.Before(ref) {
			continue
		}

		return o, t, true, nil
	}

	return time.Time{}, time.Time{}, false, fmt.Errorf("no eligible occurrence within %d candidates of rule %q", maxWalk, e.RRule)
}

func (e *Event) ruleSet(loc *time.Location) (*rrule.Set, error) {
	rOption, err := rrule.StrToROptionInLocation(e.RRule, loc)
	if err != nil {
		return nil, fmt.Errorf("parse recurrence rule %q: %w", e.RRule, err)
	}
	rOption.Dtstart = e.Start

	rule, err := rrule.NewRRule(*rOption)
	if err != nil {
		return nil, fmt.Errorf("make rule: %w", err)
	}

	set := &rrule.Set{}
	set.RRule(rule)
	for _, ex := range e.ExDates {
		set.ExDate(ex)
	}

	return set, nil
}

// OccurrenceAt reconstructs the concrete instance a reminder was computed
// for: the override VEVENT when the reminder marks a recurrence exception,
// otherwise the master instance shifted to the recurrence id.
func (s *EventSet) OccurrenceAt(recurrenceID time.Time, isException bool) (*model.EventOccurrence, error) {
	if isException {
		for _, o := range s.Overrides {
			if o.RecurrenceID.Equal(recurrenceID) {
				return occurrenceFromEvent(o, o.Start), nil
			}
		}
		return nil, fmt.Errorf("no override for recurrence id %v", recurrenceID)
	}

	if s.Master == nil {
		return nil, fmt.Errorf("no master instance")
	}

	return occurrenceFromEvent(s.Master, recurrenceID), nil
}

func occurrenceFromEvent(e *Event, start time.Time) *model.EventOccurrence {
	return &model.EventOccurrence{
		UID:         e.UID,
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
		Start:       start,
		End:         start.Add(e.Duration()),
		AllDay:      e.AllDay,
	}
}
