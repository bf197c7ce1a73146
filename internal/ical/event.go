package ical

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	goical "github.com/emersion/go-ical"
)

// Event is one VEVENT block: either the master instance of an object or a
// RECURRENCE-ID override.
type Event struct {
	UID          string
	Summary      string
	Description  string
	Location     string
	Start        time.Time
	End          time.Time
	AllDay       bool
	RRule        string
	ExDates      []time.Time
	IsOverride   bool
	RecurrenceID time.Time
	Alarms       []*Alarm
}

func (e *Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

func (e *Event) Recurring() bool {
	return e.RRule != ""
}

// Alarm is one VALARM block of an event.
type Alarm struct {
	Action       string
	IsRelative   bool
	Offset       time.Duration
	RelatedToEnd bool
	Absolute     time.Time
	Repeat       int
	RepeatDelay  time.Duration
}

// EventSet is the parsed content of one calendar object: the master VEVENT
// plus its overrides. Warnings collects subcomponents that were skipped as
// malformed; the caller decides how to report them.
type EventSet struct {
	Master    *Event
	Overrides []*Event
	Warnings  []string
}

// OverriddenTimes returns the recurrence ids claimed by overrides, so walks
// over the master rule can skip occurrences that have their own VEVENT.
func (s *EventSet) OverriddenTimes() map[int64]struct{} {
	res := make(map[int64]struct{}, len(s.Overrides))
	for _, o := range s.Overrides {
		res[o.RecurrenceID.Unix()] = struct{}{}
	}

	return res
}

// ParseEvents decodes raw iCalendar data and splits its VEVENT blocks into a
// master instance and overrides. Components other than VEVENT are ignored.
// loc is the fallback zone for floating and date-only values.
func ParseEvents(data string, loc *time.Location) (*EventSet, error) {
	cal, err := goical.NewDecoder(strings.NewReader(data)).Decode()
	if err != nil {
		return nil, fmt.Errorf("decode calendar data: %w", err)
	}

	set := &EventSet{}
	for _, comp := range cal.Children {
		if comp.Name != goical.CompEvent {
			continue
		}

		event, warnings, err := parseEvent(comp, loc)
		set.Warnings = append(set.Warnings, warnings...)
		if err != nil {
			set.Warnings = append(set.Warnings, fmt.Sprintf("skipping VEVENT: %v", err))
			continue
		}

		if event.IsOverride {
			set.Overrides = append(set.Overrides, event)
		} else if set.Master == nil {
			set.Master = event
		} else {
			set.Warnings = append(set.Warnings, fmt.Sprintf("duplicate master VEVENT %q ignored", event.UID))
		}
	}

	return set, nil
}

func parseEvent(comp *goical.Component, loc *time.Location) (*Event, []string, error) {
	uid := comp.Props.Get("UID")
	if uid == nil || uid.Value == "" {
		return nil, nil, fmt.Errorf("missing UID")
	}

	startProp := comp.Props.Get("DTSTART")
	if startProp == nil {
		return nil, nil, fmt.Errorf("missing DTSTART")
	}
	start, err := startProp.DateTime(loc)
	if err != nil {
		return nil, nil, fmt.Errorf("parse DTSTART: %w", err)
	}

	event := &Event{
		UID:    uid.Value,
		Start:  start,
		AllDay: strings.EqualFold(startProp.Params.Get("VALUE"), "DATE"),
	}

	if p := comp.Props.Get("SUMMARY"); p != nil {
		event.Summary = p.Value
	}
	if p := comp.Props.Get("DESCRIPTION"); p != nil {
		event.Description = p.Value
	}
	if p := comp.Props.Get("LOCATION"); p != nil {
		event.Location = p.Value
	}

	event.End, err = parseEnd(comp, event, loc)
	if err != nil {
		return nil, nil, err
	}

	if p := comp.Props.Get("RRULE"); p != nil {
		event.RRule = p.Value
	}

	for _, p := range comp.Props["EXDATE"] {
		p := p
		ex, err := p.DateTime(loc)
		if err != nil {
			return nil, nil, fmt.Errorf("parse EXDATE: %w", err)
		}
		event.ExDates = append(event.ExDates, ex)
	}

	if p := comp.Props.Get("RECURRENCE-ID"); p != nil {
		rid, err := p.DateTime(loc)
		if err != nil {
			return nil, nil, fmt.Errorf("parse RECURRENCE-ID: %w", err)
		}
		event.IsOverride = true
		event.RecurrenceID = rid
	}

	var warnings []string
	for _, child := range comp.Children {
		if child.Name != "VALARM" {
			continue
		}

		alarm, err := parseAlarm(child, loc)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipping VALARM of %q: %v", event.UID, err))
			continue
		}
		event.Alarms = append(event.Alarms, alarm)
	}

	return event, warnings, nil
}

func parseEnd(comp *goical.Component, event *Event, loc *time.Location) (time.Time, error) {
	if p := comp.Props.Get("DTEND"); p != nil {
		end, err := p.DateTime(loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse DTEND: %w", err)
		}
		return end, nil
	}

	if p := comp.Props.Get("DURATION"); p != nil {
		d, err := p.Duration()
		if err != nil {
			return time.Time{}, fmt.Errorf("parse DURATION: %w", err)
		}
		return event.Start.Add(d), nil
	}

	// Per RFC 5545 an event without DTEND/DURATION spans one day when
	// date-valued and is instantaneous otherwise.
	if event.AllDay {
		return event.Start.AddDate(0, 0, 1), nil
	}
	return event.Start, nil
}

func parseAlarm(comp *goical.Component, loc *time.Location) (*Alarm, error) {
	action := comp.Props.Get("ACTION")
	if action == nil || action.Value == "" {
		return nil, fmt.Errorf("missing ACTION")
	}

	trigger := comp.Props.Get("TRIGGER")
	if trigger == nil {
		return nil, fmt.Errorf("missing TRIGGER")
	}

	alarm := &Alarm{Action: strings.ToUpper(action.Value)}

	if strings.EqualFold(trigger.Params.Get("VALUE"), "DATE-TIME") {
		abs, err := trigger.DateTime(loc)
		if err != nil {
			return nil, fmt.Errorf("parse absolute TRIGGER: %w", err)
		}
		alarm.Absolute = abs
	} else {
		offset, err := trigger.Duration()
		if err != nil {
			return nil, fmt.Errorf("parse TRIGGER duration: %w", err)
		}
		alarm.IsRelative = true
		alarm.Offset = offset
		alarm.RelatedToEnd = strings.EqualFold(trigger.Params.Get("RELATED"), "END")
	}

	repeat := comp.Props.Get("REPEAT")
	delay := comp.Props.Get("DURATION")
	// REPEAT and DURATION are only meaningful together.
	if repeat != nil && delay != nil {
		n, err := strconv.Atoi(repeat.Value)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid REPEAT %q", repeat.Value)
		}
		d, err := delay.Duration()
		if err != nil {
			return nil, fmt.Errorf("parse repeat DURATION: %w", err)
		}
		alarm.Repeat = n
		alarm.RepeatDelay = d
	}

	return alarm, nil
}
