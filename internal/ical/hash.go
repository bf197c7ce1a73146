package ical

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Hash fingerprints the fields of an event that affect scheduling. Changing
// anything else (say, the description) keeps the hash stable so stored
// reminders survive cosmetic edits.
func (e *Event) Hash() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%d|%s", e.UID, e.Start.Unix(), e.End.Unix(), e.RRule)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash fingerprints one VALARM definition, distinguishing multiple alarms on
// the same event.
func (a *Alarm) Hash() string {
	h := sha256.New()
	if a.IsRelative {
		fmt.Fprintf(h, "%s|rel|%d|%t|%d|%d",
			a.Action, int64(a.Offset/time.Second), a.RelatedToEnd, a.Repeat, int64(a.RepeatDelay/time.Second))
	} else {
		fmt.Fprintf(h, "%s|abs|%d|%d|%d",
			a.Action, a.Absolute.Unix(), a.Repeat, int64(a.RepeatDelay/time.Second))
	}
	return hex.EncodeToString(h.Sum(nil))
}
