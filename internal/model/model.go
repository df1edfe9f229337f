package model

import "time"

// Occurrence is one concrete instance of a calendar event after recurrence
// expansion, normalized into the display location. Day marks are derived
// from the local dates an occurrence spans.
type Occurrence struct {
	SourceID string // feed ID from config
	UID      string // iCalendar UID

	Summary string

	AllDay bool

	// Start is inclusive, End exclusive.
	Start time.Time
	End   time.Time
}

// Days returns the local dates touched by the occurrence, in order. An
// occurrence with End <= Start still marks its start date.
func (o Occurrence) Days() []time.Time {
	loc := o.Start.Location()
	first := time.Date(o.Start.Year(), o.Start.Month(), o.Start.Day(), 0, 0, 0, 0, loc)
	out := []time.Time{first}
	if !o.End.After(o.Start) {
		return out
	}
	// End is exclusive: an event ending exactly at midnight does not touch
	// the following date.
	last := o.End.In(loc).Add(-time.Nanosecond)
	for d := first.AddDate(0, 0, 1); !d.After(last); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}
