package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	appLog "calpick/internal/log"
	"calpick/internal/model"
)

const defaultMaxOccurrencesPerEvent = 5000

// ExpandConfig is the window and zone occurrences are produced for.
type ExpandConfig struct {
	Location   *time.Location
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps runaway rules. Zero means the default.
	MaxOccurrencesPerEvent int
}

// ExpandOccurrences turns parsed events into concrete occurrences that
// overlap [RangeStart, RangeEnd]. RRULE series honor EXDATE and
// RECURRENCE-ID overrides. Everything is converted into cfg.Location.
func ExpandOccurrences(events []ParsedEvent, cfg ExpandConfig) ([]model.Occurrence, error) {
	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return nil, errors.New("expand: RangeEnd is before RangeStart")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	overrides := make(map[string][]ParsedEvent)
	for _, ev := range events {
		if ev.IsOverride() {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
		}
	}

	out := make([]model.Occurrence, 0)
	for _, ev := range events {
		if ev.IsOverride() {
			continue
		}
		if ev.RawRRule == "" {
			if overlaps(ev.Start, ev.End, cfg.RangeStart, cfg.RangeEnd) {
				out = append(out, occurrence(ev, ev.Start, ev.End, cfg.Location))
			}
			continue
		}
		out = append(out, expandSeries(ev, overrides[ev.UID], cfg)...)
	}
	return out, nil
}

func expandSeries(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) []model.Occurrence {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Widen the lower bound by the event length so an instance that began
	// before the window but still runs into it is kept.
	dur := ev.End.Sub(ev.Start)
	starts := set.Between(
		cfg.RangeStart.Add(-dur).In(ev.Start.Location()),
		cfg.RangeEnd.In(ev.Start.Location()),
		true,
	)
	if len(starts) > cfg.MaxOccurrencesPerEvent {
		appLog.Error("expand: truncated occurrences", errors.New("max occurrences reached"),
			"uid", ev.UID, "cap", cfg.MaxOccurrencesPerEvent)
		starts = starts[:cfg.MaxOccurrencesPerEvent]
	}

	out := make([]model.Occurrence, 0, len(starts))
	for _, s := range starts {
		base, start, end := ev, s, s.Add(dur)
		for _, ov := range overrides {
			if ov.Recurrence.Equal(s) {
				base, start, end = ov, ov.Start, ov.End
				break
			}
		}
		out = append(out, occurrence(base, start, end, cfg.Location))
	}
	return out
}

func occurrence(ev ParsedEvent, start, end time.Time, loc *time.Location) model.Occurrence {
	if ev.AllDay {
		// All-day dates are calendar dates; keep them on the same day in loc.
		start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
		end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)
	} else {
		start, end = start.In(loc), end.In(loc)
	}
	return model.Occurrence{
		SourceID: ev.Source.ID,
		UID:      ev.UID,
		Summary:  ev.Summary,
		AllDay:   ev.AllDay,
		Start:    start,
		End:      end,
	}
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	if aEnd.Before(aStart) {
		aEnd = aStart
	}
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
