// Package calendar computes the visible dates, weeks, months and years of a
// month-based calendar view and moves its anchor month in response to
// navigation actions.
//
// A Navigator is not safe for concurrent use. Hosts serialize calls the same
// way a UI event loop would.
package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"calpick/internal/locale"
)

var ErrInvalidArgument = errors.New("invalid argument")

const (
	// WeeksPerMonth is the number of week rows a month block shows.
	WeeksPerMonth = 6
	DaysPerWeek   = 7

	defaultYearSpan = 100
)

// Change describes one anchor transition. A nil pointer means "unset", in
// which case the view follows today's month.
type Change struct {
	Previous *time.Time
	Current  *time.Time
}

// Navigator owns the anchor month and answers grid questions relative to it.
type Navigator struct {
	anchor   *time.Time
	loc      locale.Locale
	firstDay *time.Weekday
	location *time.Location
	now      func() time.Time
}

type Option func(*Navigator)

// WithFirstDayOfWeek overrides the locale's first day of week.
func WithFirstDayOfWeek(d time.Weekday) Option {
	return func(n *Navigator) {
		d := d
		n.firstDay = &d
	}
}

// WithLocation sets the zone in which "today" and month starts are computed.
func WithLocation(loc *time.Location) Option {
	return func(n *Navigator) {
		if loc != nil {
			n.location = loc
		}
	}
}

// WithClock replaces time.Now. Tests use it to pin "today".
func WithClock(now func() time.Time) Option {
	return func(n *Navigator) {
		if now != nil {
			n.now = now
		}
	}
}

// WithAnchor sets the initial anchor month.
func WithAnchor(t time.Time) Option {
	return func(n *Navigator) {
		n.anchor = &t
	}
}

// New builds a Navigator for the given locale.
func New(l locale.Locale, opts ...Option) *Navigator {
	n := &Navigator{
		loc:      l,
		location: time.Local,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.anchor != nil {
		a := n.normalize(*n.anchor)
		n.anchor = &a
	}
	return n
}

func (n *Navigator) Locale() locale.Locale { return n.loc }

func (n *Navigator) Location() *time.Location { return n.location }

// Anchor returns the anchor month and whether it is set.
func (n *Navigator) Anchor() (time.Time, bool) {
	if n.anchor == nil {
		return time.Time{}, false
	}
	return *n.anchor, true
}

// Today returns the current date at midnight in the navigator's location.
func (n *Navigator) Today() time.Time {
	return DateOf(n.now().In(n.location))
}

// FirstDayOfWeek returns the override if set, otherwise the locale's value.
func (n *Navigator) FirstDayOfWeek() time.Weekday {
	if n.firstDay != nil {
		return *n.firstDay
	}
	return n.loc.FirstDayOfWeek
}

// MonthStart returns the first day of the month offset months away from the
// anchor, or from today's month while the anchor is unset.
func (n *Navigator) MonthStart(offset int) time.Time {
	if n.anchor == nil {
		return addMonths(StartOfMonth(n.Today()), offset)
	}
	return addMonths(*n.anchor, offset)
}

// MonthEnd returns the last day of the month MonthStart(offset) begins.
func (n *Navigator) MonthEnd(offset int) time.Time {
	return EndOfMonth(n.MonthStart(offset))
}

// Week returns the index-th week row of the month at offset. Row 0 is the
// week containing the first of the month; rows step by seven days and are
// aligned to FirstDayOfWeek.
func (n *Navigator) Week(offset, index int) ([]time.Time, error) {
	first, err := n.weekStart(offset, index)
	if err != nil {
		return nil, err
	}
	days := make([]time.Time, DaysPerWeek)
	for i := range days {
		days[i] = first.AddDate(0, 0, i)
	}
	return days, nil
}

// WeekNumber returns the week-of-year label of the given row, or "" when no
// day of that row lies in the target month.
func (n *Navigator) WeekNumber(offset, index int) (string, error) {
	first, err := n.weekStart(offset, index)
	if err != nil {
		return "", err
	}
	month := n.MonthStart(offset)
	inMonth := false
	for i := 0; i < DaysPerWeek; i++ {
		if SameMonth(first.AddDate(0, 0, i), month) {
			inMonth = true
			break
		}
	}
	if !inMonth {
		return "", nil
	}
	return strconv.Itoa(WeekOfYear(first, n.loc.WeekRule, n.FirstDayOfWeek())), nil
}

func (n *Navigator) weekStart(offset, index int) (time.Time, error) {
	if index < 0 || index >= WeeksPerMonth {
		return time.Time{}, fmt.Errorf("week index %d outside [0,%d]: %w", index, WeeksPerMonth-1, ErrInvalidArgument)
	}
	month := n.MonthStart(offset)
	return StartOfWeek(month.AddDate(0, 0, index*DaysPerWeek), n.FirstDayOfWeek()), nil
}

// SetAnchor is the only way the anchor changes. The value is normalized to
// the first of its month. ok is false when nothing changed.
func (n *Navigator) SetAnchor(t *time.Time) (Change, bool) {
	var next *time.Time
	if t != nil {
		v := n.normalize(*t)
		next = &v
	}
	if equalAnchor(n.anchor, next) {
		return Change{}, false
	}
	ch := Change{Previous: n.anchor, Current: next}
	n.anchor = next
	return ch, true
}

func (n *Navigator) set(t time.Time) (Change, bool) {
	return n.SetAnchor(&t)
}

// PreviousMonth moves to the first day of the preceding month.
func (n *Navigator) PreviousMonth() (Change, bool) {
	return n.set(StartOfMonth(n.MonthStart(0).AddDate(0, 0, -1)))
}

// NextMonth moves to the day after the current month's last day.
func (n *Navigator) NextMonth() (Change, bool) {
	return n.set(n.MonthEnd(0).AddDate(0, 0, 1))
}

// PreviousYear steps back exactly one year keeping the month.
func (n *Navigator) PreviousYear() (Change, bool) {
	return n.set(n.MonthStart(0).AddDate(-1, 0, 0))
}

// NextYear steps forward exactly one year keeping the month.
func (n *Navigator) NextYear() (Change, bool) {
	return n.set(n.MonthStart(0).AddDate(1, 0, 0))
}

// SetYear keeps the displayed month and replaces the year.
func (n *Navigator) SetYear(year int) (Change, bool) {
	cur := n.MonthStart(0)
	return n.set(time.Date(year, cur.Month(), 1, 0, 0, 0, 0, n.location))
}

// SetMonth keeps the displayed year and replaces the month.
func (n *Navigator) SetMonth(m time.Month) (Change, bool) {
	cur := n.MonthStart(0)
	return n.set(time.Date(cur.Year(), m, 1, 0, 0, 0, 0, n.location))
}

// AbbreviatedDayNames returns the locale's short day names starting at
// FirstDayOfWeek.
func (n *Navigator) AbbreviatedDayNames() []string {
	return Rotate(n.loc.AbbreviatedDayNames[:], int(n.FirstDayOfWeek()))
}

// YearRange returns the selectable years. Missing bounds default to a
// century on either side of today.
func (n *Navigator) YearRange(minDate, maxDate *time.Time) (int, int) {
	year := n.Today().Year()
	lo, hi := year-defaultYearSpan, year+defaultYearSpan
	if minDate != nil {
		lo = minDate.Year()
	}
	if maxDate != nil {
		hi = maxDate.Year()
	}
	return lo, hi
}

// AllMonths returns the twelve month starts of the displayed year.
func (n *Navigator) AllMonths() []time.Time {
	cur := n.MonthStart(0)
	out := make([]time.Time, 0, 12)
	for m := time.January; m <= time.December; m++ {
		out = append(out, time.Date(cur.Year(), m, 1, 0, 0, 0, 0, cur.Location()))
	}
	return out
}

// MonthTitle formats the month at offset with the locale's year/month pattern.
func (n *Navigator) MonthTitle(offset int) string {
	return n.loc.YearMonth(n.MonthStart(offset))
}

// YearTitle returns the displayed year as four digits.
func (n *Navigator) YearTitle() string {
	return n.loc.Format(n.MonthStart(0), "yyyy")
}

func (n *Navigator) IsSelectedYear(year int) bool {
	return n.MonthStart(0).Year() == year
}

func (n *Navigator) IsSelectedMonth(month time.Time) bool {
	return SameMonth(n.MonthStart(0), month)
}

func (n *Navigator) normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, n.location)
}

func equalAnchor(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// Rotate returns a copy of items shifted left by n positions, wrapping
// around. Rotating by 0 or by len(items) returns the original order.
func Rotate[T any](items []T, n int) []T {
	out := make([]T, len(items))
	if len(items) == 0 {
		return out
	}
	k := ((n % len(items)) + len(items)) % len(items)
	copy(out, items[k:])
	copy(out[len(items)-k:], items[:k])
	return out
}
