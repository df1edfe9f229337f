// Package picker is the stateful date-picker component built around a
// calendar.Navigator. It owns the view mode, the picked date, the bounds and
// the queue of work the renderer has to run after drawing.
//
// All methods are meant to be called from one event loop. Hosts that serve
// several goroutines must serialize access themselves.
package picker

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"calpick/internal/calendar"
	"calpick/internal/locale"
)

// Marker tells the grid which days carry something worth highlighting.
type Marker interface {
	Marked(day time.Time) bool
}

// MarkerFunc adapts a plain function to Marker.
type MarkerFunc func(day time.Time) bool

func (f MarkerFunc) Marked(day time.Time) bool { return f(day) }

// Task is deferred work the renderer runs once the frame is drawn.
type Task interface {
	task()
}

// ScrollTask asks the host to bring the element with ElementID into view.
// It is best effort; hosts ignore ids they cannot resolve.
type ScrollTask struct {
	ElementID string `json:"element_id"`
}

func (ScrollTask) task() {}

// Options configures a Picker. Zero values give a one-month invariant-culture
// picker opening on the date view.
type Options struct {
	Locale         locale.Locale
	FirstDayOfWeek *time.Weekday

	MinDate *time.Time
	MaxDate *time.Time

	OpenTo View

	// StartMonth is shown on first render when no month was bound.
	StartMonth *time.Time
	// Month binds the initial anchor month.
	Month *time.Time
	// Date binds the initially picked date.
	Date *time.Time

	DisplayMonths   int
	MaxMonthColumns int
	ShowWeekNumbers bool

	// DateFormat overrides the locale short date pattern for FormattedDate.
	DateFormat string

	Location *time.Location
	Marker   Marker

	OnMonthChanged func(calendar.Change)
	OnDateChanged  func(*time.Time)

	// Now replaces time.Now. Tests use it to pin "today".
	Now func() time.Time
}

// Picker is a single-date picker.
type Picker struct {
	opts Options
	nav  *calendar.Navigator
	id   string

	view  View
	date  *time.Time
	hover *time.Time

	scrollToYear bool
	firstDone    bool
	dirty        bool
}

// MaxDisplayMonths is the most month blocks a picker draws side by side.
const MaxDisplayMonths = 12

// New builds a picker. DisplayMonths is clamped to [1, MaxDisplayMonths].
func New(opts Options) *Picker {
	opts.DisplayMonths = min(max(opts.DisplayMonths, 1), MaxDisplayMonths)
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Locale.Name == "" {
		opts.Locale = locale.Invariant
	}

	navOpts := []calendar.Option{calendar.WithLocation(opts.Location)}
	if opts.FirstDayOfWeek != nil {
		navOpts = append(navOpts, calendar.WithFirstDayOfWeek(*opts.FirstDayOfWeek))
	}
	if opts.Now != nil {
		navOpts = append(navOpts, calendar.WithClock(opts.Now))
	}
	if opts.Month != nil {
		navOpts = append(navOpts, calendar.WithAnchor(*opts.Month))
	}

	p := &Picker{
		opts:  opts,
		nav:   calendar.New(opts.Locale, navOpts...),
		id:    uuid.NewString(),
		view:  opts.OpenTo,
		dirty: true,
	}
	if opts.Date != nil {
		d := calendar.DateOf(*opts.Date)
		p.date = &d
	}
	return p
}

func (p *Picker) ID() string { return p.id }

func (p *Picker) View() View { return p.view }

func (p *Picker) Navigator() *calendar.Navigator { return p.nav }

func (p *Picker) Options() Options { return p.opts }

// Month returns the first day of the displayed month.
func (p *Picker) Month() time.Time { return p.nav.MonthStart(0) }

// Date returns the picked date, if any.
func (p *Picker) Date() (time.Time, bool) {
	if p.date == nil {
		return time.Time{}, false
	}
	return *p.date, true
}

// NeedsRender reports whether state changed since the last Rendered call.
func (p *Picker) NeedsRender() bool { return p.dirty }

// YearElementID is the id the year list uses for year, unique per picker.
func (p *Picker) YearElementID(year int) string {
	return p.id + strconv.Itoa(year)
}

// Open switches to the configured initial view.
func (p *Picker) Open() {
	p.view = p.opts.OpenTo
	if p.view == ViewYear {
		p.scrollToYear = true
	}
	p.dirty = true
}

// ClickYearHeader opens the year list and scrolls it to the current year.
func (p *Picker) ClickYearHeader() {
	p.view = ViewYear
	p.scrollToYear = true
	p.dirty = true
}

// ClickYear picks a year from the year list and moves on to the months.
func (p *Picker) ClickYear(year int) {
	p.view = ViewMonth
	p.dirty = true
	p.apply(p.nav.SetYear(year))
}

// ClickMonthHeader opens the month list for the block at offset. An unset
// anchor stays unset.
func (p *Picker) ClickMonthHeader(offset int) {
	p.view = ViewMonth
	p.dirty = true
	if _, ok := p.nav.Anchor(); !ok {
		return
	}
	m := p.nav.MonthStart(offset)
	p.apply(p.nav.SetAnchor(&m))
}

// SelectMonth picks a month from the month list and returns to the days.
func (p *Picker) SelectMonth(month time.Time) {
	p.view = ViewDate
	p.dirty = true
	p.apply(p.nav.SetAnchor(&month))
}

// SetMonth is the two-way binding setter for the displayed month.
func (p *Picker) SetMonth(month *time.Time) {
	p.apply(p.nav.SetAnchor(month))
}

func (p *Picker) PreviousMonth() { p.apply(p.nav.PreviousMonth()) }
func (p *Picker) NextMonth()     { p.apply(p.nav.NextMonth()) }
func (p *Picker) PreviousYear()  { p.apply(p.nav.PreviousYear()) }
func (p *Picker) NextYear()      { p.apply(p.nav.NextYear()) }

// ClickDay picks day. Disabled days are ignored and false is returned. When
// day lies outside the displayed months the view follows it.
func (p *Picker) ClickDay(day time.Time) bool {
	day = calendar.DateOf(day)
	if p.IsDisabled(day) {
		return false
	}
	if p.date == nil || !p.date.Equal(day) {
		d := day
		p.date = &d
		p.dirty = true
		if p.opts.OnDateChanged != nil {
			p.opts.OnDateChanged(p.date)
		}
	}
	if !p.isDisplayed(day) {
		p.apply(p.nav.SetAnchor(&day))
	}
	return true
}

// ClearDate drops the picked date.
func (p *Picker) ClearDate() {
	if p.date == nil {
		return
	}
	p.date = nil
	p.dirty = true
	if p.opts.OnDateChanged != nil {
		p.opts.OnDateChanged(nil)
	}
}

// Hover records the day under the pointer.
func (p *Picker) Hover(day time.Time) {
	d := calendar.DateOf(day)
	if p.hover != nil && p.hover.Equal(d) {
		return
	}
	p.hover = &d
	p.dirty = true
}

// IsDisabled reports whether day lies outside [MinDate, MaxDate].
func (p *Picker) IsDisabled(day time.Time) bool {
	d := calendar.DateOf(day)
	if p.opts.MinDate != nil && d.Before(calendar.DateOf(*p.opts.MinDate)) {
		return true
	}
	if p.opts.MaxDate != nil && d.After(calendar.DateOf(*p.opts.MaxDate)) {
		return true
	}
	return false
}

// FormattedDate renders the picked date with DateFormat or the locale short
// date pattern. It is empty while no date is picked.
func (p *Picker) FormattedDate() string {
	if p.date == nil {
		return ""
	}
	if p.opts.DateFormat != "" {
		return p.opts.Locale.Format(*p.date, p.opts.DateFormat)
	}
	return p.opts.Locale.ShortDate(*p.date)
}

// Rendered must be called by the renderer after every drawn frame. The first
// call pins an unset anchor to StartMonth or the current month without
// raising a change. It returns the tasks queued since the previous call;
// each task is returned once.
func (p *Picker) Rendered(first bool) []Task {
	if first && !p.firstDone {
		p.firstDone = true
		if _, ok := p.nav.Anchor(); !ok {
			start := p.nav.MonthStart(0)
			if p.opts.StartMonth != nil {
				start = calendar.StartOfMonth(*p.opts.StartMonth)
			}
			p.nav.SetAnchor(&start)
		}
		if p.view == ViewYear {
			p.scrollToYear = true
		}
	}
	p.dirty = false
	if !p.scrollToYear {
		return nil
	}
	p.scrollToYear = false
	return []Task{ScrollTask{ElementID: p.YearElementID(p.Month().Year())}}
}

func (p *Picker) apply(ch calendar.Change, ok bool) {
	if !ok {
		return
	}
	p.dirty = true
	if p.opts.OnMonthChanged != nil {
		p.opts.OnMonthChanged(ch)
	}
}

func (p *Picker) isDisplayed(day time.Time) bool {
	first := p.nav.MonthStart(0)
	last := p.nav.MonthEnd(p.opts.DisplayMonths - 1)
	return !day.Before(first) && !day.After(last)
}
