package picker

import (
	"time"

	"calpick/internal/calendar"
)

const isoDate = "2006-01-02"

// Snapshot is the pure view model of one frame. Only the part belonging to
// the active view is filled: Months for date, MonthItems for month, Years
// for year.
type Snapshot struct {
	ID            string   `json:"id"`
	View          View     `json:"view"`
	FormattedDate string   `json:"formatted_date"`
	YearTitle     string   `json:"year_title"`
	DayNames      []string `json:"day_names"`
	Columns       int      `json:"columns"`
	WeekNumbers   bool     `json:"week_numbers"`

	Months     []MonthBlock `json:"months,omitempty"`
	MonthItems []MonthItem  `json:"month_items,omitempty"`
	Years      []YearItem   `json:"years,omitempty"`
}

type MonthBlock struct {
	Offset int       `json:"offset"`
	Title  string    `json:"title"`
	Start  string    `json:"start"`
	First  bool      `json:"first"`
	Last   bool      `json:"last"`
	Weeks  []WeekRow `json:"weeks"`
}

type WeekRow struct {
	Number string     `json:"number,omitempty"`
	Days   []DayState `json:"days"`
}

// DayState carries everything a host needs to draw one day cell.
type DayState struct {
	Date     time.Time `json:"-"`
	ISO      string    `json:"date"`
	Day      int       `json:"day"`
	Outside  bool      `json:"outside,omitempty"`
	Selected bool      `json:"selected,omitempty"`
	Today    bool      `json:"today,omitempty"`
	Disabled bool      `json:"disabled,omitempty"`
	Marked   bool      `json:"marked,omitempty"`
	Hovered  bool      `json:"hovered,omitempty"`
}

type MonthItem struct {
	Month    time.Time `json:"-"`
	ISO      string    `json:"month"`
	Name     string    `json:"name"`
	Selected bool      `json:"selected,omitempty"`
}

type YearItem struct {
	Year      int    `json:"year"`
	ElementID string `json:"element_id"`
	Selected  bool   `json:"selected,omitempty"`
}

// Render builds the view model for the current state. It does not clear
// the dirty flag or drain tasks; hosts call Rendered once the frame is out.
func (p *Picker) Render() Snapshot {
	s := Snapshot{
		ID:            p.id,
		View:          p.view,
		FormattedDate: p.FormattedDate(),
		YearTitle:     p.nav.YearTitle(),
		DayNames:      p.nav.AbbreviatedDayNames(),
		Columns:       p.columns(),
		WeekNumbers:   p.opts.ShowWeekNumbers,
	}
	switch p.view {
	case ViewYear:
		s.Years = p.years()
	case ViewMonth:
		s.MonthItems = p.monthItems()
	default:
		s.Months = p.monthBlocks()
	}
	return s
}

func (p *Picker) columns() int {
	if p.opts.MaxMonthColumns > 0 && p.opts.MaxMonthColumns < p.opts.DisplayMonths {
		return p.opts.MaxMonthColumns
	}
	return p.opts.DisplayMonths
}

func (p *Picker) monthBlocks() []MonthBlock {
	blocks := make([]MonthBlock, 0, p.opts.DisplayMonths)
	for offset := 0; offset < p.opts.DisplayMonths; offset++ {
		start := p.nav.MonthStart(offset)
		b := MonthBlock{
			Offset: offset,
			Title:  p.nav.MonthTitle(offset),
			Start:  start.Format(isoDate),
			First:  offset == 0,
			Last:   offset == p.opts.DisplayMonths-1,
			Weeks:  make([]WeekRow, 0, calendar.WeeksPerMonth),
		}
		for index := 0; index < calendar.WeeksPerMonth; index++ {
			// index is always in range here.
			days, _ := p.nav.Week(offset, index)
			row := WeekRow{Days: make([]DayState, 0, len(days))}
			if p.opts.ShowWeekNumbers {
				row.Number, _ = p.nav.WeekNumber(offset, index)
			}
			for _, d := range days {
				row.Days = append(row.Days, p.dayState(start, d))
			}
			b.Weeks = append(b.Weeks, row)
		}
		blocks = append(blocks, b)
	}
	return blocks
}

func (p *Picker) dayState(month, d time.Time) DayState {
	outside := !calendar.SameMonth(d, month)
	st := DayState{
		Date:     d,
		ISO:      d.Format(isoDate),
		Day:      d.Day(),
		Outside:  outside,
		Today:    calendar.SameDay(d, p.nav.Today()),
		Disabled: p.IsDisabled(d),
	}
	if !outside && p.date != nil {
		st.Selected = calendar.SameDay(d, *p.date)
	}
	if p.hover != nil {
		st.Hovered = calendar.SameDay(d, *p.hover)
	}
	if p.opts.Marker != nil {
		st.Marked = p.opts.Marker.Marked(d)
	}
	return st
}

func (p *Picker) monthItems() []MonthItem {
	months := p.nav.AllMonths()
	out := make([]MonthItem, 0, len(months))
	for _, m := range months {
		out = append(out, MonthItem{
			Month:    m,
			ISO:      m.Format("2006-01"),
			Name:     p.opts.Locale.AbbreviatedMonthName(m.Month()),
			Selected: p.nav.IsSelectedMonth(m),
		})
	}
	return out
}

func (p *Picker) years() []YearItem {
	lo, hi := p.nav.YearRange(p.opts.MinDate, p.opts.MaxDate)
	if hi < lo {
		return nil
	}
	out := make([]YearItem, 0, hi-lo+1)
	for y := lo; y <= hi; y++ {
		out = append(out, YearItem{
			Year:      y,
			ElementID: p.YearElementID(y),
			Selected:  p.nav.IsSelectedYear(y),
		})
	}
	return out
}
