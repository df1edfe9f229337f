// Package tui is the interactive terminal host of the date picker.
package tui

import (
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"calpick/internal/calendar"
	appLog "calpick/internal/log"
	"calpick/internal/picker"
)

// renderedMsg arrives once the frame produced by an Update has been drawn.
type renderedMsg struct{ first bool }

// scrollMsg carries the element ids of the scroll tasks a frame queued.
type scrollMsg struct{ ids []string }

func renderedCmd(first bool) tea.Cmd {
	return func() tea.Msg { return renderedMsg{first: first} }
}

func scrollCmd(ids []string) tea.Cmd {
	return func() tea.Msg { return scrollMsg{ids: ids} }
}

// Model drives a picker.Picker from the keyboard.
type Model struct {
	p      *picker.Picker
	cursor time.Time
	focus  Focus

	picked *time.Time
	done   bool
	status string
}

func NewModel(p *picker.Picker) Model {
	return Model{p: p, focus: Focus{YearRows: defaultYearRows}}
}

// Picked returns the date chosen with enter, if any.
func (m Model) Picked() (time.Time, bool) {
	if m.picked == nil {
		return time.Time{}, false
	}
	return *m.picked, true
}

func (m Model) Init() tea.Cmd {
	return renderedCmd(true)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case renderedMsg:
		return m.handleRendered(msg)
	case scrollMsg:
		for _, id := range msg.ids {
			m.scrollTo(id)
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleRendered(msg renderedMsg) (tea.Model, tea.Cmd) {
	tasks := m.p.Rendered(msg.first)
	if msg.first {
		m.cursor = m.initialCursor()
		m.p.Hover(m.cursor)
	}

	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if st, ok := t.(picker.ScrollTask); ok {
			ids = append(ids, st.ElementID)
		}
	}
	if len(ids) == 0 {
		return m, nil
	}
	return m, scrollCmd(ids)
}

func (m Model) initialCursor() time.Time {
	if d, ok := m.p.Date(); ok {
		return d
	}
	today := m.p.Navigator().Today()
	if calendar.SameMonth(today, m.p.Month()) {
		return today
	}
	return m.p.Month()
}

// scrollTo focuses the year behind a year element id and centers it.
func (m *Model) scrollTo(id string) {
	year, err := strconv.Atoi(strings.TrimPrefix(id, m.p.ID()))
	if err != nil || !strings.HasPrefix(id, m.p.ID()) {
		appLog.Debug("tui: ignoring scroll target", "element_id", id)
		return
	}
	m.focus.Year = year
	m.centerYear()
}

func (m *Model) yearBounds() (int, int) {
	opts := m.p.Options()
	return m.p.Navigator().YearRange(opts.MinDate, opts.MaxDate)
}

func (m *Model) centerYear() {
	lo, hi := m.yearBounds()
	rows := m.focus.YearRows
	m.focus.YearTop = clamp(m.focus.Year-lo-rows/2, 0, max(hi-lo+1-rows, 0))
}

// keepYearVisible scrolls the list only as far as needed to show the focus.
func (m *Model) keepYearVisible() {
	lo, _ := m.yearBounds()
	idx := m.focus.Year - lo
	if idx < m.focus.YearTop {
		m.focus.YearTop = idx
	} else if idx >= m.focus.YearTop+m.focus.YearRows {
		m.focus.YearTop = idx - m.focus.YearRows + 1
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "ctrl+c", "q":
		m.done = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	switch m.p.View() {
	case picker.ViewYear:
		m.handleYearKey(msg.String())
	case picker.ViewMonth:
		m.handleMonthKey(msg.String())
	default:
		cmd = m.handleDateKey(msg.String())
	}
	if cmd != nil {
		return m, cmd
	}
	if m.p.NeedsRender() {
		return m, renderedCmd(false)
	}
	return m, nil
}

func (m *Model) handleDateKey(key string) tea.Cmd {
	switch key {
	case "left":
		m.moveCursor(-1)
	case "right":
		m.moveCursor(1)
	case "up":
		m.moveCursor(-calendar.DaysPerWeek)
	case "down":
		m.moveCursor(calendar.DaysPerWeek)
	case "h":
		m.p.PreviousMonth()
		m.shiftCursor(0, -1)
	case "l":
		m.p.NextMonth()
		m.shiftCursor(0, 1)
	case "H":
		m.p.PreviousYear()
		m.shiftCursor(-1, 0)
	case "L":
		m.p.NextYear()
		m.shiftCursor(1, 0)
	case "y":
		m.p.ClickYearHeader()
	case "m":
		m.p.ClickMonthHeader(0)
		m.focus.Month = m.p.Month()
	case "c", "backspace":
		m.p.ClearDate()
	case "enter", " ":
		if !m.p.ClickDay(m.cursor) {
			m.status = "that date cannot be picked"
			return nil
		}
		d, _ := m.p.Date()
		m.picked = &d
		m.done = true
		return tea.Quit
	case "esc":
		m.done = true
		return tea.Quit
	}
	return nil
}

func (m *Model) moveCursor(days int) {
	m.cursor = m.cursor.AddDate(0, 0, days)
	m.p.Hover(m.cursor)

	last := m.p.Options().DisplayMonths - 1
	if m.cursor.Before(m.p.Navigator().MonthStart(0)) {
		m.p.PreviousMonth()
	} else if m.cursor.After(m.p.Navigator().MonthEnd(last)) {
		m.p.NextMonth()
	}
}

// shiftCursor moves the cursor by whole years and months, clamping the day
// to the length of the target month.
func (m *Model) shiftCursor(years, months int) {
	target := calendar.StartOfMonth(m.cursor).AddDate(years, months, 0)
	day := min(m.cursor.Day(), calendar.EndOfMonth(target).Day())
	m.cursor = target.AddDate(0, 0, day-1)
	m.p.Hover(m.cursor)
}

func (m *Model) handleMonthKey(key string) {
	if m.focus.Month.IsZero() {
		m.focus.Month = m.p.Month()
	}
	year := m.focus.Month.Year()
	moveWithinYear := func(n int) {
		next := m.focus.Month.AddDate(0, n, 0)
		if next.Year() == year {
			m.focus.Month = next
		}
	}

	switch key {
	case "left":
		moveWithinYear(-1)
	case "right":
		moveWithinYear(1)
	case "up":
		moveWithinYear(-4)
	case "down":
		moveWithinYear(4)
	case "y":
		m.p.ClickYearHeader()
	case "enter", " ":
		m.p.SelectMonth(m.focus.Month)
		m.shiftCursorTo(m.focus.Month)
	case "esc":
		m.p.SelectMonth(m.p.Month())
	}
}

func (m *Model) handleYearKey(key string) {
	lo, hi := m.yearBounds()
	if m.focus.Year == 0 {
		m.focus.Year = m.p.Month().Year()
	}

	switch key {
	case "up", "left":
		m.focus.Year = max(m.focus.Year-1, lo)
		m.keepYearVisible()
	case "down", "right":
		m.focus.Year = min(m.focus.Year+1, hi)
		m.keepYearVisible()
	case "pgup":
		m.focus.Year = max(m.focus.Year-m.focus.YearRows, lo)
		m.keepYearVisible()
	case "pgdown":
		m.focus.Year = min(m.focus.Year+m.focus.YearRows, hi)
		m.keepYearVisible()
	case "enter", " ":
		m.p.ClickYear(m.focus.Year)
		m.focus.Month = m.p.Month()
	case "esc":
		m.p.SelectMonth(m.p.Month())
	}
}

// shiftCursorTo keeps the cursor's day of month while moving it to month.
func (m *Model) shiftCursorTo(month time.Time) {
	day := min(m.cursor.Day(), calendar.EndOfMonth(month).Day())
	m.cursor = calendar.StartOfMonth(month).AddDate(0, 0, day-1)
	m.p.Hover(m.cursor)
}

func (m Model) View() string {
	if m.done {
		return ""
	}
	s := m.p.Render()

	var b strings.Builder
	b.WriteString(Render(s, m.focus))
	b.WriteString("\n\n")
	if s.FormattedDate != "" {
		b.WriteString(statusStyle.Render("picked: " + s.FormattedDate))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(errorStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(helpFor(s.View)))
	b.WriteString("\n")
	return b.String()
}

func helpFor(v picker.View) string {
	switch v {
	case picker.ViewYear:
		return "↑/↓ year • pgup/pgdn page • enter choose • esc back • q quit"
	case picker.ViewMonth:
		return "arrows month • enter choose • y years • esc back • q quit"
	default:
		return "arrows day/week • h/l month • H/L year • m months • y years • enter pick • q quit"
	}
}
