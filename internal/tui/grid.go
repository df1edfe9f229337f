package tui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"calpick/internal/calendar"
	"calpick/internal/picker"
)

const defaultYearRows = 9

// Focus is the keyboard position drawn on top of a snapshot. The day
// cursor travels through the picker's hover state, so only the month and
// year lists need it.
type Focus struct {
	Month time.Time
	Year  int

	// YearTop is the index of the first visible year, YearRows how many
	// are shown.
	YearTop  int
	YearRows int
}

// Render draws the active view of s as a terminal block.
func Render(s picker.Snapshot, f Focus) string {
	switch s.View {
	case picker.ViewYear:
		return renderYears(s, f)
	case picker.ViewMonth:
		return renderMonthItems(s, f)
	default:
		return renderDays(s)
	}
}

func cell(st lipgloss.Style, text string) string {
	return st.Width(cellWidth).Align(lipgloss.Right).Render(text)
}

func renderDays(s picker.Snapshot) string {
	blocks := make([]string, 0, len(s.Months))
	for _, m := range s.Months {
		blocks = append(blocks, renderMonth(s, m))
	}

	cols := max(s.Columns, 1)
	rows := make([]string, 0, (len(blocks)+cols-1)/cols)
	for i := 0; i < len(blocks); i += cols {
		end := min(i+cols, len(blocks))
		row := make([]string, 0, end-i)
		for j, b := range blocks[i:end] {
			if j > 0 {
				b = lipgloss.NewStyle().PaddingLeft(3).Render(b)
			}
			row = append(row, b)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderMonth(s picker.Snapshot, m picker.MonthBlock) string {
	width := cellWidth * calendar.DaysPerWeek
	if s.WeekNumbers {
		width += cellWidth
	}

	lines := make([]string, 0, len(m.Weeks)+2)
	lines = append(lines, titleStyle.Width(width).Align(lipgloss.Center).Render(m.Title))

	header := make([]string, 0, calendar.DaysPerWeek+1)
	if s.WeekNumbers {
		header = append(header, cell(weekNumStyle, ""))
	}
	for _, d := range s.DayNames {
		header = append(header, cell(headerStyle, d))
	}
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, header...))

	for _, w := range m.Weeks {
		row := make([]string, 0, len(w.Days)+1)
		if s.WeekNumbers {
			row = append(row, cell(weekNumStyle, w.Number))
		}
		for _, d := range w.Days {
			row = append(row, cell(dayCellStyle(d), strconv.Itoa(d.Day)))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return strings.Join(lines, "\n")
}

func dayCellStyle(d picker.DayState) lipgloss.Style {
	switch {
	case d.Selected:
		return selectedStyle
	case d.Hovered:
		return cursorStyle
	case d.Disabled:
		return disabledStyle
	case d.Today:
		return todayStyle
	case d.Marked:
		return markedStyle
	case d.Outside:
		return outsideStyle
	default:
		return dayStyle
	}
}

func renderMonthItems(s picker.Snapshot, f Focus) string {
	const perRow = 4
	item := lipgloss.NewStyle().Width(6).Align(lipgloss.Center)

	lines := []string{titleStyle.Render(s.YearTitle)}
	for i := 0; i < len(s.MonthItems); i += perRow {
		end := min(i+perRow, len(s.MonthItems))
		row := make([]string, 0, perRow)
		for _, it := range s.MonthItems[i:end] {
			st := item.Foreground(colorText)
			switch {
			case !f.Month.IsZero() && calendar.SameMonth(it.Month, f.Month):
				st = item.Reverse(true)
			case it.Selected:
				st = item.Foreground(colorBase).Background(colorBlue)
			}
			row = append(row, st.Render(it.Name))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return strings.Join(lines, "\n")
}

func renderYears(s picker.Snapshot, f Focus) string {
	rows := f.YearRows
	if rows <= 0 {
		rows = defaultYearRows
	}
	top := clamp(f.YearTop, 0, max(len(s.Years)-rows, 0))
	end := min(top+rows, len(s.Years))

	item := lipgloss.NewStyle().Width(8).Align(lipgloss.Center)
	lines := []string{titleStyle.Render(s.YearTitle)}
	lines = append(lines, scrollHint(top > 0, "▲"))
	for _, y := range s.Years[top:end] {
		st := item.Foreground(colorText)
		switch {
		case y.Year == f.Year:
			st = item.Reverse(true)
		case y.Selected:
			st = item.Foreground(colorBase).Background(colorBlue)
		}
		lines = append(lines, st.Render(strconv.Itoa(y.Year)))
	}
	lines = append(lines, scrollHint(end < len(s.Years), "▼"))
	return strings.Join(lines, "\n")
}

func scrollHint(more bool, arrow string) string {
	if !more {
		return ""
	}
	return helpStyle.Width(8).Align(lipgloss.Center).Render(arrow)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
