package picker

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calpick/internal/calendar"
	"calpick/internal/locale"
)

func TestRenderDateView(t *testing.T) {
	monday := time.Monday
	p := newPicker(t, Options{
		Month:           ptr(day(2024, time.March, 1)),
		Date:            ptr(day(2024, time.March, 12)),
		FirstDayOfWeek:  &monday,
		ShowWeekNumbers: true,
		MinDate:         ptr(day(2024, time.March, 3)),
		Marker: MarkerFunc(func(d time.Time) bool {
			return calendar.SameDay(d, day(2024, time.March, 8))
		}),
	})
	p.Hover(day(2024, time.March, 20))

	s := p.Render()
	assert.Equal(t, ViewDate, s.View)
	assert.Equal(t, []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}, s.DayNames)
	assert.Equal(t, 1, s.Columns)
	assert.Empty(t, s.Years)
	assert.Empty(t, s.MonthItems)
	require.Len(t, s.Months, 1)

	block := s.Months[0]
	assert.Equal(t, "2024 March", block.Title)
	assert.Equal(t, "2024-03-01", block.Start)
	assert.True(t, block.First)
	assert.True(t, block.Last)
	require.Len(t, block.Weeks, calendar.WeeksPerMonth)

	first := block.Weeks[0]
	require.Len(t, first.Days, 7)
	assert.Equal(t, "2024-02-26", first.Days[0].ISO)
	assert.True(t, first.Days[0].Outside)
	assert.True(t, first.Days[0].Disabled)
	assert.Equal(t, "9", first.Number)

	byISO := map[string]DayState{}
	for _, w := range block.Weeks {
		for _, d := range w.Days {
			byISO[d.ISO] = d
		}
	}
	assert.True(t, byISO["2024-03-12"].Selected)
	assert.False(t, byISO["2024-03-13"].Selected)
	assert.True(t, byISO["2024-03-08"].Marked)
	assert.True(t, byISO["2024-03-20"].Hovered)
	assert.False(t, byISO["2024-03-03"].Disabled)
	assert.True(t, byISO["2024-03-02"].Disabled)

	// Last row of March 2024 (Monday start) lies fully in April.
	assert.Equal(t, "", block.Weeks[5].Number)
	assert.True(t, block.Weeks[5].Days[0].Outside)
}

func TestRenderTodayFlag(t *testing.T) {
	p := newPicker(t, Options{})
	s := p.Render()

	var today []string
	for _, w := range s.Months[0].Weeks {
		for _, d := range w.Days {
			if d.Today {
				today = append(today, d.ISO)
			}
		}
	}
	assert.Equal(t, []string{"2024-06-15"}, today)
}

func TestRenderMultipleMonths(t *testing.T) {
	us, err := locale.Lookup("en-US")
	require.NoError(t, err)

	p := newPicker(t, Options{
		Locale:          us,
		Month:           ptr(day(2024, time.November, 1)),
		DisplayMonths:   3,
		MaxMonthColumns: 2,
	})
	s := p.Render()

	assert.Equal(t, 2, s.Columns)
	require.Len(t, s.Months, 3)
	assert.Equal(t, []string{"November 2024", "December 2024", "January 2025"},
		[]string{s.Months[0].Title, s.Months[1].Title, s.Months[2].Title})
	assert.True(t, s.Months[0].First)
	assert.False(t, s.Months[1].First)
	assert.False(t, s.Months[1].Last)
	assert.True(t, s.Months[2].Last)
	assert.Equal(t, "", s.Months[0].Weeks[0].Number, "week numbers are off")
}

func TestRenderMonthView(t *testing.T) {
	p := newPicker(t, Options{Month: ptr(day(2024, time.March, 1)), OpenTo: ViewMonth})
	s := p.Render()

	assert.Empty(t, s.Months)
	require.Len(t, s.MonthItems, 12)
	assert.Equal(t, "Jan", s.MonthItems[0].Name)
	assert.Equal(t, "2024-03", s.MonthItems[2].ISO)
	assert.True(t, s.MonthItems[2].Selected)
	assert.False(t, s.MonthItems[3].Selected)
}

func TestRenderYearView(t *testing.T) {
	p := newPicker(t, Options{
		Month:   ptr(day(2024, time.March, 1)),
		OpenTo:  ViewYear,
		MinDate: ptr(day(2020, time.January, 1)),
		MaxDate: ptr(day(2030, time.December, 31)),
	})
	s := p.Render()

	require.Len(t, s.Years, 11)
	assert.Equal(t, 2020, s.Years[0].Year)
	assert.Equal(t, 2030, s.Years[10].Year)
	assert.True(t, s.Years[4].Selected)
	assert.Equal(t, p.ID()+"2024", s.Years[4].ElementID)
	assert.Equal(t, "2024", s.YearTitle)

	unbounded := newPicker(t, Options{OpenTo: ViewYear})
	assert.Len(t, unbounded.Render().Years, 201)
}

func TestSnapshotJSON(t *testing.T) {
	p := newPicker(t, Options{Month: ptr(day(2024, time.March, 1)), Date: ptr(day(2024, time.March, 2))})
	b, err := json.Marshal(p.Render())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "date", decoded["view"])
	assert.Equal(t, "03/02/2024", decoded["formatted_date"])

	months := decoded["months"].([]any)
	require.Len(t, months, 1)
	weeks := months[0].(map[string]any)["weeks"].([]any)
	days := weeks[0].(map[string]any)["days"].([]any)
	assert.Equal(t, "2024-02-25", days[0].(map[string]any)["date"])
}
