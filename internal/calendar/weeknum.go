package calendar

import (
	"time"

	"calpick/internal/locale"
)

// WeekOfYear returns the week number of t under the given rule, counting
// weeks that begin on firstDay. Early-January days that precede week 1 get
// the last week number of the previous year. Late-December days are never
// moved into week 1 of the following year, so FirstFourDayWeek with Monday
// matches ISO-8601 except for those trailing days.
func WeekOfYear(t time.Time, rule locale.WeekRule, firstDay time.Weekday) int {
	switch rule {
	case locale.FirstFullWeek:
		return weekOfYearFullDays(t, firstDay, 7)
	case locale.FirstFourDayWeek:
		return weekOfYearFullDays(t, firstDay, 4)
	default:
		return firstDayWeekOfYear(t, firstDay)
	}
}

func firstDayWeekOfYear(t time.Time, firstDay time.Weekday) int {
	dayOfYear := t.YearDay() - 1
	// Weekday of January 1, possibly negative; only used modulo 7.
	dayForJan1 := int(t.Weekday()) - dayOfYear%7
	offset := (dayForJan1 - int(firstDay) + 14) % 7
	return (dayOfYear+offset)/7 + 1
}

// weekOfYearFullDays handles the rules where week 1 must hold at least
// fullDays days of the new year. Days before week 1 belong to the last week
// of the previous year.
func weekOfYearFullDays(t time.Time, firstDay time.Weekday, fullDays int) int {
	dayOfYear := t.YearDay() - 1
	dayForJan1 := int(t.Weekday()) - dayOfYear%7
	offset := (int(firstDay) - dayForJan1 + 14) % 7
	if offset != 0 && offset >= fullDays {
		offset -= 7
	}
	day := dayOfYear - offset
	if day >= 0 {
		return day/7 + 1
	}
	// Step back to December 31 of the previous year.
	return weekOfYearFullDays(t.AddDate(0, 0, -(dayOfYear+1)), firstDay, fullDays)
}
