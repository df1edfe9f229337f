package calendar

import "time"

// StartOfMonth returns the first day of t's month at midnight in t's location.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth returns the last day of t's month at midnight.
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, -1)
}

// StartOfWeek returns the closest date on or before t that falls on
// firstDay, truncated to midnight.
func StartOfWeek(t time.Time, firstDay time.Weekday) time.Time {
	diff := (7 + int(t.Weekday()) - int(firstDay)) % 7
	d := DateOf(t)
	return d.AddDate(0, 0, -diff)
}

// DateOf strips the clock part of t.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// SameMonth reports whether a and b fall in the same year and month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// addMonths moves a month start by n months. Operating on day 1 keeps
// time.AddDate from spilling into the following month.
func addMonths(monthStart time.Time, n int) time.Time {
	return StartOfMonth(monthStart).AddDate(0, n, 0)
}
