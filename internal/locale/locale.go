// Package locale holds the immutable culture descriptors the calendar reads:
// day and month names, the first day of the week, the week-numbering rule
// and the date patterns used for titles.
package locale

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

var ErrUnknownLocale = errors.New("unknown locale")

// WeekRule decides which week of a year is week 1.
type WeekRule int

const (
	// FirstDay: week 1 is the week containing January 1.
	FirstDay WeekRule = iota
	// FirstFullWeek: week 1 is the first week fully inside the year.
	FirstFullWeek
	// FirstFourDayWeek: week 1 is the first week with at least four days in
	// the year. With Monday as first day this is ISO-8601.
	FirstFourDayWeek
)

func (r WeekRule) String() string {
	switch r {
	case FirstDay:
		return "first_day"
	case FirstFullWeek:
		return "first_full_week"
	case FirstFourDayWeek:
		return "first_four_day_week"
	default:
		return "WeekRule(" + strconv.Itoa(int(r)) + ")"
	}
}

// Locale is a read-only culture descriptor. Name arrays are indexed the way
// time.Weekday and time.Month are: days start at Sunday, months at January.
type Locale struct {
	Name string

	DayNames              [7]string
	AbbreviatedDayNames   [7]string
	MonthNames            [12]string
	AbbreviatedMonthNames [12]string

	FirstDayOfWeek time.Weekday
	WeekRule       WeekRule

	// YearMonthPattern and ShortDatePattern use the tokens understood by
	// Format: yyyy, yy, MMMM, MMM, MM, M, dd, d. Text in single quotes is
	// copied verbatim.
	YearMonthPattern string
	ShortDatePattern string
}

// MonthName returns the full name of m.
func (l Locale) MonthName(m time.Month) string {
	return l.MonthNames[monthIndex(m)]
}

// AbbreviatedMonthName returns the short name of m.
func (l Locale) AbbreviatedMonthName(m time.Month) string {
	return l.AbbreviatedMonthNames[monthIndex(m)]
}

// YearMonth formats t with the locale's year/month pattern.
func (l Locale) YearMonth(t time.Time) string {
	return l.Format(t, l.YearMonthPattern)
}

// ShortDate formats t with the locale's short date pattern.
func (l Locale) ShortDate(t time.Time) string {
	return l.Format(t, l.ShortDatePattern)
}

// Format renders t using pattern. Runs of the same token letter are read
// greedily, so "MMMM" is the month name and "M" the bare month number.
func (l Locale) Format(t time.Time, pattern string) string {
	var b strings.Builder
	rs := []rune(pattern)
	for i := 0; i < len(rs); {
		c := rs[i]
		if c == '\'' {
			j := i + 1
			for j < len(rs) && rs[j] != '\'' {
				b.WriteRune(rs[j])
				j++
			}
			i = j + 1
			continue
		}
		n := 1
		for i+n < len(rs) && rs[i+n] == c {
			n++
		}
		switch c {
		case 'y':
			switch {
			case n == 1:
				b.WriteString(strconv.Itoa(t.Year() % 100))
			case n == 2:
				b.WriteString(fmt.Sprintf("%02d", t.Year()%100))
			default:
				b.WriteString(fmt.Sprintf("%0*d", n, t.Year()))
			}
		case 'M':
			switch {
			case n >= 4:
				b.WriteString(l.MonthName(t.Month()))
			case n == 3:
				b.WriteString(l.AbbreviatedMonthName(t.Month()))
			case n == 2:
				b.WriteString(fmt.Sprintf("%02d", int(t.Month())))
			default:
				b.WriteString(strconv.Itoa(int(t.Month())))
			}
		case 'd':
			switch {
			case n >= 4:
				b.WriteString(l.DayNames[t.Weekday()])
			case n == 3:
				b.WriteString(l.AbbreviatedDayNames[t.Weekday()])
			case n == 2:
				b.WriteString(fmt.Sprintf("%02d", t.Day()))
			default:
				b.WriteString(strconv.Itoa(t.Day()))
			}
		default:
			b.WriteString(strings.Repeat(string(c), n))
		}
		i += n
	}
	return b.String()
}

func monthIndex(m time.Month) int {
	i := int(m) - 1
	if i < 0 || i > 11 {
		return 0
	}
	return i
}

// Lookup returns the built-in locale registered under name. Matching is
// case-insensitive and accepts "_" in place of "-". An empty name yields
// the invariant culture.
func Lookup(name string) (Locale, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", "-"))
	if key == "" {
		return Invariant, nil
	}
	l, ok := builtin[key]
	if !ok {
		return Locale{}, fmt.Errorf("locale %q: %w", name, ErrUnknownLocale)
	}
	return l, nil
}

// Names lists the registered locale names in sorted order.
func Names() []string {
	out := make([]string, 0, len(builtin))
	for _, l := range builtin {
		out = append(out, l.Name)
	}
	sort.Strings(out)
	return out
}

// ParseWeekday reads "monday", "Mon", "1" and the like. It is used for
// first-day-of-week overrides coming from config, flags and HTTP queries.
func ParseWeekday(s string) (time.Weekday, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(v); err == nil {
		if n < 0 || n > 6 {
			return 0, fmt.Errorf("weekday %d out of range [0,6]", n)
		}
		return time.Weekday(n), nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if v == full || (len(v) >= 3 && strings.HasPrefix(full, v)) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}
