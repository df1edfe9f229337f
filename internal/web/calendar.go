package web

import (
	"fmt"
	"net/http"
	"strconv"

	"calpick/internal/calendar"
	"calpick/internal/config"
	"calpick/internal/locale"
	appLog "calpick/internal/log"
	"calpick/internal/picker"
)

// handleCalendar draws a stateless month grid.
//
// GET /api/calendar?month=2024-02&locale=de-DE&first_day=monday&months=2&week_numbers=true
//   - month:        YYYY-MM, default the current month
//   - locale:       culture name, default from config
//   - first_day:    weekday override
//   - months:       number of months side by side
//   - week_numbers: show the week-of-year column
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	opts, err := s.calendarOptions(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	p := picker.New(opts)
	p.Rendered(true)
	snap := p.Render()

	appLog.Debug("api calendar request", "month", p.Month().Format("2006-01"),
		"locale", opts.Locale.Name, "months", opts.DisplayMonths)
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) calendarOptions(r *http.Request) (picker.Options, error) {
	q := r.URL.Query()
	opts := s.base
	opts.OpenTo = picker.ViewDate

	if name := q.Get("locale"); name != "" {
		l, err := locale.Lookup(name)
		if err != nil {
			return opts, err
		}
		opts.Locale = l
	}
	if fd := q.Get("first_day"); fd != "" {
		d, err := locale.ParseWeekday(fd)
		if err != nil {
			return opts, fmt.Errorf("first_day: %v: %w", err, calendar.ErrInvalidArgument)
		}
		opts.FirstDayOfWeek = &d
	}
	if m := q.Get("month"); m != "" {
		month, err := config.ParseMonth(m, opts.Location)
		if err != nil {
			return opts, fmt.Errorf("month %q: %w", m, calendar.ErrInvalidArgument)
		}
		opts.Month = month
	}

	months := parseIntDefault(q.Get("months"), max(opts.DisplayMonths, 1))
	if months < 1 || months > picker.MaxDisplayMonths {
		return opts, fmt.Errorf("months %d outside [1,%d]: %w", months, picker.MaxDisplayMonths, calendar.ErrInvalidArgument)
	}
	opts.DisplayMonths = months

	if wn := q.Get("week_numbers"); wn != "" {
		b, err := strconv.ParseBool(wn)
		if err != nil {
			return opts, fmt.Errorf("week_numbers %q: %w", wn, calendar.ErrInvalidArgument)
		}
		opts.ShowWeekNumbers = b
	}
	return opts, nil
}
