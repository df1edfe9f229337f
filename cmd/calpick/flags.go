package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"calpick/internal/config"
	"calpick/internal/locale"
	"calpick/internal/picker"
)

// pickerFlags are the per-invocation overrides shared by show, pick and
// snapshot. Empty values keep the config file's setting.
type pickerFlags struct {
	month       string
	date        string
	locale      string
	firstDay    string
	openTo      string
	months      int
	columns     int
	weekNumbers bool
}

func (f *pickerFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.month, "month", "", "month to show first (YYYY-MM)")
	fs.StringVar(&f.date, "date", "", "initially picked date (YYYY-MM-DD)")
	fs.StringVar(&f.locale, "locale", "", "culture name, e.g. en-GB or de-DE")
	fs.StringVar(&f.firstDay, "first-day", "", "first day of the week, e.g. monday")
	fs.StringVar(&f.openTo, "open-to", "", "initial view: date, month or year")
	fs.IntVar(&f.months, "months", 0, "number of months to display")
	fs.IntVar(&f.columns, "columns", 0, "maximum months per row")
	fs.BoolVar(&f.weekNumbers, "week-numbers", false, "show ISO-style week numbers")
}

// options merges the flags over the config's picker options.
func (f *pickerFlags) options(cmd *cobra.Command, c *config.Config) (picker.Options, error) {
	opts, err := c.PickerOptions()
	if err != nil {
		return opts, fmt.Errorf("config: %w", err)
	}

	if f.locale != "" {
		l, err := locale.Lookup(f.locale)
		if err != nil {
			return opts, err
		}
		opts.Locale = l
	}
	if f.firstDay != "" {
		d, err := locale.ParseWeekday(f.firstDay)
		if err != nil {
			return opts, fmt.Errorf("--first-day: %w", err)
		}
		opts.FirstDayOfWeek = &d
	}
	if f.openTo != "" {
		v, err := picker.ParseView(f.openTo)
		if err != nil {
			return opts, fmt.Errorf("--open-to: %w", err)
		}
		opts.OpenTo = v
	}
	if f.month != "" {
		m, err := config.ParseMonth(f.month, opts.Location)
		if err != nil {
			return opts, fmt.Errorf("--month: %w", err)
		}
		opts.Month = m
	}
	if f.date != "" {
		d, err := config.ParseDate(f.date, opts.Location)
		if err != nil {
			return opts, fmt.Errorf("--date: %w", err)
		}
		opts.Date = d
	}
	if f.months < 0 || f.months > picker.MaxDisplayMonths {
		return opts, fmt.Errorf("--months must be between 1 and %d", picker.MaxDisplayMonths)
	}
	if f.months > 0 {
		opts.DisplayMonths = f.months
	}
	if f.columns < 0 {
		return opts, fmt.Errorf("--columns must not be negative")
	}
	if f.columns > 0 {
		opts.MaxMonthColumns = f.columns
	}
	if cmd.Flags().Changed("week-numbers") {
		opts.ShowWeekNumbers = f.weekNumbers
	}
	return opts, nil
}
