package picker

import (
	"fmt"
	"strings"
)

// View is the granularity the picker currently shows.
type View int

const (
	ViewDate View = iota
	ViewMonth
	ViewYear
)

func (v View) String() string {
	switch v {
	case ViewDate:
		return "date"
	case ViewMonth:
		return "month"
	case ViewYear:
		return "year"
	default:
		return fmt.Sprintf("View(%d)", int(v))
	}
}

// ParseView accepts the String forms, case-insensitively. Empty means date.
func ParseView(s string) (View, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "date":
		return ViewDate, nil
	case "month":
		return ViewMonth, nil
	case "year":
		return ViewYear, nil
	default:
		return ViewDate, fmt.Errorf("invalid view %q", s)
	}
}

func (v View) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *View) UnmarshalText(b []byte) error {
	parsed, err := ParseView(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
