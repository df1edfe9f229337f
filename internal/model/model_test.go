package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOccurrenceDays(t *testing.T) {
	at := func(d, h int) time.Time { return time.Date(2024, time.March, d, h, 0, 0, 0, time.UTC) }
	day := func(d int) time.Time { return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC) }

	cases := []struct {
		name string
		occ  Occurrence
		want []time.Time
	}{
		{"timed", Occurrence{Start: at(4, 9), End: at(4, 10)}, []time.Time{day(4)}},
		{"overnight", Occurrence{Start: at(4, 22), End: at(5, 2)}, []time.Time{day(4), day(5)}},
		{"all day", Occurrence{Start: day(4), End: day(5), AllDay: true}, []time.Time{day(4)}},
		{"three days", Occurrence{Start: day(4), End: day(7), AllDay: true}, []time.Time{day(4), day(5), day(6)}},
		{"zero length", Occurrence{Start: at(4, 9), End: at(4, 9)}, []time.Time{day(4)}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.occ.Days())
		})
	}
}
