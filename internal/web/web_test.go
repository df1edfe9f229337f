package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"calpick/internal/calendar"
	"calpick/internal/config"
	"calpick/internal/dialog"
	"calpick/internal/locale"
	"calpick/internal/picker"
)

func fixedNow() time.Time { return time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC) }

func newTestServer(t *testing.T, mutate func(*config.Config), opts ...Option) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	if mutate != nil {
		mutate(cfg)
	}
	s, err := NewServer(cfg, append([]Option{WithClock(fixedNow)}, opts...)...)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndBasicAuth(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.BasicAuth = &config.BasicAuthConfig{Username: "admin", Password: "secret"}
	})
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/calendar", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")

	req := httptest.NewRequest(http.MethodGet, "/api/calendar", nil)
	req.SetBasicAuth("admin", "secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/calendar", nil)
	req.SetBasicAuth("admin", "wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBasicAuthDisabledWithEmptyCredentials(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.BasicAuth = &config.BasicAuthConfig{Username: "admin"}
	})
	rec := do(t, s.Handler(), http.MethodGet, "/api/calendar", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCalendarGrid(t *testing.T) {
	marked := picker.MarkerFunc(func(d time.Time) bool {
		return d.Equal(time.Date(2024, time.February, 14, 0, 0, 0, 0, time.UTC))
	})
	s := newTestServer(t, nil, WithMarker(marked))

	rec := do(t, s.Handler(), http.MethodGet, "/api/calendar?month=2024-02&locale=en-GB&week_numbers=true", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snap := decode[picker.Snapshot](t, rec)

	assert.Equal(t, picker.ViewDate, snap.View)
	assert.Equal(t, "Mon", snap.DayNames[0])
	require.Len(t, snap.Months, 1)

	m := snap.Months[0]
	assert.Equal(t, "February 2024", m.Title)
	assert.Equal(t, "2024-02-01", m.Start)
	require.Len(t, m.Weeks, calendar.WeeksPerMonth)
	assert.Equal(t, "5", m.Weeks[0].Number)
	assert.Equal(t, "2024-01-29", m.Weeks[0].Days[0].ISO)
	assert.True(t, m.Weeks[0].Days[0].Outside)

	var valentines picker.DayState
	for _, w := range m.Weeks {
		for _, d := range w.Days {
			if d.ISO == "2024-02-14" {
				valentines = d
			}
		}
	}
	assert.True(t, valentines.Marked)
}

func TestCalendarDefaultsAndMultiMonth(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s.Handler(), http.MethodGet, "/api/calendar?months=3&first_day=monday", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snap := decode[picker.Snapshot](t, rec)

	require.Len(t, snap.Months, 3)
	assert.Equal(t, "2024-06-01", snap.Months[0].Start)
	assert.Equal(t, "2024-08-01", snap.Months[2].Start)
	assert.True(t, snap.Months[0].First)
	assert.True(t, snap.Months[2].Last)
	assert.Equal(t, "Mon", snap.DayNames[0])
	assert.Equal(t, 3, snap.Columns)
}

func TestCalendarBadRequests(t *testing.T) {
	s := newTestServer(t, nil)
	for _, q := range []string{
		"month=2024-13",
		"locale=xx-XX",
		"first_day=someday",
		"months=0",
		"months=13",
		"week_numbers=maybe",
	} {
		rec := do(t, s.Handler(), http.MethodGet, "/api/calendar?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		assert.Contains(t, rec.Body.String(), `"error"`, q)
	}
}

func TestPickerLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/pickers", map[string]any{
		"title":    "Due date",
		"month":    "2024-03",
		"open_to":  "year",
		"min_date": "2024-03-10",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[PickerFrame](t, rec)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Due date", created.Title)
	assert.Equal(t, picker.ViewYear, created.Snapshot.View)
	require.Len(t, created.Tasks, 1)
	assert.Equal(t, "scroll", created.Tasks[0].Type)
	assert.Equal(t, created.Snapshot.ID+"2024", created.Tasks[0].ElementID)
	require.NotEmpty(t, created.Snapshot.Years)
	assert.Equal(t, 2024, created.Snapshot.Years[0].Year)
	assert.True(t, created.Snapshot.Years[0].Selected)

	base := "/api/pickers/" + created.ID

	// Tasks are handed out once.
	rec = do(t, h, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[PickerFrame](t, rec).Tasks)

	rec = do(t, h, http.MethodPost, base+"/actions", map[string]any{"action": "year", "year": 2025})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	frame := decode[PickerFrame](t, rec)
	assert.Equal(t, picker.ViewMonth, frame.Snapshot.View)
	require.Len(t, frame.Events, 1)
	assert.Equal(t, FrameEvent{Type: "month_changed", Previous: "2024-03", Current: "2025-03"}, frame.Events[0])
	assert.Len(t, frame.Snapshot.MonthItems, 12)

	rec = do(t, h, http.MethodPost, base+"/actions", map[string]any{"action": "select_month", "month": "2025-04"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	frame = decode[PickerFrame](t, rec)
	assert.Equal(t, picker.ViewDate, frame.Snapshot.View)
	assert.Equal(t, "2025-04-01", frame.Snapshot.Months[0].Start)

	rec = do(t, h, http.MethodPost, base+"/actions", map[string]any{"action": "day", "date": "2025-04-10"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	frame = decode[PickerFrame](t, rec)
	require.NotNil(t, frame.Accepted)
	assert.True(t, *frame.Accepted)
	assert.Equal(t, "2025-04-10", frame.Date)
	assert.Equal(t, "4/10/2025", frame.Snapshot.FormattedDate)
	assert.Equal(t, []FrameEvent{{Type: "date_changed", Current: "2025-04-10"}}, frame.Events)

	rec = do(t, h, http.MethodPost, base+"/actions", map[string]any{"action": "day", "date": "2024-03-01"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	frame = decode[PickerFrame](t, rec)
	require.NotNil(t, frame.Accepted)
	assert.False(t, *frame.Accepted, "days before min_date are disabled")
	assert.Equal(t, "2025-04-10", frame.Date)

	rec = do(t, h, http.MethodGet, "/api/pickers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]pickerSummary](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "2025-04-10", list[0].Date)

	rec = do(t, h, http.MethodDelete, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-04-10", decode[pickerSummary](t, rec).Date)

	rec = do(t, h, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPickerStartsOnStartMonth(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.StartMonth = "2023-11" })

	rec := do(t, s.Handler(), http.MethodPost, "/api/pickers", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	frame := decode[PickerFrame](t, rec)
	assert.Equal(t, "2023-11-01", frame.Snapshot.Months[0].Start)
	assert.Empty(t, frame.Events, "the start month is applied silently")
}

func TestPickerNavigationActions(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/pickers", map[string]any{"month": "2024-01", "display_months": 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	base := "/api/pickers/" + decode[PickerFrame](t, rec).ID + "/actions"

	steps := []struct {
		action map[string]any
		start  string
	}{
		{map[string]any{"action": "next_month"}, "2024-02-01"},
		{map[string]any{"action": "previous_year"}, "2023-02-01"},
		{map[string]any{"action": "next_year"}, "2024-02-01"},
		{map[string]any{"action": "previous_month"}, "2024-01-01"},
		{map[string]any{"action": "set_month", "month": "2030-07"}, "2030-07-01"},
	}
	for _, st := range steps {
		rec = do(t, h, http.MethodPost, base, st.action)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		frame := decode[PickerFrame](t, rec)
		assert.Equal(t, st.start, frame.Snapshot.Months[0].Start, st.action["action"])
		assert.Len(t, frame.Events, 1, st.action["action"])
	}

	rec = do(t, h, http.MethodPost, base, map[string]any{"action": "month_header", "offset": 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	frame := decode[PickerFrame](t, rec)
	assert.Equal(t, picker.ViewMonth, frame.Snapshot.View)
	assert.Equal(t, "2030-08", frame.Events[0].Current)

	rec = do(t, h, http.MethodPost, base, map[string]any{"action": "year_header"})
	require.Equal(t, http.StatusOK, rec.Code)
	frame = decode[PickerFrame](t, rec)
	assert.Equal(t, picker.ViewYear, frame.Snapshot.View)
	require.Len(t, frame.Tasks, 1)
	assert.Equal(t, frame.Snapshot.ID+"2030", frame.Tasks[0].ElementID)
}

func TestPickerActionErrors(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/pickers", map[string]any{"locale": "de-DE"})
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/api/pickers/" + decode[PickerFrame](t, rec).ID + "/actions"

	for _, body := range []map[string]any{
		{"action": "explode"},
		{"action": "day"},
		{"action": "day", "date": "2024-02-30"},
		{"action": "year"},
		{"action": "year", "year": 1800},
		{"action": "year", "year": 2200},
		{"action": "month_header", "offset": 1},
		{"action": "select_month", "month": "nope"},
	} {
		rec = do(t, h, http.MethodPost, base, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	rec = do(t, h, http.MethodPost, "/api/pickers/missing/actions", map[string]any{"action": "next_month"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req := httptest.NewRequest(http.MethodPost, base, bytes.NewReader([]byte("{")))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePickerBadRequests(t *testing.T) {
	s := newTestServer(t, nil)
	for _, body := range []map[string]any{
		{"locale": "xx"},
		{"first_day": "funday"},
		{"min_date": "2024/01/01"},
		{"open_to": "decade"},
		{"display_months": -1},
		{"display_months": 13},
		{"display_months": 20000},
	} {
		rec := do(t, s.Handler(), http.MethodPost, "/api/pickers", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestYearActionHonorsBounds(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/pickers", map[string]any{
		"month":    "2024-03",
		"min_date": "2020-01-01",
		"max_date": "2026-12-31",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	base := "/api/pickers/" + decode[PickerFrame](t, rec).ID + "/actions"

	for _, year := range []int{2019, 2027} {
		rec = do(t, h, http.MethodPost, base, map[string]any{"action": "year", "year": year})
		assert.Equal(t, http.StatusBadRequest, rec.Code, year)
	}
	for _, year := range []int{2020, 2026} {
		rec = do(t, h, http.MethodPost, base, map[string]any{"action": "year", "year": year})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		frame := decode[PickerFrame](t, rec)
		assert.Equal(t, picker.ViewMonth, frame.Snapshot.View)
		assert.Equal(t, fmt.Sprintf("%d-03", year), frame.Snapshot.MonthItems[2].ISO)
	}
}

func TestIdlePickersAreClosed(t *testing.T) {
	now := fixedNow()
	clock := func() time.Time { return now }
	s := newTestServer(t, func(c *config.Config) { c.SessionIdleMinutes = 30 }, WithClock(clock))
	h := s.Handler()

	create := func() string {
		rec := do(t, h, http.MethodPost, "/api/pickers", nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		return decode[PickerFrame](t, rec).ID
	}
	stale := create()
	active := create()

	now = now.Add(20 * time.Minute)
	rec := do(t, h, http.MethodGet, "/api/pickers/"+active, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	now = now.Add(15 * time.Minute)
	fresh := create()

	rec = do(t, h, http.MethodGet, "/api/pickers/"+stale, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "unused for 35 minutes")
	for _, id := range []string{active, fresh} {
		rec = do(t, h, http.MethodGet, "/api/pickers/"+id, nil)
		assert.Equal(t, http.StatusOK, rec.Code, id)
	}

	now = now.Add(time.Hour)
	assert.Equal(t, 2, s.CloseIdle())
	assert.Empty(t, s.dialogs.Open())
}

func TestIdleSweepDisabled(t *testing.T) {
	now := fixedNow()
	s := newTestServer(t, func(c *config.Config) { c.SessionIdleMinutes = 0 },
		WithClock(func() time.Time { return now }))

	_, err := s.ShowPicker("kept", dialog.NewParameters())
	require.NoError(t, err)
	now = now.AddDate(1, 0, 0)
	assert.Zero(t, s.CloseIdle())
	assert.Len(t, s.dialogs.Open(), 1)
}

func TestPickerLimit(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.MaxSessions = 2 })
	h := s.Handler()

	for i := 0; i < 2; i++ {
		rec := do(t, h, http.MethodPost, "/api/pickers", nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	rec := do(t, h, http.MethodPost, "/api/pickers", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "too many open pickers")

	_, err := s.ShowPicker("over", dialog.NewParameters())
	assert.ErrorIs(t, err, ErrTooManyPickers)
}

func TestShowPickerTypeMismatch(t *testing.T) {
	s := newTestServer(t, nil)

	_, err := s.ShowPicker("bad", dialog.NewParameters().Add(ParamDisplayMonths, "two"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, dialog.ErrTypeMismatch))
	assert.Equal(t, http.StatusBadRequest, statusFor(err))

	l, err := locale.Lookup("ko-KR")
	require.NoError(t, err)
	id, err := s.ShowPicker("ok", dialog.NewParameters().
		Add(ParamLocale, l).
		Add(ParamFirstDay, time.Monday).
		Add(ParamWeekNumbers, true).
		Add(ParamDateFormat, "yyyy-MM-dd"))
	require.NoError(t, err)

	frame, err := s.Frame(id)
	require.NoError(t, err)
	assert.Equal(t, "월", frame.Snapshot.DayNames[0])
	assert.True(t, frame.Snapshot.WeekNumbers)
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("x: %w", calendar.ErrInvalidArgument): http.StatusBadRequest,
		fmt.Errorf("x: %w", dialog.ErrTypeMismatch):      http.StatusBadRequest,
		fmt.Errorf("x: %w", locale.ErrUnknownLocale):     http.StatusBadRequest,
		fmt.Errorf("x: %w", dialog.ErrUnknownDialog):     http.StatusNotFound,
		fmt.Errorf("x: %w", ErrTooManyPickers):           http.StatusTooManyRequests,
		errors.New("boom"): http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusFor(err), err.Error())
	}
}

func TestStaticAndUnknownAPI(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s.Handler(), http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/pickers")

	rec = do(t, s.Handler(), http.MethodGet, "/api/nothing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestNewServerRejectsBadConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MinDate = "yesterday"
	_, err := NewServer(cfg)
	assert.Error(t, err)
}

func TestServeShutsDown(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newTestServer(t, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
}
