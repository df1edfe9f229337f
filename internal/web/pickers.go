package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"calpick/internal/calendar"
	"calpick/internal/config"
	"calpick/internal/dialog"
	"calpick/internal/locale"
	appLog "calpick/internal/log"
	"calpick/internal/picker"
)

// KindDatePicker is the dialog kind that builds picker sessions.
const KindDatePicker = "datepicker"

// Parameter names understood by the datepicker factory, with their types.
const (
	ParamLocale          = "locale"            // locale.Locale
	ParamFirstDay        = "first_day"         // time.Weekday
	ParamMinDate         = "min_date"          // *time.Time
	ParamMaxDate         = "max_date"          // *time.Time
	ParamStartMonth      = "start_month"       // *time.Time
	ParamMonth           = "month"             // *time.Time
	ParamDate            = "date"              // *time.Time
	ParamOpenTo          = "open_to"           // picker.View
	ParamDisplayMonths   = "display_months"    // int
	ParamMaxMonthColumns = "max_month_columns" // int
	ParamWeekNumbers     = "week_numbers"      // bool
	ParamDateFormat      = "date_format"       // string
)

// ErrTooManyPickers is returned by ShowPicker once max_sessions are open.
var ErrTooManyPickers = errors.New("too many open pickers")

// session is one picker shown through the dialog service.
type session struct {
	picker *picker.Picker
	drawn  bool
	events []FrameEvent

	// lastUsed is refreshed on every lookup; idle sessions are closed.
	lastUsed time.Time
}

// FrameEvent is a month or date change raised since the previous frame.
type FrameEvent struct {
	Type     string `json:"type"`
	Previous string `json:"previous,omitempty"`
	Current  string `json:"current,omitempty"`
}

// FrameTask is deferred work for the client, e.g. scrolling the year list.
type FrameTask struct {
	Type      string `json:"type"`
	ElementID string `json:"element_id"`
}

// PickerFrame is what every picker endpoint answers with.
type PickerFrame struct {
	ID       string          `json:"id"`
	Title    string          `json:"title,omitempty"`
	Date     string          `json:"date,omitempty"`
	Accepted *bool           `json:"accepted,omitempty"`
	Snapshot picker.Snapshot `json:"snapshot"`
	Tasks    []FrameTask     `json:"tasks"`
	Events   []FrameEvent    `json:"events"`
}

type pickerSummary struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	Date  string `json:"date,omitempty"`
}

// createRequest is the JSON body of POST /api/pickers. Empty fields keep the
// configured defaults.
type createRequest struct {
	Title           string `json:"title"`
	Locale          string `json:"locale"`
	FirstDay        string `json:"first_day"`
	MinDate         string `json:"min_date"`
	MaxDate         string `json:"max_date"`
	StartMonth      string `json:"start_month"`
	Month           string `json:"month"`
	Date            string `json:"date"`
	OpenTo          string `json:"open_to"`
	DisplayMonths   int    `json:"display_months"`
	MaxMonthColumns int    `json:"max_month_columns"`
	WeekNumbers     *bool  `json:"week_numbers"`
	DateFormat      string `json:"date_format"`
}

// actionRequest is the JSON body of POST /api/pickers/{id}/actions.
type actionRequest struct {
	Action string `json:"action"`
	Date   string `json:"date"`
	Month  string `json:"month"`
	Year   int    `json:"year"`
	Offset int    `json:"offset"`
}

func monthString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01")
}

// newSession is the dialog factory for KindDatePicker. Parameters override
// the server defaults one by one.
func (s *Server) newSession(params *dialog.Parameters) (any, error) {
	opts := s.base
	sess := &session{lastUsed: s.clock()}

	if err := override(params, ParamLocale, &opts.Locale); err != nil {
		return nil, err
	}
	if params.Has(ParamFirstDay) {
		d, err := dialog.Get[time.Weekday](params, ParamFirstDay)
		if err != nil {
			return nil, err
		}
		opts.FirstDayOfWeek = &d
	}
	for name, dst := range map[string]**time.Time{
		ParamMinDate:    &opts.MinDate,
		ParamMaxDate:    &opts.MaxDate,
		ParamStartMonth: &opts.StartMonth,
		ParamMonth:      &opts.Month,
		ParamDate:       &opts.Date,
	} {
		if err := override(params, name, dst); err != nil {
			return nil, err
		}
	}
	if err := override(params, ParamOpenTo, &opts.OpenTo); err != nil {
		return nil, err
	}
	if err := override(params, ParamDisplayMonths, &opts.DisplayMonths); err != nil {
		return nil, err
	}
	if err := override(params, ParamMaxMonthColumns, &opts.MaxMonthColumns); err != nil {
		return nil, err
	}
	if err := override(params, ParamWeekNumbers, &opts.ShowWeekNumbers); err != nil {
		return nil, err
	}
	format, err := dialog.TryGet[string](params, ParamDateFormat)
	if err != nil {
		return nil, err
	}
	if format != "" {
		opts.DateFormat = format
	}

	opts.OnMonthChanged = func(ch calendar.Change) {
		sess.events = append(sess.events, FrameEvent{
			Type:     "month_changed",
			Previous: monthString(ch.Previous),
			Current:  monthString(ch.Current),
		})
	}
	opts.OnDateChanged = func(d *time.Time) {
		ev := FrameEvent{Type: "date_changed"}
		if d != nil {
			ev.Current = d.Format("2006-01-02")
		}
		sess.events = append(sess.events, ev)
	}

	sess.picker = picker.New(opts)
	return sess, nil
}

// override copies the named parameter into dst when it is present.
func override[T any](params *dialog.Parameters, name string, dst *T) error {
	if !params.Has(name) {
		return nil
	}
	v, err := dialog.Get[T](params, name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// parameters converts the request into the typed bag the factory reads.
func (req createRequest) parameters(loc *time.Location) (*dialog.Parameters, error) {
	params := dialog.NewParameters()

	if req.Locale != "" {
		l, err := locale.Lookup(req.Locale)
		if err != nil {
			return nil, err
		}
		params.Add(ParamLocale, l)
	}
	if req.FirstDay != "" {
		d, err := locale.ParseWeekday(req.FirstDay)
		if err != nil {
			return nil, fmt.Errorf("first_day: %v: %w", err, calendar.ErrInvalidArgument)
		}
		params.Add(ParamFirstDay, d)
	}

	dates := []struct {
		name, value string
		parse       func(string, *time.Location) (*time.Time, error)
	}{
		{ParamMinDate, req.MinDate, config.ParseDate},
		{ParamMaxDate, req.MaxDate, config.ParseDate},
		{ParamStartMonth, req.StartMonth, config.ParseMonth},
		{ParamMonth, req.Month, config.ParseMonth},
		{ParamDate, req.Date, config.ParseDate},
	}
	for _, d := range dates {
		if d.value == "" {
			continue
		}
		t, err := d.parse(d.value, loc)
		if err != nil {
			return nil, fmt.Errorf("%s: %v: %w", d.name, err, calendar.ErrInvalidArgument)
		}
		params.Add(d.name, t)
	}

	if req.OpenTo != "" {
		v, err := picker.ParseView(req.OpenTo)
		if err != nil {
			return nil, fmt.Errorf("open_to: %v: %w", err, calendar.ErrInvalidArgument)
		}
		params.Add(ParamOpenTo, v)
	}
	if req.DisplayMonths < 0 || req.MaxMonthColumns < 0 {
		return nil, fmt.Errorf("month counts must not be negative: %w", calendar.ErrInvalidArgument)
	}
	if req.DisplayMonths > picker.MaxDisplayMonths {
		return nil, fmt.Errorf("display_months %d outside [1,%d]: %w",
			req.DisplayMonths, picker.MaxDisplayMonths, calendar.ErrInvalidArgument)
	}
	if req.DisplayMonths > 0 {
		params.Add(ParamDisplayMonths, req.DisplayMonths)
	}
	if req.MaxMonthColumns > 0 {
		params.Add(ParamMaxMonthColumns, req.MaxMonthColumns)
	}
	if req.WeekNumbers != nil {
		params.Add(ParamWeekNumbers, *req.WeekNumbers)
	}
	if req.DateFormat != "" {
		params.Add(ParamDateFormat, req.DateFormat)
	}
	return params, nil
}

// ShowPicker opens a picker session seeded from params and returns its id.
func (s *Server) ShowPicker(title string, params *dialog.Parameters) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeIdle()
	if limit := s.cfg.MaxSessions; limit > 0 && len(s.dialogs.Open()) >= limit {
		return "", fmt.Errorf("picker limit %d reached: %w", limit, ErrTooManyPickers)
	}
	ref, err := s.dialogs.Show(KindDatePicker, title, params)
	if err != nil {
		return "", err
	}
	appLog.Info("picker opened", "id", ref.ID, "params", ref.Params.Names())
	return ref.ID, nil
}

// lookup returns the session behind id. Callers hold s.mu.
func (s *Server) lookup(id string) (*dialog.Reference, *session, error) {
	ref, ok := s.dialogs.Get(id)
	if !ok {
		return nil, nil, fmt.Errorf("picker %s: %w", id, dialog.ErrUnknownDialog)
	}
	sess, err := dialog.As[*session](ref)
	if err != nil {
		return nil, nil, err
	}
	sess.lastUsed = s.clock()
	return ref, sess, nil
}

// closeIdle closes sessions unused for session_idle_minutes and returns how
// many it closed. Callers hold s.mu.
func (s *Server) closeIdle() int {
	if s.cfg.SessionIdleMinutes <= 0 {
		return 0
	}
	cutoff := s.clock().Add(-time.Duration(s.cfg.SessionIdleMinutes) * time.Minute)

	closed := 0
	for _, ref := range s.dialogs.Open() {
		sess, err := dialog.As[*session](ref)
		if err != nil || !sess.lastUsed.Before(cutoff) {
			continue
		}
		if _, err := s.dialogs.Close(ref.ID, nil); err == nil {
			closed++
		}
	}
	if closed > 0 {
		appLog.Info("idle pickers closed", "count", closed, "open", len(s.dialogs.Open()))
	}
	return closed
}

// CloseIdle runs the idle sweep outside of ShowPicker.
func (s *Server) CloseIdle() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeIdle()
}

// frame draws the session and drains whatever the draw queued. Callers hold
// s.mu.
func (s *Server) frame(ref *dialog.Reference, sess *session) PickerFrame {
	p := sess.picker
	snap := p.Render()
	tasks := p.Rendered(!sess.drawn)
	if !sess.drawn {
		// The first frame settles the start month; draw it again.
		sess.drawn = true
		snap = p.Render()
	}

	resp := PickerFrame{
		ID:       ref.ID,
		Title:    ref.Title,
		Snapshot: snap,
		Tasks:    make([]FrameTask, 0, len(tasks)),
		Events:   sess.events,
	}
	if resp.Events == nil {
		resp.Events = []FrameEvent{}
	}
	sess.events = nil
	if d, ok := p.Date(); ok {
		resp.Date = d.Format("2006-01-02")
	}
	for _, t := range tasks {
		if st, ok := t.(picker.ScrollTask); ok {
			resp.Tasks = append(resp.Tasks, FrameTask{Type: "scroll", ElementID: st.ElementID})
		}
	}
	return resp
}

// Frame returns the next frame of the picker id, as GET /api/pickers/{id}
// does.
func (s *Server) Frame(id string) (PickerFrame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref, sess, err := s.lookup(id)
	if err != nil {
		return PickerFrame{}, err
	}
	return s.frame(ref, sess), nil
}

func (s *Server) handleCreatePicker(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	params, err := req.parameters(s.base.Location)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	id, err := s.ShowPicker(req.Title, params)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp, err := s.Frame(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListPickers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]pickerSummary, 0)
	for _, ref := range s.dialogs.Open() {
		sum := pickerSummary{ID: ref.ID, Title: ref.Title}
		if sess, err := dialog.As[*session](ref); err == nil {
			if d, ok := sess.picker.Date(); ok {
				sum.Date = d.Format("2006-01-02")
			}
		}
		out = append(out, sum)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetPicker(w http.ResponseWriter, r *http.Request) {
	resp, err := s.Frame(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePickerAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ref, sess, err := s.lookup(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	accepted, err := s.apply(sess, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	appLog.Debug("picker action", "id", ref.ID, "action", req.Action)

	resp := s.frame(ref, sess)
	resp.Accepted = accepted
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClosePicker(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := r.PathValue("id")
	_, sess, err := s.lookup(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var result *time.Time
	if d, ok := sess.picker.Date(); ok {
		result = &d
	}
	ref, err := s.dialogs.Close(id, result)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	appLog.Info("picker closed", "id", id)

	sum := pickerSummary{ID: ref.ID, Title: ref.Title}
	if result != nil {
		sum.Date = result.Format("2006-01-02")
	}
	writeJSON(w, http.StatusOK, sum)
}

// apply runs one action. accepted is only set for day clicks.
func (s *Server) apply(sess *session, req actionRequest) (*bool, error) {
	p := sess.picker
	loc := p.Navigator().Location()

	switch req.Action {
	case "open":
		p.Open()
	case "year_header":
		p.ClickYearHeader()
	case "year":
		opts := p.Options()
		lo, hi := p.Navigator().YearRange(opts.MinDate, opts.MaxDate)
		if req.Year < lo || req.Year > hi {
			return nil, fmt.Errorf("year %d outside [%d,%d]: %w", req.Year, lo, hi, calendar.ErrInvalidArgument)
		}
		p.ClickYear(req.Year)
	case "month_header":
		if req.Offset < 0 || req.Offset >= p.Options().DisplayMonths {
			return nil, fmt.Errorf("month offset %d: %w", req.Offset, calendar.ErrInvalidArgument)
		}
		p.ClickMonthHeader(req.Offset)
	case "select_month":
		m, err := requiredMonth(req.Month, loc)
		if err != nil {
			return nil, err
		}
		p.SelectMonth(*m)
	case "set_month":
		// An empty month clears the binding.
		m, err := config.ParseMonth(req.Month, loc)
		if err != nil {
			return nil, fmt.Errorf("month %q: %w", req.Month, calendar.ErrInvalidArgument)
		}
		p.SetMonth(m)
	case "previous_month":
		p.PreviousMonth()
	case "next_month":
		p.NextMonth()
	case "previous_year":
		p.PreviousYear()
	case "next_year":
		p.NextYear()
	case "day":
		d, err := requiredDate(req.Date, loc)
		if err != nil {
			return nil, err
		}
		ok := p.ClickDay(*d)
		return &ok, nil
	case "hover":
		d, err := requiredDate(req.Date, loc)
		if err != nil {
			return nil, err
		}
		p.Hover(*d)
	case "clear":
		p.ClearDate()
	default:
		return nil, fmt.Errorf("unknown action %q: %w", req.Action, calendar.ErrInvalidArgument)
	}
	return nil, nil
}

func requiredDate(s string, loc *time.Location) (*time.Time, error) {
	d, err := config.ParseDate(s, loc)
	if err != nil || d == nil {
		return nil, fmt.Errorf("date %q: %w", s, calendar.ErrInvalidArgument)
	}
	return d, nil
}

func requiredMonth(s string, loc *time.Location) (*time.Time, error) {
	m, err := config.ParseMonth(s, loc)
	if err != nil || m == nil {
		return nil, fmt.Errorf("month %q: %w", s, calendar.ErrInvalidArgument)
	}
	return m, nil
}
