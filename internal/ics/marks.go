package ics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	appLog "calpick/internal/log"
	"calpick/internal/model"
)

// Marker is the set of dates that hold at least one occurrence. It
// satisfies picker.Marker and is safe for concurrent use.
type Marker struct {
	mu        sync.RWMutex
	days      map[string]int
	updatedAt time.Time
}

func NewMarker() *Marker {
	return &Marker{days: make(map[string]int)}
}

func dayKey(t time.Time) string { return t.Format("2006-01-02") }

// Marked reports whether day, read as a calendar date, has occurrences.
func (m *Marker) Marked(day time.Time) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.days[dayKey(day)] > 0
}

// Count returns the number of occurrences touching day.
func (m *Marker) Count(day time.Time) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.days[dayKey(day)]
}

// Len returns how many distinct dates are marked.
func (m *Marker) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.days)
}

func (m *Marker) UpdatedAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.updatedAt
}

// Replace swaps the whole mark set for the dates spanned by occ.
func (m *Marker) Replace(occ []model.Occurrence) {
	days := make(map[string]int)
	for _, o := range occ {
		for _, d := range o.Days() {
			days[dayKey(d)]++
		}
	}
	m.mu.Lock()
	m.days = days
	m.updatedAt = time.Now()
	m.mu.Unlock()
}

// RefresherConfig wires a Refresher.
type RefresherConfig struct {
	Fetcher     *Fetcher
	Sources     []Source
	Marker      *Marker
	Location    *time.Location
	RangeMonths int
	Now         func() time.Time
}

// Refresher rebuilds a Marker from its feeds, once or on a cron schedule.
type Refresher struct {
	cfg RefresherConfig
}

func NewRefresher(cfg RefresherConfig) *Refresher {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.RangeMonths <= 0 {
		cfg.RangeMonths = 12
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Marker == nil {
		cfg.Marker = NewMarker()
	}
	return &Refresher{cfg: cfg}
}

func (r *Refresher) Marker() *Marker { return r.cfg.Marker }

// Refresh fetches, parses and expands all feeds and replaces the marks.
// Feeds that fail are skipped; an error is returned only when every feed
// failed, in which case the previous marks are kept.
func (r *Refresher) Refresh(ctx context.Context) error {
	if len(r.cfg.Sources) == 0 {
		r.cfg.Marker.Replace(nil)
		return nil
	}

	results, errs := r.cfg.Fetcher.FetchAll(ctx, r.cfg.Sources)
	if len(results) == 0 && len(errs) > 0 {
		return fmt.Errorf("refresh marks: %w", errors.Join(errs...))
	}

	parsed := make([]ParsedEvent, 0)
	for _, res := range results {
		events, err := ParseICS(res.Source, res.Body, r.cfg.Location)
		if err != nil {
			appLog.Error("refresh marks: parse failed", err, "id", res.Source.ID)
			continue
		}
		parsed = append(parsed, events...)
	}

	now := r.cfg.Now().In(r.cfg.Location)
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, r.cfg.Location)
	occ, err := ExpandOccurrences(parsed, ExpandConfig{
		Location:   r.cfg.Location,
		RangeStart: month.AddDate(0, -r.cfg.RangeMonths, 0),
		RangeEnd:   month.AddDate(0, r.cfg.RangeMonths+1, 0),
	})
	if err != nil {
		return err
	}

	r.cfg.Marker.Replace(occ)
	appLog.Info("marks refreshed", "sources", len(results), "failed", len(errs),
		"occurrences", len(occ), "days", r.cfg.Marker.Len())
	return nil
}

// Run refreshes once, then again on every tick of spec until ctx is done.
func (r *Refresher) Run(ctx context.Context, spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if err := r.Refresh(ctx); err != nil {
			appLog.Error("scheduled marks refresh failed", err)
		}
	}); err != nil {
		return fmt.Errorf("marks schedule %q: %w", spec, err)
	}

	if err := r.Refresh(ctx); err != nil {
		appLog.Error("initial marks refresh failed", err)
	}

	c.Start()
	appLog.Info("marks scheduler started", "schedule", spec)
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
