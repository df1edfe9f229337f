package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"calpick/internal/locale"
	appLog "calpick/internal/log"
	"calpick/internal/picker"
)

// NOTE: Load creates the file with defaults on first run and Save writes
// atomically with 0600 permissions.

const dateLayout = "2006-01-02"

// ICSConfig describes a single ICS subscription whose events mark days.
type ICSConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
}

// MarksConfig controls the optional day marks fed from ICS feeds.
type MarksConfig struct {
	// Refresh is a cron-style schedule string (e.g. "*/15 * * * *").
	Refresh string `yaml:"refresh" json:"refresh"`
	// RangeMonths is how many months before and after today are expanded.
	RangeMonths int `yaml:"range_months" json:"range_months"`
	// CacheDir holds the per-feed HTTP cache.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`
	// ICS is the list of subscribed sources.
	ICS []ICSConfig `yaml:"ics" json:"ics"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the HTTP API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone in which "today" is computed.
	Timezone string `yaml:"timezone" json:"timezone"`

	// Locale selects the built-in culture (e.g. "en-US", "de-DE").
	Locale string `yaml:"locale" json:"locale"`

	// FirstDayOfWeek overrides the locale's first day when non-empty
	// ("monday", "sunday", ...).
	FirstDayOfWeek string `yaml:"first_day_of_week" json:"first_day_of_week"`

	// MinDate / MaxDate bound the selectable days (YYYY-MM-DD).
	MinDate string `yaml:"min_date" json:"min_date"`
	MaxDate string `yaml:"max_date" json:"max_date"`

	// StartMonth is shown first when set (YYYY-MM or YYYY-MM-DD).
	StartMonth string `yaml:"start_month" json:"start_month"`

	// OpenTo is the initial view: date, month or year.
	OpenTo string `yaml:"open_to" json:"open_to"`

	DisplayMonths   int    `yaml:"display_months" json:"display_months"`
	MaxMonthColumns int    `yaml:"max_month_columns" json:"max_month_columns"`
	ShowWeekNumbers bool   `yaml:"show_week_numbers" json:"show_week_numbers"`
	DateFormat      string `yaml:"date_format" json:"date_format"`

	// SessionIdleMinutes closes HTTP picker sessions left unused this long.
	// Zero disables the sweep.
	SessionIdleMinutes int `yaml:"session_idle_minutes" json:"session_idle_minutes"`
	// MaxSessions caps the open HTTP picker sessions. Zero means no cap.
	MaxSessions int `yaml:"max_sessions" json:"max_sessions"`

	// LogLevel is one of debug, info, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	Marks MarksConfig `yaml:"marks" json:"marks"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:        "127.0.0.1:8080",
		Timezone:      "Local",
		Locale:        "en-US",
		OpenTo:        "date",
		DisplayMonths: 1,
		LogLevel:      "info",

		SessionIdleMinutes: 30,
		MaxSessions:        256,

		Marks: MarksConfig{
			Refresh:     "*/15 * * * *",
			RangeMonths: 12,
			CacheDir:    "./var/ics-cache",
			ICS:         []ICSConfig{},
		},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs (e.g., older versions) still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if _, err := locale.Lookup(c.Locale); err != nil || c.Locale == "" {
		// Unknown value; fall back to en-US to avoid surprising layouts.
		c.Locale = "en-US"
	}
	if c.FirstDayOfWeek != "" {
		if _, err := locale.ParseWeekday(c.FirstDayOfWeek); err != nil {
			c.FirstDayOfWeek = ""
		}
	}
	if _, err := picker.ParseView(c.OpenTo); err != nil || c.OpenTo == "" {
		c.OpenTo = "date"
	}
	if c.DisplayMonths <= 0 {
		c.DisplayMonths = 1
	}
	if c.DisplayMonths > picker.MaxDisplayMonths {
		c.DisplayMonths = picker.MaxDisplayMonths
	}
	if c.SessionIdleMinutes < 0 {
		c.SessionIdleMinutes = 0
	}
	if c.MaxSessions < 0 {
		c.MaxSessions = 0
	}
	if c.MaxMonthColumns < 0 {
		c.MaxMonthColumns = 0
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Marks.Refresh == "" {
		c.Marks.Refresh = "*/15 * * * *"
	}
	if c.Marks.RangeMonths <= 0 {
		c.Marks.RangeMonths = 12
	}
	if c.Marks.CacheDir == "" {
		c.Marks.CacheDir = "./var/ics-cache"
	}
	if c.Marks.ICS == nil {
		c.Marks.ICS = []ICSConfig{}
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			appLog.Info("wrote default config", "path", path)
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".calpick-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", c.Timezone)
		return time.Local
	}
	return loc
}

// PickerOptions turns the config into picker options. Date fields that do
// not parse are reported as errors rather than silently dropped.
func (c *Config) PickerOptions() (picker.Options, error) {
	var opts picker.Options

	l, err := locale.Lookup(c.Locale)
	if err != nil {
		return opts, err
	}
	opts.Locale = l
	opts.Location = c.Location()

	if c.FirstDayOfWeek != "" {
		d, err := locale.ParseWeekday(c.FirstDayOfWeek)
		if err != nil {
			return opts, fmt.Errorf("first_day_of_week: %w", err)
		}
		opts.FirstDayOfWeek = &d
	}

	if opts.MinDate, err = ParseDate(c.MinDate, opts.Location); err != nil {
		return opts, fmt.Errorf("min_date: %w", err)
	}
	if opts.MaxDate, err = ParseDate(c.MaxDate, opts.Location); err != nil {
		return opts, fmt.Errorf("max_date: %w", err)
	}
	if opts.StartMonth, err = ParseMonth(c.StartMonth, opts.Location); err != nil {
		return opts, fmt.Errorf("start_month: %w", err)
	}
	if opts.OpenTo, err = picker.ParseView(c.OpenTo); err != nil {
		return opts, fmt.Errorf("open_to: %w", err)
	}

	opts.DisplayMonths = c.DisplayMonths
	opts.MaxMonthColumns = c.MaxMonthColumns
	opts.ShowWeekNumbers = c.ShowWeekNumbers
	opts.DateFormat = c.DateFormat
	return opts, nil
}

// ParseDate reads YYYY-MM-DD in loc. Empty input yields nil.
func ParseDate(s string, loc *time.Location) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ParseMonth reads YYYY-MM or YYYY-MM-DD in loc. Empty input yields nil.
func ParseMonth(s string, loc *time.Location) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation("2006-01", s, loc); err == nil {
		return &t, nil
	}
	return ParseDate(s, loc)
}
