// Package config holds the YAML configuration model: the calendar range
// tuple, web server settings, mark rules and ICS sources.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"calgrid/internal/grid"
	"calgrid/internal/ics"
	"calgrid/internal/marks"
)

const dateLayout = "2006-01-02"

// ICSConfig describes one ICS subscription source.
type ICSConfig struct {
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for caching and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label for the UI.
	Name string `yaml:"name" json:"name"`
}

// MarkConfig describes one recurring marked-date rule.
type MarkConfig struct {
	ID string `yaml:"id" json:"id"`
	// RRule is an RFC 5545 recurrence string, e.g. "FREQ=WEEKLY;BYDAY=FR".
	RRule string `yaml:"rrule" json:"rrule"`
	// Start optionally anchors the recurrence ("2006-01-02"); empty means
	// the calendar's start bound.
	Start string `yaml:"start,omitempty" json:"start,omitempty"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
//
// The four grid fields (start, end, week_start, out_date_policy) form one
// tuple: they are validated and applied together, never piecemeal.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`

	// Mode selects "month" or "week" pages.
	Mode string `yaml:"mode" json:"mode"`

	// Start / End are the inclusive calendar bounds, "2006-01-02".
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`

	// WeekStart is the first day of the week, as a full weekday name
	// ("monday", "sunday", "saturday", ...).
	WeekStart string `yaml:"week_start" json:"week_start"`

	// OutDatePolicy is "end_of_row", "end_of_grid" or "none".
	OutDatePolicy string `yaml:"out_date_policy" json:"out_date_policy"`

	// RefreshCron schedules periodic ICS feed refresh, e.g. "*/15 * * * *".
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// CacheDir is where fetched feeds are cached.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// Marks are recurring marked-date rules (holidays, paydays).
	Marks []MarkConfig `yaml:"marks" json:"marks"`

	// ICS lists the subscribed feed sources.
	ICS []ICSConfig `yaml:"ics" json:"ics"`

	// BasicAuth, if non-nil, protects every endpoint except /health and
	// /metrics.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns the in-memory default configuration: the current
// year in month mode, Monday weeks, end-of-grid padding.
func DefaultConfig() *Config {
	year := time.Now().UTC().Year()
	return &Config{
		Listen:        "127.0.0.1:8080",
		Mode:          "month",
		Start:         fmt.Sprintf("%04d-01-01", year),
		End:           fmt.Sprintf("%04d-12-31", year),
		WeekStart:     "monday",
		OutDatePolicy: "end_of_grid",
		RefreshCron:   "*/15 * * * *",
		CacheDir:      "./var/feed-cache",
		Marks:         []MarkConfig{},
		ICS:           []ICSConfig{},
	}
}

// Normalize fills missing values with defaults so partially written
// configs still behave. It does not validate the range bounds; that is
// GridConfig's job.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	switch c.Mode {
	case "month", "week":
	default:
		c.Mode = "month"
	}
	def := DefaultConfig()
	if c.Start == "" {
		c.Start = def.Start
	}
	if c.End == "" {
		c.End = def.End
	}
	// Week start accepts any full weekday name; only case is normalized
	// here. Unknown names are left alone so GridConfig can reject them
	// instead of silently rewriting the week layout.
	c.WeekStart = strings.ToLower(strings.TrimSpace(c.WeekStart))
	if c.WeekStart == "" {
		c.WeekStart = "monday"
	}
	switch c.OutDatePolicy {
	case "end_of_row", "end_of_grid", "none":
	default:
		c.OutDatePolicy = "end_of_grid"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.CacheDir == "" {
		c.CacheDir = "./var/feed-cache"
	}
	if c.Marks == nil {
		c.Marks = []MarkConfig{}
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}
}

// GridConfig converts the textual grid fields into a grid.Config,
// surfacing parse errors and the range invariant (start <= end, as
// *grid.InvalidRangeError via grid.New) before any page work happens.
func (c *Config) GridConfig() (grid.Config, error) {
	var out grid.Config

	start, err := time.ParseInLocation(dateLayout, c.Start, time.UTC)
	if err != nil {
		return out, fmt.Errorf("config: bad start date %q: %w", c.Start, err)
	}
	end, err := time.ParseInLocation(dateLayout, c.End, time.UTC)
	if err != nil {
		return out, fmt.Errorf("config: bad end date %q: %w", c.End, err)
	}

	out.Start = start
	out.End = end

	fdow, err := parseWeekday(c.WeekStart)
	if err != nil {
		return out, err
	}
	out.FirstDayOfWeek = fdow

	switch c.OutDatePolicy {
	case "end_of_row":
		out.OutDatePolicy = grid.OutDateEndOfRow
	case "none":
		out.OutDatePolicy = grid.OutDateNone
	default:
		out.OutDatePolicy = grid.OutDateEndOfGrid
	}

	if c.Mode == "week" {
		out.Mode = grid.WeekMode
	}
	return out, nil
}

// parseWeekday maps a lowercase weekday name to time.Weekday.
func parseWeekday(name string) (time.Weekday, error) {
	switch name {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	default:
		return 0, fmt.Errorf("config: unknown week_start %q", name)
	}
}

// MarkRules converts the configured mark entries into marks.Rule values.
// Entries with an unparsable anchor date are dropped with an error.
func (c *Config) MarkRules() ([]marks.Rule, error) {
	rules := make([]marks.Rule, 0, len(c.Marks))
	for _, m := range c.Marks {
		rule := marks.Rule{ID: m.ID, RRule: m.RRule}
		if m.Start != "" {
			t, err := time.ParseInLocation(dateLayout, m.Start, time.UTC)
			if err != nil {
				return nil, fmt.Errorf("config: mark %q: bad start %q: %w", m.ID, m.Start, err)
			}
			rule.DTStart = t
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// Sources converts the configured ICS entries into fetcher sources.
func (c *Config) Sources() []ics.Source {
	out := make([]ics.Source, 0, len(c.ICS))
	for _, s := range c.ICS {
		out = append(out, ics.Source{ID: s.ID, URL: s.URL})
	}
	return out
}

// Load reads configuration from the given YAML path. On first run (file
// missing) it writes a default config with 0600 perms and returns it.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Return cfg alongside the error so the caller can decide.
				return cfg, err
			}
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

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory as needed.
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

	tmp, err := os.CreateTemp(dir, ".calgrid-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
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

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
