package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"farmcal/internal/model"
)

// BackendConfig points at the farm REST API.
type BackendConfig struct {
	// BaseURL is the API root, e.g. "http://localhost:5023/api".
	BaseURL string `yaml:"base_url" json:"base_url" validate:"required,url"`
	// TimeoutSeconds bounds each backend request.
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// TaskConfig is a recurring farm chore (feeding, egg collection, cleaning).
type TaskConfig struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
	// RRule is an RFC 5545 recurrence rule without DTSTART,
	// e.g. "FREQ=DAILY" or "FREQ=WEEKLY;BYDAY=MO,TH".
	RRule string `yaml:"rrule" json:"rrule" validate:"required"`
	// Start is the local start time, HH:MM.
	Start string `yaml:"start" json:"start" validate:"required,datetime=15:04"`
	// DurationMinutes is the length of each occurrence.
	DurationMinutes int `yaml:"duration_minutes" json:"duration_minutes"`
	// Since is the first date (YYYY-MM-DD) the rule applies from.
	Since string `yaml:"since" json:"since" validate:"omitempty,datetime=2006-01-02"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the farm's IANA timezone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// OffsetMode controls how transport offsets are chosen:
	//   - "fixed" (default): always +08:00
	//   - "zone": derived per date from the tz database for Timezone
	OffsetMode string `yaml:"offset_mode" json:"offset_mode"`

	Backend BackendConfig `yaml:"backend" json:"backend"`

	// RefreshCron is a cron-style schedule on which the current week's
	// events are prefetched into the cache. Empty disables prefetching.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// StatePath is where persisted UI state (selected tab, last filter) lives.
	StatePath string `yaml:"state_path" json:"state_path"`

	// LogLevel is one of debug, info, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Tasks are recurring chores expanded into the schedule view.
	Tasks []TaskConfig `yaml:"tasks" json:"tasks" validate:"dive"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen     = "127.0.0.1:8080"
	defaultTimezone   = "Asia/Manila"
	defaultOffsetMode = "fixed"
	defaultBackendURL = "http://localhost:5023/api"
	defaultTimeout    = 15
	defaultRefresh    = "*/15 * * * *"
	defaultStatePath  = "./var/state.yaml"
	defaultLogLevel   = "info"
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      defaultListen,
		Timezone:    defaultTimezone,
		OffsetMode:  defaultOffsetMode,
		Backend:     BackendConfig{BaseURL: defaultBackendURL, TimeoutSeconds: defaultTimeout},
		RefreshCron: defaultRefresh,
		StatePath:   defaultStatePath,
		LogLevel:    defaultLogLevel,
		Tasks: []TaskConfig{
			{ID: "egg-collection", Title: "Egg collection", RRule: "FREQ=DAILY", Start: "06:00", DurationMinutes: 60},
			{ID: "coop-cleaning", Title: "Coop cleaning", RRule: "FREQ=WEEKLY;BYDAY=SA", Start: "14:00", DurationMinutes: 120},
		},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	switch strings.ToLower(c.OffsetMode) {
	case "fixed", "zone":
		c.OffsetMode = strings.ToLower(c.OffsetMode)
	default:
		c.OffsetMode = defaultOffsetMode
	}
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = defaultBackendURL
	}
	if c.Backend.TimeoutSeconds <= 0 {
		c.Backend.TimeoutSeconds = defaultTimeout
	}
	if c.StatePath == "" {
		c.StatePath = defaultStatePath
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.Tasks == nil {
		c.Tasks = []TaskConfig{}
	}
	for i := range c.Tasks {
		if c.Tasks[i].ID == "" {
			c.Tasks[i].ID = fmt.Sprintf("task-%d", i+1)
		}
		if c.Tasks[i].DurationMinutes <= 0 {
			c.Tasks[i].DurationMinutes = 60
		}
	}
}

// Validate reports settings Normalize cannot repair.
func (c *Config) Validate() error {
	var errs []error
	if c.RefreshCron != "" {
		if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
			errs = append(errs, fmt.Errorf("refresh %q: %w", c.RefreshCron, err))
		}
	}
	if err := model.Validate(c); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
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
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically
// (temp file + rename) with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data, ".farmcal-config-*.tmp")
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}

// WriteFileAtomic writes data next to path under a temporary name and renames
// it into place, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte, pattern string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, pattern)
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
