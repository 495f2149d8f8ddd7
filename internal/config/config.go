package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// NOTE: This file provides the configuration model and YAML-based load/save
// behavior, including first-run config creation and 0600 permissions.

const (
	DefaultURLFile   = "calendar.txt"
	DefaultShiftsCSV = "shifts.csv"
	DefaultHourlyCSV = "hourly.csv"
	DefaultCacheDir  = "./cache/ics-cache"
	DefaultLogLevel  = "INFO"
)

// Config is the top-level application configuration.
type Config struct {
	// URLFile caches the calendar feed URL. When missing, the user is prompted
	// once and the answer is written here.
	URLFile string `yaml:"url_file"`

	// Timezone is the IANA zone used both to decide what "today" is and to
	// render timestamps. Empty means the machine's local zone.
	Timezone string `yaml:"timezone"`

	// ShiftsCSV and HourlyCSV are the two report outputs.
	ShiftsCSV string `yaml:"shifts_csv"`
	HourlyCSV string `yaml:"hourly_csv"`

	// CacheDir holds the conditional-GET cache of the feed body.
	CacheDir string `yaml:"cache_dir"`

	// KnownKeys is the allow-list of description annotations. Other keys are
	// still read but produce a warning.
	KnownKeys []string `yaml:"known_keys"`

	// Refresh is an optional cron expression (e.g. "0 * * * *"). When set the
	// process keeps running and re-syncs on that schedule.
	Refresh string `yaml:"refresh"`

	// LogLevel is one of DEBUG, INFO, WARN, ERROR.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		URLFile:   DefaultURLFile,
		ShiftsCSV: DefaultShiftsCSV,
		HourlyCSV: DefaultHourlyCSV,
		CacheDir:  DefaultCacheDir,
		KnownKeys: []string{"Income", "Tips"},
		LogLevel:  DefaultLogLevel,
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.URLFile == "" {
		c.URLFile = def.URLFile
	}
	if c.ShiftsCSV == "" {
		c.ShiftsCSV = def.ShiftsCSV
	}
	if c.HourlyCSV == "" {
		c.HourlyCSV = def.HourlyCSV
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	if len(c.KnownKeys) == 0 {
		c.KnownKeys = def.KnownKeys
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// Location resolves Timezone. An empty name yields time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600 perms
//     and returned.
//   - Otherwise the YAML is read, unmarshaled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600 perms,
// creating the parent directory if needed.
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
		return fmt.Errorf("marshaling config: %w", err)
	}
	return WriteFileAtomic(path, data, 0o600)
}

// WriteFileAtomic writes data to a temp file next to path and renames it over
// path, so readers never observe a half-written file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	f, err := StageFile(path, data, perm)
	if err != nil {
		return err
	}
	defer f.Discard()
	return f.Commit()
}

// StagedFile is data fully written beside its destination but not yet
// visible under the destination name.
type StagedFile struct {
	tmp  string
	path string
}

// StageFile writes data to a temp file in path's directory and applies perm.
// Nothing appears at path until Commit.
func StageFile(path string, data []byte, perm os.FileMode) (*StagedFile, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(dir, ".shiftsync-*.tmp")
	if err != nil {
		return nil, err
	}
	f := &StagedFile{tmp: tmp.Name(), path: path}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		f.Discard()
		return nil, err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		f.Discard()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		f.Discard()
		return nil, err
	}

	if err := os.Chmod(f.tmp, perm); err != nil {
		f.Discard()
		return nil, err
	}
	return f, nil
}

// Commit renames the staged file over its destination.
func (f *StagedFile) Commit() error {
	return os.Rename(f.tmp, f.path)
}

// Discard removes the temp file. It is a no-op after a successful Commit.
func (f *StagedFile) Discard() {
	_ = os.Remove(f.tmp)
}
