package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds station settings shared by the controller subcommands.
type Config struct {
	// APIBaseURL is the base URL of the remote attendance backend,
	// e.g. "https://prolocklogger.pro/api".
	APIBaseURL string `yaml:"api_base_url"`
	// StationName identifies this door station in logs and journal entries.
	StationName string `yaml:"station_name"`
	// JournalPath is the path to the local SQLite scan journal.
	JournalPath string `yaml:"journal_path"`
	// StatePath is the path to the persisted door state JSON file.
	StatePath string `yaml:"state_path"`
	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// Timeout is the duration for backend HTTP calls.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is the default filename for station settings.
	DefaultConfigFilename = "prolock-settings.yaml"

	// DefaultJournalFilename is the default filename for the local scan journal.
	DefaultJournalFilename = "prolock-journal.db"

	// DefaultStateFilename is the default filename for the persisted door state.
	DefaultStateFilename = "prolock-doorstate.json"

	// DefaultStationName is used when no station name is configured.
	DefaultStationName = "prolock-station"

	// DefaultTimeout is the default duration for backend HTTP calls.
	DefaultTimeout = 5 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errAPIBaseURLRequired is returned when the backend base URL is missing.
	errAPIBaseURLRequired = errors.New("backend base URL must be provided")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and fills defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.APIBaseURL == "" {
		return errAPIBaseURLRequired
	}

	if _, err := url.ParseRequestURI(cfg.APIBaseURL); err != nil {
		return fmt.Errorf("invalid backend base URL: %w", err)
	}

	// Set default timeout if not specified.
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	// Set default journal path if not specified.
	if cfg.JournalPath == "" {
		cfg.JournalPath = DefaultJournalFilename
	}

	if cfg.StatePath == "" {
		cfg.StatePath = DefaultStateFilename
	}

	if cfg.StationName == "" {
		cfg.StationName = DefaultStationName
	}

	return nil
}
