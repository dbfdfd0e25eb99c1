// Package config provides configuration management for wsprofile.
// It supports YAML configuration files, environment variables, and sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/klauern/wsprofile/internal/state"
	"github.com/klauern/wsprofile/internal/util"
)

// Config represents the complete wsprofile configuration.
type Config struct {
	// State configures where user profiles are persisted
	State StateConfig `yaml:"state"`

	// Apply configures how profiles are written into workspaces
	Apply ApplyConfig `yaml:"apply"`

	// Output configures display preferences
	Output OutputConfig `yaml:"output"`

	// Backup configures pre-apply backups
	Backup BackupConfig `yaml:"backup"`

	// Log configures diagnostic logging
	Log LogConfig `yaml:"log"`
}

// StateConfig holds user profile storage settings.
type StateConfig struct {
	// Backend is the storage engine (file, sqlite)
	Backend string `yaml:"backend"`
	// Path overrides the state file location. Empty uses the backend default.
	Path string `yaml:"path,omitempty"`
}

// ApplyConfig holds workspace write settings.
type ApplyConfig struct {
	// Indent is the number of spaces used in generated JSON files
	Indent int `yaml:"indent"`
	// Progress shows a progress bar while applying
	Progress bool `yaml:"progress"`
}

// OutputConfig holds display preferences.
type OutputConfig struct {
	// Format is the default output format (table, json, yaml)
	Format string `yaml:"format"`
	// Color controls color output (auto, always, never)
	Color string `yaml:"color"`
	// Verbose enables verbose output
	Verbose bool `yaml:"verbose"`
}

// BackupConfig holds backup settings.
type BackupConfig struct {
	// Enabled backs up settings.json and extensions.json before an apply
	Enabled bool `yaml:"enabled"`
	// Location is the backup directory path
	Location string `yaml:"location"`
	// MaxBackups is the maximum number of backups kept per file
	MaxBackups int `yaml:"max_backups"`
	// MaxAge is how long backups are kept
	MaxAge time.Duration `yaml:"max_age"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level string `yaml:"level"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		State: StateConfig{
			Backend: string(state.BackendFile),
		},
		Apply: ApplyConfig{
			Indent:   4,
			Progress: true,
		},
		Output: OutputConfig{
			Format:  "table",
			Color:   "auto",
			Verbose: false,
		},
		Backup: BackupConfig{
			Enabled:    true,
			Location:   util.WsprofileBackupsPath(),
			MaxBackups: 10,
			MaxAge:     30 * 24 * time.Hour,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// configFileName is the name of the config file.
const configFileName = "config.yaml"

// FilePath returns the path to the config file.
func FilePath() string {
	return filepath.Join(util.WsprofileConfigPath(), configFileName)
}

// Load loads the configuration from file, merging with defaults.
// If the config file doesn't exist, returns default configuration.
func Load() (*Config, error) {
	cfg := Default()

	configPath := FilePath()
	// #nosec G304 - configPath is constructed from trusted config directory
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvironment()
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// LoadFromPath loads configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	// #nosec G304 - path is provided by caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// Save writes the configuration to the config file.
func (c *Config) Save() error {
	return c.SaveToPath(FilePath())
}

// SaveToPath writes the configuration to a specific path.
func (c *Config) SaveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// #nosec G306 - config file should be readable by user
	return os.WriteFile(path, data, 0o644)
}

// applyEnvironment applies environment variable overrides.
// Environment variables follow the pattern WSPROFILE_<SECTION>_<KEY>.
func (c *Config) applyEnvironment() {
	// State settings
	if v := os.Getenv("WSPROFILE_STATE_BACKEND"); v != "" {
		c.State.Backend = v
	}
	if v := os.Getenv("WSPROFILE_STATE_PATH"); v != "" {
		c.State.Path = v
	}

	// Apply settings
	if v := os.Getenv("WSPROFILE_APPLY_INDENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 8 {
			c.Apply.Indent = n
		}
	}
	if v := os.Getenv("WSPROFILE_APPLY_PROGRESS"); v != "" {
		c.Apply.Progress = parseBool(v)
	}

	// Output settings
	if v := os.Getenv("WSPROFILE_OUTPUT_FORMAT"); v != "" {
		c.Output.Format = v
	}
	if v := os.Getenv("WSPROFILE_OUTPUT_COLOR"); v != "" {
		c.Output.Color = v
	}
	if v := os.Getenv("WSPROFILE_OUTPUT_VERBOSE"); v != "" {
		c.Output.Verbose = parseBool(v)
	}

	// Backup settings
	if v := os.Getenv("WSPROFILE_BACKUP_ENABLED"); v != "" {
		c.Backup.Enabled = parseBool(v)
	}
	if v := os.Getenv("WSPROFILE_BACKUP_LOCATION"); v != "" {
		c.Backup.Location = v
	}
	if v := os.Getenv("WSPROFILE_BACKUP_MAX_BACKUPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Backup.MaxBackups = n
		}
	}
	if v := os.Getenv("WSPROFILE_BACKUP_MAX_AGE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Backup.MaxAge = d
		}
	}

	// Log settings
	if v := os.Getenv("WSPROFILE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// parseBool parses a boolean from common string representations.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// GetBackend returns the configured state backend, falling back to the file
// backend when the value is not recognized.
func (c *Config) GetBackend() state.Backend {
	backend, err := state.ParseBackend(c.State.Backend)
	if err != nil {
		return state.BackendFile
	}
	return backend
}

// GetStatePath returns the expanded state location for the configured backend.
func (c *Config) GetStatePath() string {
	if c.State.Path != "" {
		return util.ExpandPath(c.State.Path, "")
	}
	name := "state.json"
	if c.GetBackend() == state.BackendSQLite {
		name = "state.db"
	}
	return filepath.Join(util.WsprofileConfigPath(), name)
}

// GetBackupLocation returns the expanded backup directory.
func (c *Config) GetBackupLocation() string {
	if c.Backup.Location == "" {
		return util.WsprofileBackupsPath()
	}
	return util.ExpandPath(c.Backup.Location, "")
}

// GetIndent returns the JSON indentation string for generated files.
func (c *Config) GetIndent() string {
	if c.Apply.Indent <= 0 {
		return strings.Repeat(" ", 4)
	}
	return strings.Repeat(" ", c.Apply.Indent)
}

// Validate reports settings that cannot be used as given.
func (c *Config) Validate() error {
	if _, err := state.ParseBackend(c.State.Backend); err != nil {
		return err
	}
	switch c.Output.Format {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("invalid output format %q (must be table, json, or yaml)", c.Output.Format)
	}
	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color mode %q (must be auto, always, or never)", c.Output.Color)
	}
	return nil
}

// Exists returns true if a config file exists.
func Exists() bool {
	_, err := os.Stat(FilePath())
	return err == nil
}
