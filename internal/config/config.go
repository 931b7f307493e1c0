package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Filter   FilterConfig   `mapstructure:"filter"`
	UI       UIConfig       `mapstructure:"ui"`
	History  HistoryConfig  `mapstructure:"history"`
	Presets  PresetsConfig  `mapstructure:"presets"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
}

type FilterConfig struct {
	MaxFilters   int    `mapstructure:"max_filters"`
	DefaultLogic string `mapstructure:"default_logic"`
}

type UIConfig struct {
	Theme        string `mapstructure:"theme"`
	MouseEnabled bool   `mapstructure:"mouse_enabled"`
	Width        int    `mapstructure:"width"`
}

type HistoryConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxEntries int    `mapstructure:"max_entries"`
}

type PresetsConfig struct {
	Dir string `mapstructure:"dir"`
}

type LogConfig struct {
	Env   string `mapstructure:"env"`
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type DatabaseConfig struct {
	DSN        string `mapstructure:"dsn"`
	QueryLimit int    `mapstructure:"query_limit"`
}

var defaults = map[string]interface{}{
	"filter.max_filters":   10,
	"filter.default_logic": "AND",
	"ui.theme":             "default",
	"ui.mouse_enabled":     false,
	"ui.width":             90,
	"history.enabled":      true,
	"history.path":         "",
	"history.max_entries":  50,
	"presets.dir":          "",
	"log.env":              "prod",
	"log.level":            "info",
	"log.file":             "",
	"database.dsn":         "",
	"database.query_limit": 100,
}

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	return &Config{
		Filter: FilterConfig{
			MaxFilters:   10,
			DefaultLogic: "AND",
		},
		UI: UIConfig{
			Theme:        "default",
			MouseEnabled: false,
			Width:        90,
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 50,
		},
		Log: LogConfig{
			Env:   "prod",
			Level: "info",
		},
		Database: DatabaseConfig{
			QueryLimit: 100,
		},
	}
}

// Load loads configuration from the standard locations
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from an explicit file, or from the standard
// locations when path is empty. LAZYFILTER_* environment variables override
// file values, e.g. LAZYFILTER_FILTER_MAX_FILTERS.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// 1. User config directory
		if configDir, err := GetConfigPath(); err == nil {
			v.AddConfigPath(configDir)
		}
		// 2. Current directory
		v.AddConfigPath(".")
		// 3. Default config directory
		v.AddConfigPath("./config")
	}

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("LAZYFILTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config (it's okay if file doesn't exist, we have defaults)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values viper cannot check for us
func (c *Config) Validate() error {
	switch strings.ToUpper(c.Filter.DefaultLogic) {
	case "AND", "OR":
		c.Filter.DefaultLogic = strings.ToUpper(c.Filter.DefaultLogic)
	default:
		return fmt.Errorf("filter.default_logic must be AND or OR, got %q", c.Filter.DefaultLogic)
	}
	if c.Filter.MaxFilters < 0 {
		return fmt.Errorf("filter.max_filters must not be negative, got %d", c.Filter.MaxFilters)
	}
	if c.Database.QueryLimit <= 0 {
		return fmt.Errorf("database.query_limit must be positive, got %d", c.Database.QueryLimit)
	}
	return nil
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "lazyfilter"), nil
}

// HistoryPath returns the history database path, defaulting to the config directory
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := GetConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// PresetsDir returns the presets directory, defaulting to the config directory
func (c *Config) PresetsDir() (string, error) {
	if c.Presets.Dir != "" {
		return c.Presets.Dir, nil
	}
	return GetConfigPath()
}
