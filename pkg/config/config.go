package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrisonrobin/tasksheet/pkg/errors"
	"github.com/spf13/viper"
)

const (
	xdgAppName = "tasksheet"
	configFile = "config.yaml"
	envPrefix  = "TASKSHEET"
)

// Config holds tasksheet settings. Values come from defaults, then
// ~/.config/tasksheet/config.yaml, then TASKSHEET_* environment variables.
type Config struct {
	// Source is the default sheet: a Google Sheets URL, CSV URL or file path.
	Source string `mapstructure:"source" yaml:"source"`

	// UseSheetsAPI reads Google Sheets through the authenticated API instead
	// of the public CSV export.
	UseSheetsAPI bool `mapstructure:"use_sheets_api" yaml:"use_sheets_api"`

	// SheetRange is the A1 column range read through the API.
	SheetRange string `mapstructure:"sheet_range" yaml:"sheet_range"`

	// CacheTTL is how long a fetched table is reused.
	CacheTTL time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`

	// DayFirst parses ambiguous numeric dates as dd/mm/yyyy.
	DayFirst bool `mapstructure:"day_first" yaml:"day_first"`

	// IncludeUnassigned keeps Unassigned/Unknown officers as their own bucket
	// in officer counts instead of dropping them.
	IncludeUnassigned bool `mapstructure:"include_unassigned" yaml:"include_unassigned"`

	// AliasesFile is an optional YAML file of extra column aliases.
	AliasesFile string `mapstructure:"aliases_file" yaml:"aliases_file"`

	// LogJSON switches log output to JSON.
	LogJSON bool `mapstructure:"log_json" yaml:"log_json"`

	// Addr is the listen address of `tasksheet serve`.
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// Dir returns the tasksheet config directory. TASKSHEET_CONFIG_DIR
// overrides the default ~/.config/tasksheet.
func Dir() (string, error) {
	if dir := os.Getenv(envPrefix + "_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "find home directory")
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

// GetConfigPath returns the path of the config file.
func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("source", "")
	v.SetDefault("use_sheets_api", false)
	v.SetDefault("sheet_range", "A:T")
	v.SetDefault("cache_ttl", 5*time.Minute)
	v.SetDefault("day_first", false)
	v.SetDefault("include_unassigned", true)
	v.SetDefault("aliases_file", "")
	v.SetDefault("log_json", false)
	v.SetDefault("addr", ":8080")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads the config file if it exists. A missing file yields defaults.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads configuration from path, falling back to defaults and
// environment variables when the file does not exist.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "stat config %s", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if cfg.SheetRange == "" {
		cfg.SheetRange = "A:T"
	}
	if cfg.CacheTTL < 0 {
		cfg.CacheTTL = 0
	}
	return &cfg, nil
}

// Save writes cfg to the default config path.
func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(cfg, path)
}

// SaveFile writes cfg as YAML to path, creating the directory.
func SaveFile(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(err, "create config directory")
	}

	v := viper.New()
	v.Set("source", cfg.Source)
	v.Set("use_sheets_api", cfg.UseSheetsAPI)
	v.Set("sheet_range", cfg.SheetRange)
	v.Set("cache_ttl", cfg.CacheTTL.String())
	v.Set("day_first", cfg.DayFirst)
	v.Set("include_unassigned", cfg.IncludeUnassigned)
	v.Set("aliases_file", cfg.AliasesFile)
	v.Set("log_json", cfg.LogJSON)
	v.Set("addr", cfg.Addr)

	if err := v.WriteConfigAs(path); err != nil {
		return errors.Wrapf(err, "write config %s", path)
	}
	return os.Chmod(path, 0o600)
}
