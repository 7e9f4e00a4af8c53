// Package config loads pilotlog settings.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix marks environment variables read as configuration
const EnvPrefix = "PILOTLOG_"

// Config holds all settings
type Config struct {
	DBPath             string `koanf:"db_path"`
	Host               string `koanf:"host"`
	Port               int    `koanf:"port"`
	LogLevel           string `koanf:"log_level"`
	LogPath            string `koanf:"log_path"`
	BackupBeforeImport bool   `koanf:"backup_before_import"`
	AircraftTypesFile  string `koanf:"aircraft_types_file"`
	RollingWindows     []int  `koanf:"rolling_windows"`
	MaxDisplayedErrors int    `koanf:"max_displayed_errors"`
	DefaultSource      string `koanf:"default_source"`

	// FileUsed is the YAML file that was loaded, if any
	FileUsed string `koanf:"-"`
}

// Options select the sources Load reads besides defaults and environment
type Options struct {
	// ConfigFile is an explicit YAML path; it must exist when set
	ConfigFile string
	// EnvFile is an explicit .env path; defaults to ./.env when present
	EnvFile string
	// Flags contribute only the flags the user changed
	Flags *pflag.FlagSet
}

// HomeDir is ~/.pilotlog
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pilotlog"
	}
	return filepath.Join(home, ".pilotlog")
}

// Defaults returns the built-in settings
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"db_path":              filepath.Join(HomeDir(), "logbook.db"),
		"host":                 "127.0.0.1",
		"port":                 8090,
		"log_level":            "info",
		"log_path":             filepath.Join(HomeDir(), "logs"),
		"backup_before_import": true,
		"aircraft_types_file":  "",
		"rolling_windows":      []int{7, 28, 60, 90, 365},
		"max_displayed_errors": 5,
		"default_source":       "swa",
	}
}

// findConfigFile picks the YAML file to load.
// Priority: explicit path > ./pilotlog.yaml > ~/.pilotlog/config.yaml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, candidate := range []string{"pilotlog.yaml", filepath.Join(HomeDir(), "config.yaml")} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Load reads configuration.
// Precedence (highest to lowest): changed flags > env vars (.env included) > config file > defaults
func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	cfgFile := findConfigFile(opts.ConfigFile)
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// 3. .env into the process environment; existing variables win
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	// 4. Environment variables: PILOTLOG_DB_PATH -> db_path
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 5. Flags the user explicitly set
	if opts.Flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if key == "db" {
				key = "db_path"
			}
			return key, posflag.FlagVal(opts.Flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.FileUsed = cfgFile
	cfg.DBPath = expandHome(cfg.DBPath)
	cfg.LogPath = expandHome(cfg.LogPath)
	cfg.AircraftTypesFile = expandHome(cfg.AircraftTypesFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// Validate checks the values that other packages rely on
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if len(c.RollingWindows) == 0 {
		return fmt.Errorf("rolling_windows must list at least one window")
	}
	for _, w := range c.RollingWindows {
		if w <= 0 {
			return fmt.Errorf("rolling_windows must be positive, got %d", w)
		}
	}
	if c.MaxDisplayedErrors < 0 {
		return fmt.Errorf("max_displayed_errors must not be negative")
	}
	return nil
}

// Addr is the host:port the server listens on
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// EnsureDirectories creates the database and log directories
func (c *Config) EnsureDirectories() error {
	dirs := []string{filepath.Dir(c.DBPath)}
	if c.LogPath != "" {
		dirs = append(dirs, c.LogPath)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
