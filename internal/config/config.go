package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds file and environment driven configuration.
type Config struct {
	Toggl struct {
		APIToken    string `yaml:"api_key"`
		WorkspaceID int64  `yaml:"workspace_id"`
		ProjectID   int64  `yaml:"project_id"`
		BaseURL     string `yaml:"base_url"` // default: https://api.track.toggl.com
	} `yaml:"toggl"`
	Cache struct {
		Path       string `yaml:"path"`
		Backend    string `yaml:"backend"` // file (default) or sqlite
		TTLSeconds int    `yaml:"ttl_seconds"`
		Disabled   bool   `yaml:"disabled"`
	} `yaml:"cache"`
	MySQL struct {
		DSN string `yaml:"dsn"` // e.g., user:pass@tcp(host:3306)/dbname?parseTime=true&multiStatements=true
	} `yaml:"mysql"`
	Timezone    string `yaml:"timezone"`
	UseNotifier bool   `yaml:"use_notifier"`
	LogLevel    string `yaml:"log_level"`
	LogFile     string `yaml:"log_file"`
}

// ErrMissingToken is returned by Load, with an otherwise usable Config,
// when no API token is configured.
var ErrMissingToken = errors.New("TOGGL_API_TOKEN is required")

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Dir is where config, cache and log live unless overridden.
func Dir() string {
	if d := os.Getenv("TOGGL_EFFORTS_HOME"); d != "" {
		return d
	}
	if d, err := os.UserConfigDir(); err == nil {
		return filepath.Join(d, "toggl-efforts")
	}
	return ".toggl-efforts"
}

// DefaultPath is the config file used when none is given.
func DefaultPath() string { return filepath.Join(Dir(), "config.yaml") }

// Default returns the configuration used before the file and environment
// are applied.
func Default() Config {
	var cfg Config
	cfg.Toggl.BaseURL = "https://api.track.toggl.com"
	cfg.Cache.Backend = BackendFile
	cfg.Cache.TTLSeconds = 300
	cfg.Timezone = "Local"
	cfg.LogLevel = "info"
	return cfg
}

// Load reads the YAML file at path (a missing file is fine) and applies
// environment overrides. An API token is required.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		content, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(content, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.Toggl.BaseURL == "" {
		cfg.Toggl.BaseURL = Default().Toggl.BaseURL
	}
	if cfg.Cache.TTLSeconds <= 0 {
		cfg.Cache.TTLSeconds = Default().Cache.TTLSeconds
	}
	switch cfg.Cache.Backend {
	case "":
		cfg.Cache.Backend = BackendFile
	case BackendFile, BackendSQLite:
	default:
		return Config{}, fmt.Errorf("cache backend %q must be %q or %q", cfg.Cache.Backend, BackendFile, BackendSQLite)
	}
	if cfg.Cache.Path == "" {
		name := "cache.json"
		if cfg.Cache.Backend == BackendSQLite {
			name = "cache.db"
		}
		cfg.Cache.Path = filepath.Join(Dir(), name)
	}
	if _, err := cfg.Location(); err != nil {
		return Config{}, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	if cfg.Toggl.APIToken == "" {
		return cfg, ErrMissingToken
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("TOGGL_API_TOKEN"); v != "" {
		cfg.Toggl.APIToken = v
	}
	if ws := os.Getenv("TOGGL_WORKSPACE_ID"); ws != "" {
		v, err := strconv.ParseInt(ws, 10, 64)
		if err != nil {
			return errors.New("TOGGL_WORKSPACE_ID must be an integer")
		}
		cfg.Toggl.WorkspaceID = v
	}
	if p := os.Getenv("TOGGL_PROJECT_ID"); p != "" {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return errors.New("TOGGL_PROJECT_ID must be an integer")
		}
		cfg.Toggl.ProjectID = v
	}
	if v := os.Getenv("TOGGL_BASE_URL"); v != "" {
		cfg.Toggl.BaseURL = v
	}
	if v := os.Getenv("TOGGL_CACHE_PATH"); v != "" {
		cfg.Cache.Path = v
	}
	if v := os.Getenv("TOGGL_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = strings.ToLower(v)
	}
	if ttl := os.Getenv("TOGGL_CACHE_TTL"); ttl != "" {
		v, err := strconv.Atoi(ttl)
		if err != nil {
			return errors.New("TOGGL_CACHE_TTL must be an integer number of seconds")
		}
		cfg.Cache.TTLSeconds = v
	}
	if v := os.Getenv("MYSQL_DSN"); v != "" {
		cfg.MySQL.DSN = v
	}
	if v := os.Getenv("TOGGL_TZ"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("TOGGL_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

// TTL is the cache lifetime.
func (c Config) TTL() time.Duration { return time.Duration(c.Cache.TTLSeconds) * time.Second }

// Location resolves Timezone; "Local" and "" mean the system zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Level maps LogLevel to a slog level. Unknown values mean info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "critical":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
