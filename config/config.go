// Package config loads settings for the gateway and the CLI.
//
// Settings come from three layers, later ones winning: built-in defaults,
// an optional YAML file, then environment variables (a .env file in the
// working directory is loaded first if present).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/prime/backoffice/client"
)

// Default values.
const (
	DefaultPort          = "8081"
	DefaultLogLevel      = "info"
	DefaultTimezone      = "Local"
	DefaultAllowedOrigin = "http://localhost:3000"
)

// Environment variable names.
const (
	EnvBaseURL        = "AGENCY_API_BASE_URL"
	EnvTimeout        = "AGENCY_TIMEOUT"
	EnvTimezone       = "AGENCY_TIMEZONE"
	EnvPort           = "PORT"
	EnvAllowedOrigins = "ALLOWED_ORIGINS"
	EnvLogLevel       = "LOG_LEVEL"
	EnvSnapshotDB     = "SNAPSHOT_DB"
)

// Config holds all settings.
type Config struct {
	API    APIConfig    `yaml:"api"`
	Server ServerConfig `yaml:"server"`

	// LogLevel is a zerolog level name: debug | info | warn | error.
	LogLevel string `yaml:"log_level"`

	// SnapshotDB is the path of the snapshot archive. Empty disables it.
	SnapshotDB string `yaml:"snapshot_db"`
}

// APIConfig describes the back-office API.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`

	// Timezone is the IANA zone the backend's zone-less timestamps are
	// written in, and the wall clock lateness is judged on.
	Timezone string `yaml:"timezone"`
}

// ServerConfig configures the metrics gateway.
type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Load builds the configuration. path may be empty, in which case only
// defaults and the environment are used.
func Load(path string) (*Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Location resolves API.Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.API.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.API.Timezone, err)
	}
	return loc, nil
}

func defaults() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:  client.DefaultBaseURL,
			Timeout:  client.DefaultTimeout,
			Timezone: DefaultTimezone,
		},
		Server: ServerConfig{
			Port:           DefaultPort,
			AllowedOrigins: []string{DefaultAllowedOrigin},
		},
		LogLevel: DefaultLogLevel,
	}
}

func applyEnv(cfg *Config) error {
	cfg.API.BaseURL = getEnv(EnvBaseURL, cfg.API.BaseURL)
	cfg.API.Timezone = getEnv(EnvTimezone, cfg.API.Timezone)
	cfg.Server.Port = getEnv(EnvPort, cfg.Server.Port)
	cfg.LogLevel = getEnv(EnvLogLevel, cfg.LogLevel)
	cfg.SnapshotDB = getEnv(EnvSnapshotDB, cfg.SnapshotDB)

	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		cfg.API.Timeout = d
	}

	if v := os.Getenv(EnvAllowedOrigins); v != "" {
		cfg.Server.AllowedOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.Server.AllowedOrigins = append(cfg.Server.AllowedOrigins, origin)
			}
		}
	}
	return nil
}

// parseTimeout accepts a Go duration ("45s") or a whole number of seconds.
func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url %q is not an absolute URL", cfg.API.BaseURL)
	}
	if cfg.API.Timeout <= 0 {
		return errors.New("api.timeout must be positive")
	}
	if _, err := time.LoadLocation(cfg.API.Timezone); err != nil {
		return fmt.Errorf("api.timezone %q: %w", cfg.API.Timezone, err)
	}
	port, err := strconv.Atoi(cfg.Server.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("server.port %q is out of range [1, 65535]", cfg.Server.Port)
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("log_level %q unknown", cfg.LogLevel)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
