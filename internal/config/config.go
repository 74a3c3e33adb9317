// Package config handles loading and parsing application configuration.
// The config file path comes from (in priority order):
//  1. A command-line flag:      --config=/path/to/config.yaml
//  2. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//
// A .env file in the working directory, if present, is loaded into the
// process environment first, so its values can override the YAML file
// the same way real environment variables do.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Storage backends understood by the application.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendGorm     = "gorm"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
//
// env-required:"true" means the app refuses to start if that value is
// missing.
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-required:"true"`

	Storage Storage `yaml:"storage"`

	HTTPServer `yaml:"http_server"`
}

// Storage selects and locates the record store.
type Storage struct {
	// Backend is one of "sqlite", "postgres" or "gorm".
	Backend string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"sqlite"`

	// DSN is a file path for the sqlite and gorm backends, a
	// connection string for postgres.
	DSN string `yaml:"dsn" env:"STORAGE_DSN" env-required:"true"`
}

// HTTPServer holds settings specific to the HTTP server.
// Nested under http_server: in the YAML file.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-required:"true"`

	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"HTTP_REQUEST_TIMEOUT" env-default:"30s"`

	// AllowedOrigins feeds the CORS middleware. Empty allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" env-separator:","`

	// TrustProxy honours X-Forwarded-For / X-Real-IP as the client
	// address. Enable it only behind a proxy that overwrites them.
	TrustProxy bool `yaml:"trust_proxy" env:"HTTP_TRUST_PROXY" env-default:"false"`

	RateLimit RateLimit `yaml:"rate_limit"`
}

// RateLimit configures per-client request throttling. RPS <= 0 disables it.
type RateLimit struct {
	RPS   float64 `yaml:"rps" env:"HTTP_RATE_LIMIT_RPS" env-default:"0"`
	Burst int     `yaml:"burst" env:"HTTP_RATE_LIMIT_BURST" env-default:"20"`
}

// Load reads the config file at path, applies environment overrides, and
// validates the result. An empty path falls back to CONFIG_PATH.
func Load(path string) (*Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config.Load: read .env: %w", err)
	}

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		return nil, errors.New("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	// Verify the file exists before trying to read it so the message is
	// clear rather than a cryptic "open: no such file" later.
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	// cleanenv.ReadConfig reads the YAML file and populates the struct.
	// It also reads any env:"..." tagged fields from the environment,
	// and validates env-required:"true" constraints.
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	switch cfg.Storage.Backend {
	case BackendSQLite, BackendPostgres, BackendGorm:
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	return &cfg, nil
}
