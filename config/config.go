/*
Package config loads server configuration.

PRECEDENCE (later wins):
  1. Defaults (Default)
  2. YAML file, when a path is given
  3. Environment: RATES_PORT, RATES_DB, RATES_LOG_LEVEL, RATES_LOG_FORMAT,
     RATES_CORS_ORIGINS (comma separated)
  4. Command-line flags, applied by cmd/server

EXAMPLE FILE:
  port: 8080
  db: rates.db
  log:
    level: info
    format: json
  cors_origins:
    - http://localhost:5173
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the server configuration.
type Config struct {
	Port            int           `yaml:"port"`
	DB              string        `yaml:"db"`
	Log             Log           `yaml:"log"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Log configures the zerolog logger.
type Log struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port: 8080,
		DB:   "rates.db",
		Log: Log{
			Level:  "info",
			Format: "json",
		},
		CORSOrigins:     []string{"http://localhost:5173", "http://localhost:8080"},
		ShutdownTimeout: 30 * time.Second,
	}
}

// Load builds a Config from defaults, the optional YAML file at path and the
// environment. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if raw := os.Getenv("RATES_PORT"); raw != "" {
		port, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("invalid RATES_PORT %q: %w", raw, err)
		}
		c.Port = port
	}
	c.DB = getEnv("RATES_DB", c.DB)
	c.Log.Level = getEnv("RATES_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("RATES_LOG_FORMAT", c.Log.Format)

	if raw := os.Getenv("RATES_CORS_ORIGINS"); raw != "" {
		var origins []string
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORSOrigins = origins
	}
	return nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	if strings.TrimSpace(c.DB) == "" {
		return fmt.Errorf("%w: db path is required", ErrInvalidConfig)
	}
	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Log.Format)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown_timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// Addr is the listen address for Port.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
