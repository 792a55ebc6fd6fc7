// Package config loads and validates the service configuration from a JSON
// file with environment variable overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Config holds all crocdb-api configuration
type Config struct {
	// HTTP server settings
	Server ServerConfig `json:"server"`

	// Catalog database settings
	Database DatabaseConfig `json:"database"`

	// Request rate limiting
	RateLimit RateLimitConfig `json:"rate_limit"`

	// System configuration
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host            string `json:"host"`
	Port            int    `json:"port"`
	ReadTimeout     int    `json:"read_timeout_seconds"`
	WriteTimeout    int    `json:"write_timeout_seconds"`
	IdleTimeout     int    `json:"idle_timeout_seconds"`
	ShutdownTimeout int    `json:"shutdown_timeout_seconds"`
}

// DatabaseConfig holds catalog database settings. The catalog file is built
// by the external scraping pipeline; this service only reads it.
type DatabaseConfig struct {
	Path string `json:"path"`
	// Watch enables automatic snapshot reload when the catalog file changes.
	Watch bool `json:"watch"`
}

// RateLimitConfig holds per-client rate limiting settings
type RateLimitConfig struct {
	Enabled           bool `json:"enabled"`
	RequestsPerSecond int  `json:"requests_per_second"`
	RequestsPerMinute int  `json:"requests_per_minute"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // text, json
	Output string `json:"output"` // console, file
	File   string `json:"file,omitempty"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30,
			WriteTimeout:    30,
			IdleTimeout:     120,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Path:  "db/roms.db",
			Watch: true,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 30,
			RequestsPerMinute: 600,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "console",
		},
	}
}

// LoadConfig loads configuration from file with environment variable
// overrides. An empty path loads defaults plus overrides.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyEnvironmentOverrides()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// applyEnvironmentOverrides applies CROCDB_* environment variables on top of
// file and default values.
func (c *Config) applyEnvironmentOverrides() {
	if v := os.Getenv("CROCDB_SERVER_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("CROCDB_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("CROCDB_DATABASE_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("CROCDB_DATABASE_WATCH"); v != "" {
		if watch, err := strconv.ParseBool(v); err == nil {
			c.Database.Watch = watch
		}
	}
	if v := os.Getenv("CROCDB_RATE_LIMIT_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.RateLimit.Enabled = enabled
		}
	}
	if v := os.Getenv("CROCDB_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CROCDB_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond < 1 {
			return fmt.Errorf("rate limit requests per second must be positive, got %d", c.RateLimit.RequestsPerSecond)
		}
		if c.RateLimit.RequestsPerMinute < 1 {
			return fmt.Errorf("rate limit requests per minute must be positive, got %d", c.RateLimit.RequestsPerMinute)
		}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json", "":
	default:
		return fmt.Errorf("invalid logging format: %s", c.Logging.Format)
	}
	switch c.Logging.Output {
	case "console", "file":
	default:
		return fmt.Errorf("invalid logging output: %s", c.Logging.Output)
	}
	if c.Logging.Output == "file" && c.Logging.File == "" {
		return fmt.Errorf("logging output is file but no file path configured")
	}
	return nil
}

// SaveToFile writes the configuration to a JSON file
func (c *Config) SaveToFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
