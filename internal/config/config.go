// Package config handles application configuration.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	HTTPPort int
	GRPCPort int

	// Catalog
	SeedFile string // YAML catalog; empty loads the built-in sample

	// Loans
	DefaultLoanDays     int
	OverdueScanInterval time.Duration

	// Logging
	LogLevel  string
	LogFormat string // "json" or "text"; defaults to text in development

	// Environment
	Environment string // "sandbox" "dev", "staging", "prod"
}

// Load reads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort: getEnvInt("HTTP_PORT", 8080),
		GRPCPort: getEnvInt("GRPC_PORT", 9090),

		SeedFile: getEnv("SEED_FILE", ""),

		DefaultLoanDays:     getEnvInt("DEFAULT_LOAN_DAYS", 14),
		OverdueScanInterval: getEnvDuration("OVERDUE_SCAN_INTERVAL", time.Hour),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", ""),

		Environment: getEnv("ENVIRONMENT", "dev"),
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
		if cfg.IsDevelopment() {
			cfg.LogFormat = "text"
		}
	}
	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "dev" || c.Environment == "sandbox"
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil && i > 0 {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
