package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/JonMunkholm/phenocheck/internal/tabular"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	// DB_URL is the older name for DATABASE_URL.
	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("DB_URL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Database validation
	if c.Database.MaxConns < c.Database.MinConns {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
			c.Database.MaxConns, c.Database.MinConns))
	}
	if c.Database.MaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}
	if c.Database.MinConns < 0 {
		errs = append(errs, "DB_MIN_CONNS must be non-negative")
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	// Validation run settings
	if c.Validation.MaxFileSize <= 0 {
		errs = append(errs, "VALIDATION_MAX_FILE_SIZE must be positive")
	}
	if c.Validation.MaxConcurrent <= 0 {
		errs = append(errs, "VALIDATION_MAX_CONCURRENT must be positive")
	}
	if c.Validation.MaxWaitTime <= 0 {
		errs = append(errs, "VALIDATION_MAX_WAIT_TIME must be positive")
	}
	if c.Validation.Timeout <= 0 {
		errs = append(errs, "VALIDATION_TIMEOUT must be positive")
	}
	if _, err := tabular.ParseFormat(c.Validation.DefaultFormat); err != nil {
		errs = append(errs, fmt.Sprintf("VALIDATION_DEFAULT_FORMAT (%q) must be csv or tsv", c.Validation.DefaultFormat))
	}

	// Rate limit validation
	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}

	// Security validation
	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		errs = append(errs, "REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// Sensitive values like database URLs are masked.
func (c *Config) String() string {
	dbURL := "[NONE]"
	if c.Database.UsesDatabase() {
		dbURL = "[MASKED]"
	}

	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Database: {URL: %s, MaxConns: %d, MinConns: %d}, ",
		dbURL, c.Database.MaxConns, c.Database.MinConns))
	b.WriteString(fmt.Sprintf("Validation: {MaxFileSize: %d, MaxConcurrent: %d, DefaultFormat: %q}, ",
		c.Validation.MaxFileSize, c.Validation.MaxConcurrent, c.Validation.DefaultFormat))
	b.WriteString(fmt.Sprintf("Rate: {Enabled: %v, RequestsPerMinute: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute))
	b.WriteString(fmt.Sprintf("Security: {RequireAPIKey: %v, APIKeys: %d configured}, ",
		c.Security.RequireAPIKey, len(c.Security.APIKeys)))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
