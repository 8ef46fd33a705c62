// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Validation ValidationConfig
	Rate       RateLimitConfig
	Security   SecurityConfig
	Logging    LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" envDefault:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envDefault:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" envDefault:"60s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	// Optional: when empty, validation runs are kept in memory.
	// DB_URL is accepted as a fallback for compatibility.
	URL string `env:"DATABASE_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" envDefault:"10"`

	// MinConns is the minimum number of connections to keep open (default: 2)
	MinConns int `env:"DB_MIN_CONNS" envDefault:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
}

// ValidationConfig holds data file validation settings.
type ValidationConfig struct {
	// MaxFileSize is the maximum accepted data file size in bytes (default: 50MB)
	MaxFileSize int64 `env:"VALIDATION_MAX_FILE_SIZE" envDefault:"52428800"`

	// MaxConcurrent is the maximum number of parallel validation runs (default: 4)
	MaxConcurrent int `env:"VALIDATION_MAX_CONCURRENT" envDefault:"4"`

	// MaxWaitTime is how long to wait for a validation slot (default: 15s)
	MaxWaitTime time.Duration `env:"VALIDATION_MAX_WAIT_TIME" envDefault:"15s"`

	// Timeout is the maximum duration for a single validation run (default: 2m)
	Timeout time.Duration `env:"VALIDATION_TIMEOUT" envDefault:"2m"`

	// DefaultFormat is used when neither the request nor the file name names a format (default: csv)
	DefaultFormat string `env:"VALIDATION_DEFAULT_FORMAT" envDefault:"csv"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" envDefault:"100"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" envDefault:"true"`

	// RequireAPIKey enforces X-API-Key on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" envDefault:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS" envSeparator:","`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" envDefault:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// UsesDatabase reports whether runs should be persisted in PostgreSQL.
func (c *DatabaseConfig) UsesDatabase() bool {
	return c.URL != ""
}
