// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"strings"
	"time"
)

// Data source drivers.
const (
	SourcePostgres = "postgres"
	SourceDemo     = "demo"
)

// Settings store drivers.
const (
	SettingsPostgres = "postgres"
	SettingsSQLite   = "sqlite"
	SettingsMemory   = "memory"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Data     DataConfig
	Settings SettingsConfig
	Query    QueryConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 0 for streamed exports)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Required when either the data
	// source or the settings store uses postgres.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 20)
	MaxConns int `env:"DB_MAX_CONNS" default:"20"`

	// MinConns is the minimum number of connections to keep open (default: 4)
	MinConns int `env:"DB_MIN_CONNS" default:"4"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// DataConfig selects where dataset rows come from.
type DataConfig struct {
	// Source is postgres or demo (default: demo)
	Source string `env:"DATA_SOURCE" default:"demo"`

	// LoadTimeout bounds a single dataset load (default: 30s)
	LoadTimeout time.Duration `env:"DATA_LOAD_TIMEOUT" default:"30s"`
}

// SettingsConfig selects the column settings store.
type SettingsConfig struct {
	// Driver is postgres, sqlite or memory (default: memory)
	Driver string `env:"SETTINGS_DRIVER" default:"memory"`

	// SQLitePath is the database file used by the sqlite driver (default: fleetdesk.db)
	SQLitePath string `env:"SETTINGS_SQLITE_PATH" default:"fleetdesk.db"`
}

// QueryConfig holds pagination limits for dataset queries.
type QueryConfig struct {
	// DefaultPageSize is used when a query does not ask for one (default: 50)
	DefaultPageSize int `env:"QUERY_DEFAULT_PAGE_SIZE" default:"50"`

	// MaxPageSize caps the page size a client may request (default: 500)
	MaxPageSize int `env:"QUERY_MAX_PAGE_SIZE" default:"500"`

	// MaxBodyBytes caps the size of a query request body (default: 1MB)
	MaxBodyBytes int64 `env:"QUERY_MAX_BODY_BYTES" default:"1048576"`

	// MaxConcurrentExports is the maximum number of parallel CSV exports (default: 4)
	MaxConcurrentExports int `env:"QUERY_MAX_CONCURRENT_EXPORTS" default:"4"`

	// ExportWaitTime is how long an export waits for a free slot (default: 10s)
	ExportWaitTime time.Duration `env:"QUERY_EXPORT_WAIT_TIME" default:"10s"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// ExportLimit is requests per minute for CSV export endpoints (default: 10)
	ExportLimit int `env:"RATE_LIMIT_EXPORT" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey protects /api routes with an X-API-Key header (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// NeedsDatabase reports whether any component requires a Postgres pool.
func (c *Config) NeedsDatabase() bool {
	return strings.EqualFold(c.Data.Source, SourcePostgres) || strings.EqualFold(c.Settings.Driver, SettingsPostgres)
}
