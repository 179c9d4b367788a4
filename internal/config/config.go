// Package config provides centralized configuration management for csv2db.
// It loads configuration from environment variables with defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Upload   UploadConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings for `csv2db serve`.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request, body included (default: 5m)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"5m"`

	// WriteTimeout is the maximum duration for writing a response (default: 0, imports may run long)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the connection string (required): a postgres:// URL, or a file
	// path / file: URI for sqlite. Supports both DATABASE_URL and DB_URL.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	// Driver selects the backend: postgres or sqlite (default: postgres)
	Driver string `env:"DB_DRIVER" default:"postgres"`

	// Schema is the postgres search_path for catalog lookups and inserts (default: server default)
	Schema string `env:"DB_SCHEMA"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// ImportConfig holds import engine settings.
type ImportConfig struct {
	// Delimiter is the single-character field separator (default: ;)
	Delimiter string `env:"IMPORT_DELIMITER" default:";"`

	// StagingDir is where zip bundles are expanded (default: OS temp dir)
	StagingDir string `env:"IMPORT_STAGING_DIR"`

	// KeepStaging leaves expanded bundles on disk after a load (default: false)
	KeepStaging bool `env:"IMPORT_KEEP_STAGING" default:"false"`
}

// UploadConfig holds settings for imports received over HTTP.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed upload size in bytes (default: 100MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"104857600"`

	// MaxConcurrent is the maximum number of imports running at once (default: 2)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"2"`

	// MaxWaitTime is how long a request waits for an import slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`
}

// SecurityConfig holds settings for the HTTP service.
type SecurityConfig struct {
	// APIKeys is a comma-separated list of keys accepted in X-API-Key.
	// When empty, the API is open.
	APIKeys []string `env:"API_KEYS"`

	// TrustedProxies is a comma-separated list of proxy CIDRs or IPs whose
	// X-Real-IP / X-Forwarded-For headers are honoured.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
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
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// DelimiterRune returns the configured delimiter as a rune.
// Validate guarantees it is exactly one character.
func (c *ImportConfig) DelimiterRune() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return ';'
}
