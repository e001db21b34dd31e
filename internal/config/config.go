// Package config loads the contact import service configuration from
// environment variables and validates it on startup so misconfiguration
// fails fast.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Import   ImportConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// StoreConfig selects and configures the contacts store.
type StoreConfig struct {
	// Driver is one of: rest, postgres, sqlite, memory (default: rest)
	Driver string `env:"STORE_DRIVER" default:"rest"`

	// BackendURL is the base URL of the contacts backend for the rest driver.
	BackendURL string `env:"CONTACTS_BACKEND_URL" envAlt:"API_BASE_URL" default:"http://localhost:8000"`

	// BackendTimeout bounds a single bulk-create call (default: 30s)
	BackendTimeout time.Duration `env:"CONTACTS_BACKEND_TIMEOUT" default:"30s"`

	// DatabaseURL is the PostgreSQL connection string for the postgres driver.
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns int `env:"DB_MAX_CONNS" default:"10"`
	MinConns int `env:"DB_MIN_CONNS" default:"2"`

	// SQLitePath is the database file for the sqlite driver (default: smsdesk.db)
	SQLitePath string `env:"SQLITE_PATH" default:"smsdesk.db"`

	Breaker BreakerConfig
}

// BreakerConfig tunes the circuit breaker in front of the REST store.
type BreakerConfig struct {
	// MaxRequests allowed through while half-open (default: 1)
	MaxRequests int `env:"BREAKER_MAX_REQUESTS" default:"1"`

	// Interval is the closed-state window after which counts reset (default: 60s)
	Interval time.Duration `env:"BREAKER_INTERVAL" default:"60s"`

	// Timeout is how long the breaker stays open (default: 30s)
	Timeout time.Duration `env:"BREAKER_TIMEOUT" default:"30s"`

	// ConsecutiveFailures trips the breaker (default: 5)
	ConsecutiveFailures int `env:"BREAKER_CONSECUTIVE_FAILURES" default:"5"`
}

// ImportConfig holds bulk import settings.
type ImportConfig struct {
	// MaxFileSize is the maximum accepted upload in bytes (default: 10MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"10485760"`

	// MaxConcurrent is the number of imports processed in parallel (default: 4)
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a request waits for an import slot (default: 10s)
	MaxWaitTime time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"10s"`

	// Timeout bounds a single import including the store call (default: 2m)
	Timeout time.Duration `env:"IMPORT_TIMEOUT" default:"2m"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// ImportLimit is requests per minute for import endpoints (default: 10)
	ImportLimit int `env:"RATE_LIMIT_IMPORT" default:"10"`
}

// SecurityConfig holds authentication and header settings.
type SecurityConfig struct {
	// AuthRequired rejects requests without a valid bearer token (default: true)
	AuthRequired bool `env:"AUTH_REQUIRED" default:"true"`

	// JWTSecret is the HS256 signing key shared with the session issuer.
	JWTSecret string `env:"AUTH_JWT_SECRET" envAlt:"JWT_SECRET"`

	// TrustedProxies is a comma-separated list of proxy CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
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
