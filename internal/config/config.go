// Package config loads the dashboard's settings from environment variables.
// Defaults cover a local run; Load validates everything up front so a bad
// value stops the process before it starts listening.
package config

import (
	"strconv"
	"time"
)

// DefaultSourceURL is the published CSV of Montreal agrifood businesses.
const DefaultSourceURL = "https://ppl-ai-code-interpreter-files.s3.amazonaws.com/web/direct-files/3116932148c4533080f2f9f8db64a742/7fb9c42b-4234-4061-af17-4fd9eacceffc/8c487160.csv"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Database DatabaseConfig
	Session  SessionConfig
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

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown (default: 15s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// DataConfig selects where the dataset comes from and how it is presented.
// Precedence: DATABASE_URL, then SOURCE_FILE, then SOURCE_URL. Any failure
// falls back to the built-in sample.
type DataConfig struct {
	// SourceURL is fetched with GET at startup
	SourceURL string `env:"SOURCE_URL" default:"https://ppl-ai-code-interpreter-files.s3.amazonaws.com/web/direct-files/3116932148c4533080f2f9f8db64a742/7fb9c42b-4234-4061-af17-4fd9eacceffc/8c487160.csv"`

	// SourceFile is a local CSV path, used instead of SourceURL when set
	SourceFile string `env:"SOURCE_FILE"`

	// FetchTimeout bounds the startup fetch (default: 15s)
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" default:"15s"`

	// PaletteFile is an optional YAML file of category colors
	PaletteFile string `env:"PALETTE_FILE"`

	// Locale drives text collation and number grouping (default: en)
	Locale string `env:"DASHBOARD_LOCALE" envAlt:"COLLATION_LOCALE" default:"en"`
}

// DatabaseConfig holds the optional PostgreSQL source settings.
type DatabaseConfig struct {
	// URL enables the PostgreSQL source when set
	// Supports both DATABASE_URL and DB_URL env vars
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// Table holds the business rows (default: businesses)
	Table string `env:"DB_TABLE" default:"businesses"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"4"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"0"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// SessionConfig controls the per-browser dashboard state.
type SessionConfig struct {
	// TTL is how long an idle session is kept (default: 30m)
	TTL time.Duration `env:"SESSION_TTL" default:"30m"`

	// MaxSessions caps live sessions; the least recently used is evicted (default: 1000)
	MaxSessions int `env:"SESSION_MAX" default:"1000"`

	// CookieName names the session cookie (default: agrimap_session)
	CookieName string `env:"SESSION_COOKIE_NAME" default:"agrimap_session"`

	// SecureCookie sets the Secure attribute; enable behind HTTPS
	SecureCookie bool `env:"SESSION_SECURE_COOKIE" default:"false"`

	// SweepInterval is how often expired sessions are removed (default: 1m)
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" default:"1m"`
}

// RateLimitConfig holds per-IP rate limits.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute applies to every API route (default: 300)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`

	// ExportLimit applies to CSV downloads (default: 20)
	ExportLimit int `env:"RATE_LIMIT_EXPORT" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
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
