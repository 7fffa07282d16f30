// ABOUTME: Configuration loading and parsing for taskdesk
// ABOUTME: Supports YAML or TOML files with env var expansion, TASKDESK_* overrides and duration parsing

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// SessionTTL is the only session lifetime the token contract allows.
const SessionTTL = 7 * 24 * time.Hour

// BcryptCost is the fixed password hashing cost.
const BcryptCost = 10

const minSecretLength = 32

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config represents the complete taskdesk configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Database  DatabaseConfig  `yaml:"database" toml:"database"`
	Auth      AuthConfig      `yaml:"auth" toml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry" toml:"telemetry"`
	Tailscale TailscaleConfig `yaml:"tailscale" toml:"tailscale"`
}

// ServerConfig holds the HTTP listener configuration
type ServerConfig struct {
	HTTPAddr    string `yaml:"http_addr" toml:"http_addr" env:"TASKDESK_HTTP_ADDR"`
	TLSCertFile string `yaml:"tls_cert_file" toml:"tls_cert_file" env:"TASKDESK_TLS_CERT_FILE"`
	TLSKeyFile  string `yaml:"tls_key_file" toml:"tls_key_file" env:"TASKDESK_TLS_KEY_FILE"`

	ReadHeaderTimeout time.Duration `yaml:"-" toml:"-"`
	ShutdownTimeout   time.Duration `yaml:"-" toml:"-"`

	// Raw string values for unmarshaling
	ReadHeaderTimeoutRaw string `yaml:"read_header_timeout" toml:"read_header_timeout" env:"TASKDESK_READ_HEADER_TIMEOUT"`
	ShutdownTimeoutRaw   string `yaml:"shutdown_timeout" toml:"shutdown_timeout" env:"TASKDESK_SHUTDOWN_TIMEOUT"`
}

// DatabaseConfig selects the SQL backend
type DatabaseConfig struct {
	Driver       string `yaml:"driver" toml:"driver" env:"TASKDESK_DB_DRIVER"`
	Path         string `yaml:"path" toml:"path" env:"TASKDESK_DB_PATH"`
	DSN          string `yaml:"dsn" toml:"dsn" env:"TASKDESK_DB_DSN"`
	MaxOpenConns int    `yaml:"max_open_conns" toml:"max_open_conns" env:"TASKDESK_DB_MAX_OPEN_CONNS"`
}

// AuthConfig holds session and password settings
type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret" toml:"jwt_secret" env:"TASKDESK_JWT_SECRET"`
	SecureCookies bool   `yaml:"secure_cookies" toml:"secure_cookies" env:"TASKDESK_SECURE_COOKIES"`
	BcryptCost    int    `yaml:"bcrypt_cost" toml:"bcrypt_cost" env:"TASKDESK_BCRYPT_COST"`

	SessionTTL    time.Duration `yaml:"-" toml:"-"`
	SessionTTLRaw string        `yaml:"session_ttl" toml:"session_ttl" env:"TASKDESK_SESSION_TTL"`
}

// RateLimitConfig limits credential endpoints per client IP
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" toml:"enabled" env:"TASKDESK_RATE_LIMIT_ENABLED"`
	RequestsPerMinute int  `yaml:"requests_per_minute" toml:"requests_per_minute" env:"TASKDESK_RATE_LIMIT_RPM"`
	Burst             int  `yaml:"burst" toml:"burst" env:"TASKDESK_RATE_LIMIT_BURST"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level" env:"TASKDESK_LOG_LEVEL"`
	Format string `yaml:"format" toml:"format" env:"TASKDESK_LOG_FORMAT"`
}

// TelemetryConfig controls OpenTelemetry trace export
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled" toml:"enabled" env:"TASKDESK_OTEL_ENABLED"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" toml:"otlp_endpoint" env:"TASKDESK_OTEL_ENDPOINT"`
	ServiceName  string  `yaml:"service_name" toml:"service_name" env:"TASKDESK_OTEL_SERVICE_NAME"`
	SampleRatio  float64 `yaml:"sample_ratio" toml:"sample_ratio" env:"TASKDESK_OTEL_SAMPLE_RATIO"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled" env:"TASKDESK_TAILSCALE_ENABLED"`
	Hostname  string `yaml:"hostname" toml:"hostname" env:"TASKDESK_TAILSCALE_HOSTNAME"`
	AuthKey   string `yaml:"auth_key" toml:"auth_key" env:"TS_AUTHKEY"`
	StateDir  string `yaml:"state_dir" toml:"state_dir" env:"TASKDESK_TAILSCALE_STATE_DIR"`
	Ephemeral bool   `yaml:"ephemeral" toml:"ephemeral" env:"TASKDESK_TAILSCALE_EPHEMERAL"`
	HTTPS     bool   `yaml:"https" toml:"https" env:"TASKDESK_TAILSCALE_HTTPS"`
}

// Default returns a Config populated with the values used when a key is absent.
func Default() Config {
	return Config{
		Server: ServerConfig{
			HTTPAddr:             ":8080",
			ReadHeaderTimeoutRaw: "10s",
			ShutdownTimeoutRaw:   "5s",
		},
		Database: DatabaseConfig{
			Driver:       DriverSQLite,
			Path:         "taskdesk.db",
			MaxOpenConns: 10,
		},
		Auth: AuthConfig{
			BcryptCost:    BcryptCost,
			SessionTTLRaw: "168h",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 10,
			Burst:             5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "taskdesk",
			SampleRatio: 1.0,
		},
		Tailscale: TailscaleConfig{
			Hostname: "taskdesk",
		},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded, then TASKDESK_*
// variables override whatever the file set. An empty path loads defaults plus
// environment only. Files ending in .toml are parsed as TOML, anything else as YAML.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := decode(path, expandEnvVars(string(data)), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func decode(path, content string, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		_, err := toml.Decode(content, cfg)
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader([]byte(content)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required (or enable tailscale)")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if (c.Server.TLSCertFile == "") != (c.Server.TLSKeyFile == "") {
		return fmt.Errorf("server.tls_cert_file and server.tls_key_file must be set together")
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.Database.Driver)
	}
	if c.Database.MaxOpenConns < 0 {
		return fmt.Errorf("database.max_open_conns must not be negative")
	}

	if len(c.Auth.JWTSecret) < minSecretLength {
		return fmt.Errorf("auth.jwt_secret must be at least %d bytes", minSecretLength)
	}
	if c.Auth.SessionTTL != 0 && c.Auth.SessionTTL != SessionTTL {
		return fmt.Errorf("auth.session_ttl is fixed at %s", SessionTTL)
	}
	if c.Auth.BcryptCost != BcryptCost {
		return fmt.Errorf("auth.bcrypt_cost is fixed at %d", BcryptCost)
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerMinute <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate_limit.requests_per_minute and rate_limit.burst must be positive when enabled")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json")
	}

	if c.Telemetry.Enabled && c.Telemetry.OTLPEndpoint == "" {
		return fmt.Errorf("telemetry.otlp_endpoint is required when telemetry is enabled")
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry.sample_ratio must be between 0 and 1")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"server.read_header_timeout", cfg.Server.ReadHeaderTimeoutRaw, &cfg.Server.ReadHeaderTimeout},
		{"server.shutdown_timeout", cfg.Server.ShutdownTimeoutRaw, &cfg.Server.ShutdownTimeout},
		{"auth.session_ttl", cfg.Auth.SessionTTLRaw, &cfg.Auth.SessionTTL},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = d
	}
	return nil
}
