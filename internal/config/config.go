// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file
// when one is present), loads them into structured Go types and
// validates them so the service refuses to start on bad configuration.
//
// Responsibilities:
//   - Provide defaults for every optional setting.
//   - Map GARAGE_* env vars (and the bare DATABASE_URL) into Config.
//   - Validate required values, including the shape of the connection string.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	// Side-effect import: loads `.env` into the process env before we read it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is stripped from every env var before it is mapped to a key.
	// Nesting uses a double underscore: GARAGE_SERVER__PORT -> server.port.
	EnvPrefix = "GARAGE_"

	// DatabaseURLEnv is accepted as an alias for GARAGE_DATABASE__URL.
	DatabaseURLEnv = "DATABASE_URL"

	// ServiceName tags logs and New Relic data.
	ServiceName = "garage"
)

// ErrInvalidConfig is wrapped by every error LoadConfig returns.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the root configuration object for the application.
//
// The `koanf:"..."` tags name the keys koanf maps values from and the
// `validate:"..."` tags are enforced by go-playground/validator.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are whole seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

// DatabaseConfig carries the PostgreSQL connection string and pool tuning.
//
// URL accepts anything pgx understands: a postgres:// URL or a
// keyword/value DSN.
type DatabaseConfig struct {
	URL             string        `koanf:"url" validate:"required"`
	MaxConns        int32         `koanf:"max_conns" validate:"min=1"`
	MinConns        int32         `koanf:"min_conns" validate:"min=0"`
	MaxConnLifetime time.Duration `koanf:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `koanf:"max_conn_idle_time"`
}

// Default returns the configuration used before the environment is applied.
// Database.URL is deliberately empty: it has to come from the environment.
func Default() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:               "8080",
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			MaxConns:        10,
			MinConns:        0,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 30 * time.Minute,
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// LoadConfig builds the Config from defaults and the environment, then
// validates it.
//
// Load order (later wins):
//  1. Default()
//  2. DATABASE_URL
//  3. GARAGE_* variables
//
// Any failure is returned wrapped in ErrInvalidConfig; the caller decides
// whether to exit.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("%w: loading defaults: %v", ErrInvalidConfig, err)
	}

	// The callback returns "" for every other DATABASE_URL* variable, which
	// makes the provider skip it.
	err := k.Load(env.Provider(DatabaseURLEnv, ".", func(s string) string {
		if s == DatabaseURLEnv {
			return "database.url"
		}
		return ""
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: loading %s: %v", ErrInvalidConfig, DatabaseURLEnv, err)
	}

	err = k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: loading env variables: %v", ErrInvalidConfig, err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("%w: unmarshal: %v", ErrInvalidConfig, err)
	}

	if err := mainConfig.Validate(); err != nil {
		return nil, err
	}

	return mainConfig, nil
}

// envKey turns GARAGE_DATABASE__MAX_CONNS into database.max_conns.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Validate runs the struct-tag validator, checks that the connection string
// parses and normalizes the observability block.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	// ParseConfig only parses; it never dials.
	if _, err := pgconn.ParseConfig(c.Database.URL); err != nil {
		return fmt.Errorf("%w: database.url: %v", ErrInvalidConfig, err)
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("%w: database.min_conns (%d) exceeds database.max_conns (%d)",
			ErrInvalidConfig, c.Database.MinConns, c.Database.MaxConns)
	}

	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}

	// Service name and environment always follow the primary config.
	c.Observability.ServiceName = ServiceName
	c.Observability.Environment = c.Primary.Env

	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return nil
}
