// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package config loads the sqlgate configuration. Values come from the
// defaults, then an optional TOML file, then the environment, each layer
// overriding the one before.
package config

import (
	"encoding"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/canonical/sqlgate/internal/sanitize"
)

// Config is the complete sqlgate configuration.
type Config struct {
	// Provider names the database provider, such as "sqlserver" or
	// "sqlite3".
	Provider string `toml:"provider" envconfig:"DATABASE_PROVIDER"`

	// ConnectionString is passed to the provider's driver. It is never
	// logged.
	ConnectionString string `toml:"connection_string" envconfig:"CONNECTION_STRING"`

	// ConnectionStrings holds connection strings by provider name, used
	// when ConnectionString is empty.
	ConnectionStrings map[string]string `toml:"connection_strings" ignored:"true"`

	Listen   string `toml:"listen" envconfig:"SQLGATE_LISTEN"`
	LogLevel string `toml:"log_level" envconfig:"SQLGATE_LOG_LEVEL"`

	// PasswordFields are the name fragments of fields hashed before they
	// are written.
	PasswordFields []string `toml:"password_fields" envconfig:"SQLGATE_PASSWORD_FIELDS"`
	BcryptCost     int      `toml:"bcrypt_cost" envconfig:"SQLGATE_BCRYPT_COST"`

	Auth Auth `toml:"auth" ignored:"true"`
}

// Auth configures token issue and checking.
type Auth struct {
	Secret   string `toml:"secret" envconfig:"JWT_SECRET_KEY"`
	Issuer   string `toml:"issuer" envconfig:"JWT_ISSUER"`
	Audience string `toml:"audience" envconfig:"JWT_AUDIENCE"`

	// Required makes every /api route except login demand a bearer token.
	Required bool `toml:"required" envconfig:"SQLGATE_REQUIRE_AUTH"`

	// Username and Password are the single credential accepted by the login
	// route. Login is refused while either is empty.
	Username string `toml:"username" envconfig:"SQLGATE_LOGIN_USER"`
	Password string `toml:"password" envconfig:"SQLGATE_LOGIN_PASSWORD"`

	TokenTTL Duration `toml:"token_ttl" envconfig:"SQLGATE_TOKEN_TTL"`
}

var _ encoding.TextMarshaler = (*Duration)(nil)
var _ encoding.TextUnmarshaler = (*Duration)(nil)

// Duration is a wrapper type for time.Duration
// for decoding from TOML and the environment.
type Duration time.Duration

// UnmarshalText implements interface for TOML decoding
func (dur *Duration) UnmarshalText(text []byte) error {
	d, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*dur = Duration(d)
	return nil
}

func (dur Duration) MarshalText() ([]byte, error) {
	d := time.Duration(dur)
	return []byte(d.String()), nil
}

// Default returns the default config.
func Default() *Config {
	return &Config{
		Listen:         ":5184",
		LogLevel:       "info",
		PasswordFields: append([]string(nil), sanitize.DefaultFields...),
		BcryptCost:     bcrypt.DefaultCost,
		Auth: Auth{
			Issuer:   "sqlgate",
			Audience: "sqlgate",
			TokenTTL: Duration(time.Hour),
		},
	}
}

// Load reads the configuration. path may be empty, in which case only the
// defaults and the environment are used.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "cannot read config file")
		}
		if _, err := toml.Decode(string(b), cfg); err != nil {
			return nil, errors.Wrapf(err, "cannot decode config file %s", path)
		}
	}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, errors.Wrap(err, "cannot read environment")
	}
	if err := envconfig.Process("", &cfg.Auth); err != nil {
		return nil, errors.Wrap(err, "cannot read environment")
	}
	cfg.ConnectionString = cfg.connectionString()
	return cfg, nil
}

// connectionString falls back to the connection string listed for the
// provider, first as <PROVIDER>_CONNECTION_STRING in the environment and then
// in the file's connection_strings table.
func (c *Config) connectionString() string {
	if c.ConnectionString != "" || c.Provider == "" {
		return c.ConnectionString
	}
	if s := os.Getenv(strings.ToUpper(c.Provider) + "_CONNECTION_STRING"); s != "" {
		return s
	}
	for name, s := range c.ConnectionStrings {
		if strings.EqualFold(name, c.Provider) {
			return s
		}
	}
	return ""
}

// Validate checks that the configuration can serve requests.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return errors.New("no database provider configured")
	}
	if c.ConnectionString == "" {
		return errors.Errorf("no connection string configured for provider %q", c.Provider)
	}
	if c.BcryptCost != 0 && (c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost) {
		return errors.Errorf("bcrypt cost %d out of range [%d, %d]", c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Auth.Required && c.Auth.Secret == "" {
		return errors.New("authentication required but no JWT secret configured")
	}
	return nil
}
