// Package config handles configuration for the server component: built-in
// defaults, an optional .env file, an optional YAML file, TASKLIST_*
// environment variables and short command-line flags, applied in that order.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds runtime settings for the tasklist server.
//
// Fields:
//   - EndpointAddrHTTP: bind address of the REST API.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SecretKey: HMAC secret for signing access tokens (HS256).
//   - AccessTokenValidityDuration: access token TTL.
//   - RefreshTokenValidityDuration: session lifetime.
//   - RefreshTokenBytes: random bytes per refresh token (at least 64).
//   - BcryptCost: password hashing cost.
//   - StoreTimeout: deadline for a single store call.
//   - SessionSweepInterval: how often expired sessions are pruned; 0 disables.
//   - CORSAllowedOrigins: comma separated list for the CORS middleware.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	EndpointAddrHTTP             string
	DatabaseDSN                  string
	SecretKey                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	RefreshTokenBytes            int
	BcryptCost                   int
	StoreTimeout                 time.Duration
	SessionSweepInterval         time.Duration
	CORSAllowedOrigins           string
	LogLevel                     string
}

// DevSecretKey is the development signing secret. It is refused once a
// database is configured.
const DevSecretKey = "secretKey"

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":3000"
	c.DatabaseDSN = ""
	c.SecretKey = DevSecretKey
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RefreshTokenValidityDuration = 240 * time.Hour
	c.RefreshTokenBytes = 64
	c.BcryptCost = 10
	c.StoreTimeout = 3 * time.Second
	c.SessionSweepInterval = time.Hour
	c.CORSAllowedOrigins = "*"
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults and then overlaying the
// .env file, the YAML file, the environment and finally command-line flags.
// Unreadable or invalid sources panic.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	loadDotEnv()
	parseYaml(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

// UsesDevSecret reports whether tokens are signed with DevSecretKey.
func (c *Config) UsesDevSecret() bool {
	return c.SecretKey == DevSecretKey
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.EndpointAddrHTTP == "" {
		errs = append(errs, errors.New("http address is empty"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is empty"))
	}
	if c.DatabaseDSN != "" && c.SecretKey == DevSecretKey {
		errs = append(errs, errors.New("secret key must be changed when a database is configured"))
	}
	if c.AccessTokenValidityDuration <= 0 {
		errs = append(errs, fmt.Errorf("access token validity must be positive, got %s", c.AccessTokenValidityDuration))
	}
	if c.RefreshTokenValidityDuration <= 0 {
		errs = append(errs, fmt.Errorf("refresh token validity must be positive, got %s", c.RefreshTokenValidityDuration))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, fmt.Errorf("store timeout must be positive, got %s", c.StoreTimeout))
	}
	if c.SessionSweepInterval < 0 {
		errs = append(errs, fmt.Errorf("session sweep interval must not be negative, got %s", c.SessionSweepInterval))
	}
	return errors.Join(errs...)
}
