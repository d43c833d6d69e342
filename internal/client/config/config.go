package config

import "time"

// Config holds runtime settings for the tasklist CLI.
//
// Fields:
//   - ServerURL: base URL of the REST API.
//   - RequestTimeout: deadline for one HTTP round trip.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:3000"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// YAML (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseYaml(cfg)
	parseFlags(cfg)
	return cfg
}
