package config

import (
	"os"

	"github.com/dmitrijs2005/tasklist/internal/flagx"
	"github.com/dmitrijs2005/tasklist/internal/timex"
	"go.yaml.in/yaml/v4"
)

// YamlConfig is the on-disk shape of the client config file.
//
//	server_url: "http://127.0.0.1:3000"
//	request_timeout: "10s"
type YamlConfig struct {
	ServerURL      string         `yaml:"server_url"`
	RequestTimeout timex.Duration `yaml:"request_timeout"`
}

// parseYaml overlays Config with the file named by -c or -config. Read or
// decode errors panic.
func parseYaml(cfg *Config) {
	path := flagx.ConfigFileFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var yc YamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		panic(err)
	}

	if yc.ServerURL != "" {
		cfg.ServerURL = yc.ServerURL
	}
	if yc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = yc.RequestTimeout.Duration
	}
}
