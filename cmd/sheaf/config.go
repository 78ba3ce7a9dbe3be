package main

import (
	"os"
	"time"

	"github.com/Comcast/sheaf/telemetry"

	"gopkg.in/yaml.v2"
)

// Config is what cmd/sheaf reads from its -c file.  Flags that are
// given override it.
type Config struct {
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	// Library is a directory of entries.
	Library string `yaml:"library"`

	// Store is an optional BoltDB file of entries, consulted
	// after Library.
	Store string `yaml:"store"`

	// Metrics is the address for /metrics and /healthz.  Empty
	// means no HTTP server.
	Metrics string `yaml:"metrics"`

	// Timeout bounds the whole run.  Zero means no timeout.
	Timeout time.Duration `yaml:"timeout"`

	HTTP struct {
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"http"`

	MQTT struct {
		Broker   string `yaml:"broker"`
		ClientId string `yaml:"clientId"`
	} `yaml:"mqtt"`

	// Tracing is enabled when Tracing.OTLPEndpoint isn't empty.
	Tracing telemetry.TracingConfig `yaml:"tracing"`
}

func DefaultConfig() *Config {
	c := &Config{}
	c.Log.Level = "info"
	c.Log.Format = "json"
	c.HTTP.Timeout = 30 * time.Second
	c.MQTT.ClientId = "sheaf"
	c.Tracing = telemetry.DefaultTracingConfig("sheaf")
	c.Tracing.OTLPEndpoint = ""
	return c
}

// LoadConfig reads YAML over the defaults.  An empty filename gives
// the defaults.
func LoadConfig(filename string) (*Config, error) {
	c := DefaultConfig()
	if filename == "" {
		return c, nil
	}
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if err = yaml.UnmarshalStrict(bs, c); err != nil {
		return nil, err
	}
	return c, nil
}
