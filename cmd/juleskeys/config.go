package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/juleskeys/observe"
	"github.com/jonwraymond/juleskeys/secret"
)

// envPrefix namespaces the environment overrides, e.g. JULESKEYS_MIN_KEYS or
// JULESKEYS_OBSERVE_LOGGING_LEVEL.
const envPrefix = "JULESKEYS"

// defaultAddr is where serve listens unless configured otherwise.
const defaultAddr = ":9464"

var errInvalidConfig = errors.New("juleskeys: invalid config")

// Config is the CLI configuration. Sources are applied in order: defaults,
// the YAML file, JULESKEYS_* environment variables, then flags.
type Config struct {
	Prefix        string         `yaml:"prefix"`
	BulkVar       string         `yaml:"bulk_var" split_words:"true"`
	EnvFiles      []string       `yaml:"env_files" split_words:"true"`
	MinKeys       int            `yaml:"min_keys" split_words:"true"`
	RequiredSlots []int          `yaml:"required_slots" split_words:"true"`
	Addr          string         `yaml:"addr"`
	CacheTTL      time.Duration  `yaml:"cache_ttl" split_words:"true"`
	Observe       observe.Config `yaml:"observe"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Prefix:  secret.DefaultPrefix,
		BulkVar: secret.BulkVar,
		MinKeys: 1,
		Addr:    defaultAddr,
		Observe: observe.Config{
			ServiceName: "juleskeys",
			Version:     Version,
			Tracing:     observe.TracingConfig{Exporter: "none", SamplePct: 1.0},
			Metrics:     observe.MetricsConfig{Exporter: "none"},
			Logging:     observe.LoggingConfig{Enabled: true, Level: "warn"},
		},
	}
}

// LoadConfig builds a Config from defaults, the optional YAML file at path
// and the environment.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("environment overrides: %w", err)
	}

	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.MinKeys < 1 {
		return fmt.Errorf("%w: min_keys must be >= 1, got %d", errInvalidConfig, c.MinKeys)
	}
	for _, n := range c.RequiredSlots {
		if !secret.Slot(n).Valid() {
			return fmt.Errorf("%w: required_slots: %w", errInvalidConfig, &secret.InvalidSlotError{Slot: n})
		}
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("%w: cache_ttl must not be negative, got %s", errInvalidConfig, c.CacheTTL)
	}
	if err := c.Observe.Validate(); err != nil {
		return fmt.Errorf("%w: %w", errInvalidConfig, err)
	}
	return nil
}
