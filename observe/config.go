package observe

import (
	"fmt"
	"io"
	"slices"

	promclient "github.com/prometheus/client_golang/prometheus"
)

// Config selects which telemetry subsystems run and where they export.
// The zero value, apart from ServiceName, disables everything.
type Config struct {
	ServiceName string `yaml:"service_name" split_words:"true"`
	Version     string `yaml:"version" ignored:"true"`

	Tracing TracingConfig `yaml:"tracing"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`

	// Writer receives log lines and stdout-exporter output. Default: os.Stderr.
	Writer io.Writer `yaml:"-" ignored:"true"`

	// Registerer receives the Prometheus collector. Default: the global registry.
	Registerer promclient.Registerer `yaml:"-" ignored:"true"`
}

type TracingConfig struct {
	Enabled bool `yaml:"enabled"`

	// Exporter is one of otlp, jaeger, stdout or none.
	Exporter string `yaml:"exporter"`

	// SamplePct is the sampling ratio in [0.0, 1.0].
	SamplePct float64 `yaml:"sample_pct" split_words:"true"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`

	// Exporter is one of otlp, prometheus, stdout or none.
	Exporter string `yaml:"exporter"`
}

type LoggingConfig struct {
	Enabled bool `yaml:"enabled"`

	// Level is one of debug, info, warn or error.
	Level string `yaml:"level"`
}

var (
	tracingExporters = []string{"otlp", "jaeger", "stdout", "none", ""}
	metricsExporters = []string{"otlp", "prometheus", "stdout", "none", ""}
	logLevels        = []string{"debug", "info", "warn", "error", ""}
)

// Validate checks ServiceName and the settings of each enabled subsystem.
// Settings of disabled subsystems are ignored.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return ErrMissingServiceName
	}
	if t := c.Tracing; t.Enabled {
		if !slices.Contains(tracingExporters, t.Exporter) {
			return fmt.Errorf("%w: %q", ErrInvalidTracingExporter, t.Exporter)
		}
		if t.SamplePct < 0 || t.SamplePct > 1 {
			return fmt.Errorf("%w, got: %f", ErrInvalidSamplePct, t.SamplePct)
		}
	}
	if m := c.Metrics; m.Enabled && !slices.Contains(metricsExporters, m.Exporter) {
		return fmt.Errorf("%w: %q", ErrInvalidMetricsExporter, m.Exporter)
	}
	if l := c.Logging; l.Enabled && !slices.Contains(logLevels, l.Level) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
	}
	return nil
}
