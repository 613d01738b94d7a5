// Package exporters builds the OpenTelemetry span exporters and metric
// readers named in observe.Config.
package exporters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var (
	ErrUnknownExporter = errors.New("exporters: unknown exporter")
	ErrNoEndpoint      = errors.New("exporters: endpoint not configured")
)

// Options tune exporter construction.
type Options struct {
	// Writer receives stdout-exporter output. Default: os.Stderr, so
	// command output on stdout stays clean.
	Writer io.Writer

	// Registerer receives the Prometheus collector.
	// Default: prometheus.DefaultRegisterer.
	Registerer promclient.Registerer

	// Getenv resolves endpoint variables. Default: os.Getenv.
	Getenv func(string) string
}

func (o Options) withDefaults() Options {
	if o.Writer == nil {
		o.Writer = os.Stderr
	}
	if o.Registerer == nil {
		o.Registerer = promclient.DefaultRegisterer
	}
	if o.Getenv == nil {
		o.Getenv = os.Getenv
	}
	return o
}

// requireEndpoint fails unless one of vars is set. The gRPC exporters read
// the same variables themselves.
func (o Options) requireEndpoint(exporter string, vars ...string) error {
	for _, v := range vars {
		if o.Getenv(v) != "" {
			return nil
		}
	}
	return fmt.Errorf("%w: %s needs one of %v", ErrNoEndpoint, exporter, vars)
}

// NewTracingExporter returns the span exporter called name: stdout, otlp,
// jaeger, or none. none and "" return a nil exporter.
func NewTracingExporter(ctx context.Context, name string, opts Options) (sdktrace.SpanExporter, error) {
	opts = opts.withDefaults()

	switch name {
	case "stdout":
		return stdouttrace.New(stdouttrace.WithWriter(opts.Writer))
	case "otlp":
		if err := opts.requireEndpoint(name, "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"); err != nil {
			return nil, err
		}
		return otlptracegrpc.New(ctx)
	case "jaeger":
		// Jaeger ingests OTLP natively.
		if err := opts.requireEndpoint(name, "OTEL_EXPORTER_JAEGER_ENDPOINT"); err != nil {
			return nil, err
		}
		return otlptracegrpc.New(ctx)
	case "none", "":
		return nil, nil
	}
	return nil, fmt.Errorf("%w: tracing %q", ErrUnknownExporter, name)
}

// NewMetricsReader returns the metric reader called name: stdout, otlp,
// prometheus, or none. none and "" return a ManualReader nobody collects.
func NewMetricsReader(ctx context.Context, name string, opts Options) (sdkmetric.Reader, error) {
	opts = opts.withDefaults()

	var (
		exp sdkmetric.Exporter
		err error
	)
	switch name {
	case "stdout":
		exp, err = stdoutmetric.New(stdoutmetric.WithWriter(opts.Writer))
	case "otlp":
		if err := opts.requireEndpoint(name, "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"); err != nil {
			return nil, err
		}
		exp, err = otlpmetricgrpc.New(ctx)
	case "prometheus":
		// The Prometheus exporter is a pull reader registered on Registerer.
		reader, err := prometheus.New(prometheus.WithRegisterer(opts.Registerer))
		if err != nil {
			return nil, fmt.Errorf("prometheus exporter: %w", err)
		}
		return reader, nil
	case "none", "":
		return sdkmetric.NewManualReader(), nil
	default:
		return nil, fmt.Errorf("%w: metrics %q", ErrUnknownExporter, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%s metrics exporter: %w", name, err)
	}
	return sdkmetric.NewPeriodicReader(exp), nil
}
