package observe

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instrument names. The Prometheus exporter rewrites dots to underscores
// and appends unit and _total suffixes.
const (
	MetricOpTotal      = "credential.op.total"
	MetricOpErrors     = "credential.op.errors"
	MetricOpDuration   = "credential.op.duration_ms"
	MetricLookupTotal  = "credential.lookup.total"
	attrCredentialKey  = "credential.key"
	attrCredentialSeen = "credential.found"
)

// Metrics records credential access metrics. Implementations must be safe
// for concurrent use and must not panic.
type Metrics interface {
	RecordOperation(ctx context.Context, meta OpMeta, duration time.Duration, err error)

	// RecordLookup records one read of the key/value source by variable
	// name. found is false for unset and empty variables alike.
	RecordLookup(ctx context.Context, key string, found bool)
}

type otelMetrics struct {
	ops      metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
	lookups  metric.Int64Counter
}

// NewMetrics registers the credential instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	return newMetrics(meter)
}

func newMetrics(meter metric.Meter) (*otelMetrics, error) {
	var m otelMetrics
	var errs [4]error

	m.ops, errs[0] = meter.Int64Counter(MetricOpTotal,
		metric.WithDescription("Credential operations run"),
		metric.WithUnit("{call}"))
	m.failures, errs[1] = meter.Int64Counter(MetricOpErrors,
		metric.WithDescription("Credential operations that returned an error"),
		metric.WithUnit("{error}"))
	m.duration, errs[2] = meter.Float64Histogram(MetricOpDuration,
		metric.WithDescription("Credential operation latency"),
		metric.WithUnit("ms"))
	m.lookups, errs[3] = meter.Int64Counter(MetricLookupTotal,
		metric.WithDescription("Reads of the credential source, by credential variable name or \"other\""),
		metric.WithUnit("{read}"))

	if err := errors.Join(errs[:]...); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *otelMetrics) RecordOperation(ctx context.Context, meta OpMeta, duration time.Duration, err error) {
	attrs := metric.WithAttributes(meta.attributes()...)
	m.ops.Add(ctx, 1, attrs)
	if err != nil {
		m.failures.Add(ctx, 1, attrs)
	}
	m.duration.Record(ctx, milliseconds(duration), attrs)
}

func (m *otelMetrics) RecordLookup(ctx context.Context, key string, found bool) {
	m.lookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrCredentialKey, key),
		attribute.Bool(attrCredentialSeen, found),
	))
}

// milliseconds keeps microsecond precision.
func milliseconds(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

type noopMetrics struct{}

func (noopMetrics) RecordOperation(context.Context, OpMeta, time.Duration, error) {}
func (noopMetrics) RecordLookup(context.Context, string, bool)                    {}
