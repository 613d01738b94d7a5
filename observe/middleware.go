package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ExecuteFunc is the signature for instrumented operations.
type ExecuteFunc func(ctx context.Context, op OpMeta) error

// Middleware wraps credential operations with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Wrap and Lookup return thread-safe functions.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from wrapped functions are recorded and propagated unchanged.
//   - Secrets: only variable names and outcomes are recorded, never values.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger

	// keys are the variable names recorded as themselves on the lookup
	// metric. Every other name is recorded as OtherKey.
	keys map[string]struct{}
}

// OtherKey is the metric label for reads of variables that are not
// credential keys.
const OtherKey = "other"

// WithCredentialKeys returns a copy of m whose lookup metric labels names
// as themselves. Reads of any other variable share the OtherKey label, so
// user-supplied names cannot grow the label set. Spans and logs keep the
// real name.
func (m *Middleware) WithCredentialKeys(names ...string) *Middleware {
	c := *m
	c.keys = make(map[string]struct{}, len(names))
	for _, n := range names {
		c.keys[n] = struct{}{}
	}
	return &c
}

func (m *Middleware) metricKey(key string) string {
	if _, ok := m.keys[key]; ok {
		return key
	}
	return OtherKey
}

// NewMiddleware creates a new Middleware with the given observability
// components. Nil components are replaced with no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NewTracer(nil)
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps an ExecuteFunc with tracing, metrics, and logging.
func (m *Middleware) Wrap(fn ExecuteFunc) ExecuteFunc {
	return func(ctx context.Context, op OpMeta) error {
		if op.Name == "" {
			return ErrMissingOpName
		}

		ctx, span := m.tracer.StartSpan(ctx, op)
		start := time.Now()

		err := fn(ctx, op)

		duration := time.Since(start)
		m.tracer.EndSpan(span, err)
		m.metrics.RecordOperation(ctx, op, duration, err)

		opLogger := m.logger.With(op)
		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000},
		}
		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			opLogger.Error(ctx, "credential operation failed", fields...)
		} else {
			opLogger.Debug(ctx, "credential operation completed", fields...)
		}

		return err
	}
}

// Lookup instruments a key/value source. Every read is counted, attached to
// the span in ctx as an event and logged at debug level. A key counts as
// found when it is set, even to the empty string.
func (m *Middleware) Lookup(ctx context.Context, fn func(key string) (string, bool)) func(key string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := fn(key)
		found := ok

		m.metrics.RecordLookup(ctx, m.metricKey(key), found)
		trace.SpanFromContext(ctx).AddEvent("credential.lookup", trace.WithAttributes(
			attribute.String("credential.key", key),
			attribute.Bool("credential.found", found),
		))
		m.logger.Debug(ctx, "credential lookup",
			Field{Key: "key", Value: key},
			Field{Key: "found", Value: found},
		)

		return v, ok
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
