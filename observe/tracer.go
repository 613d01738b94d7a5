package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// OpMeta describes one credential operation for telemetry purposes.
type OpMeta struct {
	Component string // e.g. "accessor" or "cli"; optional
	Name      string // e.g. "get"; required
	Slot      int    // targeted slot, 0 when none
}

// ID returns "<component>.<name>", or just the name without a component.
func (m OpMeta) ID() string {
	if m.Component == "" {
		return m.Name
	}
	return m.Component + "." + m.Name
}

// SpanName returns "credential." + ID().
func (m OpMeta) SpanName() string {
	return "credential." + m.ID()
}

// attributes are shared by spans and metrics. The slot is left out so
// metric cardinality stays bounded by operation count.
func (m OpMeta) attributes() []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	attrs = append(attrs,
		attribute.String("op.id", m.ID()),
		attribute.String("op.name", m.Name),
	)
	if m.Component != "" {
		attrs = append(attrs, attribute.String("op.component", m.Component))
	}
	return attrs
}

// Tracer starts and ends one span per credential operation. EndSpan must
// not panic.
type Tracer interface {
	StartSpan(ctx context.Context, meta OpMeta) (context.Context, trace.Span)
	EndSpan(span trace.Span, err error)
}

type otelTracer struct {
	tracer trace.Tracer
}

// NewTracer wraps t. A nil t yields spans that record nothing.
func NewTracer(t trace.Tracer) Tracer {
	if t == nil {
		t = tracenoop.NewTracerProvider().Tracer("")
	}
	return &otelTracer{tracer: t}
}

func (t *otelTracer) StartSpan(ctx context.Context, meta OpMeta) (context.Context, trace.Span) {
	attrs := append(meta.attributes(), attribute.Bool("op.error", false))
	if meta.Slot != 0 {
		attrs = append(attrs, attribute.Int("op.slot", meta.Slot))
	}
	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

func (t *otelTracer) EndSpan(span trace.Span, err error) {
	defer span.End()
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.RecordError(err)
	span.SetAttributes(attribute.Bool("op.error", true))
	span.SetStatus(codes.Error, err.Error())
}
