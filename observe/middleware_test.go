package observe

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type testHarness struct {
	mw       *Middleware
	recorder *tracetest.SpanRecorder
	reader   *sdkmetric.ManualReader
	logs     *bytes.Buffer
	tracer   Tracer
}

func newHarness(t *testing.T, level string) *testHarness {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := newMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	var logs bytes.Buffer
	tracer := NewTracer(tp.Tracer("test"))
	return &testHarness{
		mw:       NewMiddleware(tracer, metrics, NewLoggerWithWriter(level, &logs)),
		recorder: recorder,
		reader:   reader,
		logs:     &logs,
		tracer:   tracer,
	}
}

func TestMiddleware_SuccessPath(t *testing.T) {
	h := newHarness(t, "debug")
	called := false

	err := h.mw.Wrap(func(ctx context.Context, op OpMeta) error {
		called = true
		return nil
	})(context.Background(), OpMeta{Component: "cli", Name: "list"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("wrapped function not called")
	}

	spans := h.recorder.Ended()
	if len(spans) != 1 || spans[0].Name() != "credential.cli.list" {
		t.Fatalf("unexpected spans: %v", spans)
	}
	if got := sumValue(t, collect(t, h.reader), "credential.op.total"); got != 1 {
		t.Errorf("expected op total 1, got %d", got)
	}
	if !strings.Contains(h.logs.String(), "credential operation completed") {
		t.Errorf("expected completion log, got: %s", h.logs.String())
	}
}

func TestMiddleware_ErrorPath(t *testing.T) {
	h := newHarness(t, "info")
	want := errors.New("no credentials")

	err := h.mw.Wrap(func(ctx context.Context, op OpMeta) error {
		return want
	})(context.Background(), OpMeta{Component: "cli", Name: "check"})
	if !errors.Is(err, want) {
		t.Fatalf("expected original error, got: %v", err)
	}

	if got := sumValue(t, collect(t, h.reader), "credential.op.errors"); got != 1 {
		t.Errorf("expected op errors 1, got %d", got)
	}
	entries := decodeEntries(t, h.logs)
	if len(entries) != 1 || entries[0]["level"] != "error" || entries[0]["error"] != "no credentials" {
		t.Errorf("unexpected log entries: %v", entries)
	}
}

func TestMiddleware_MissingOpName(t *testing.T) {
	h := newHarness(t, "info")
	err := h.mw.Wrap(func(ctx context.Context, op OpMeta) error {
		t.Fatal("wrapped function should not run")
		return nil
	})(context.Background(), OpMeta{})
	if !errors.Is(err, ErrMissingOpName) {
		t.Fatalf("expected ErrMissingOpName, got: %v", err)
	}
}

func TestMiddleware_PropagatesContext(t *testing.T) {
	h := newHarness(t, "info")

	_ = h.mw.Wrap(func(ctx context.Context, op OpMeta) error {
		_, child := h.tracer.StartSpan(ctx, OpMeta{Component: "accessor", Name: "get"})
		h.tracer.EndSpan(child, nil)
		return nil
	})(context.Background(), OpMeta{Name: "outer"})

	spans := h.recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Parent().SpanID() != spans[1].SpanContext().SpanID() {
		t.Error("inner span is not a child of the wrapped operation")
	}
}

func TestMiddleware_Lookup(t *testing.T) {
	h := newHarness(t, "debug")
	const raw = "AQ.never-logged"
	source := func(key string) (string, bool) {
		if key == "JULES_API_KEY_1" {
			return raw, true
		}
		return "", false
	}

	_ = h.mw.Wrap(func(ctx context.Context, op OpMeta) error {
		lookup := h.mw.Lookup(ctx, source)
		if v, ok := lookup("JULES_API_KEY_1"); !ok || v != raw {
			t.Errorf("lookup returned (%q, %v)", v, ok)
		}
		if _, ok := lookup("JULES_API_KEY_2"); ok {
			t.Error("lookup of unset key reported ok")
		}
		return nil
	})(context.Background(), OpMeta{Name: "all"})

	if strings.Contains(h.logs.String(), raw) {
		t.Fatalf("secret value leaked into logs: %s", h.logs.String())
	}
	if got := sumValue(t, collect(t, h.reader), "credential.lookup.total"); got != 2 {
		t.Errorf("expected 2 lookups, got %d", got)
	}
	span := h.recorder.Ended()[0]
	if len(span.Events()) != 2 {
		t.Errorf("expected 2 lookup events on span, got %d", len(span.Events()))
	}
	for _, ev := range span.Events() {
		for _, a := range ev.Attributes {
			if a.Value.AsString() == raw {
				t.Fatal("secret value leaked into span event")
			}
		}
	}
}

func TestMiddleware_LookupBucketsUnknownKeys(t *testing.T) {
	h := newHarness(t, "info")
	mw := h.mw.WithCredentialKeys("JULES_API_KEY_1", "JULES_API_KEYS_ALL")
	source := func(key string) (string, bool) { return "v", key != "MISSING" }

	lookup := mw.Lookup(context.Background(), source)
	for _, key := range []string{"JULES_API_KEY_1", "HOME", "USER_SUPPLIED_1", "MISSING"} {
		lookup(key)
	}

	sum := findMetric(collect(t, h.reader), "credential.lookup.total").Data.(metricdata.Sum[int64])
	counts := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		key, _ := dp.Attributes.Value("credential.key")
		counts[key.AsString()] += dp.Value
	}
	want := map[string]int64{"JULES_API_KEY_1": 1, OtherKey: 3}
	if len(counts) != len(want) || counts["JULES_API_KEY_1"] != 1 || counts[OtherKey] != 3 {
		t.Errorf("lookup counts by key = %v, want %v", counts, want)
	}
}

func TestMiddleware_WithCredentialKeysLeavesOriginal(t *testing.T) {
	h := newHarness(t, "info")
	_ = h.mw.WithCredentialKeys("JULES_API_KEY_1")

	h.mw.Lookup(context.Background(), func(string) (string, bool) { return "", true })("JULES_API_KEY_1")

	sum := findMetric(collect(t, h.reader), "credential.lookup.total").Data.(metricdata.Sum[int64])
	for _, dp := range sum.DataPoints {
		key, _ := dp.Attributes.Value("credential.key")
		if key.AsString() != OtherKey {
			t.Errorf("original middleware labelled lookup %q, want %q", key.AsString(), OtherKey)
		}
		found, _ := dp.Attributes.Value("credential.found")
		if !found.AsBool() {
			t.Error("set but empty variable recorded as not found")
		}
	}
}

func TestMiddleware_NilComponents(t *testing.T) {
	mw := NewMiddleware(nil, nil, nil)
	err := mw.Wrap(func(ctx context.Context, op OpMeta) error { return nil })(context.Background(), OpMeta{Name: "noop"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, ok := mw.Lookup(context.Background(), func(string) (string, bool) { return "x", true })("K"); !ok || v != "x" {
		t.Errorf("lookup returned (%q, %v)", v, ok)
	}
}

func TestMiddlewareFromObserver_Nil(t *testing.T) {
	if _, err := MiddlewareFromObserver(nil); !errors.Is(err, ErrNilObserver) {
		t.Fatalf("expected ErrNilObserver, got %v", err)
	}
}
