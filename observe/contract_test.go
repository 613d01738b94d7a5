package observe

import (
	"context"
	"errors"
	"testing"
	"time"
)

// Disabled subsystems still hand out usable no-op implementations.
func TestObserver_DisabledSubsystemsAreNoops(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "juleskeys-test"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}

	if obs.Tracer() == nil || obs.Meter() == nil || obs.Logger() == nil {
		t.Fatal("expected non-nil tracer, meter and logger")
	}

	mw, err := MiddlewareFromObserver(obs)
	if err != nil {
		t.Fatalf("MiddlewareFromObserver() error = %v", err)
	}
	lookup := mw.Lookup(context.Background(), func(string) (string, bool) { return "AQ.x", true })
	if v, ok := lookup("JULES_API_KEY_1"); !ok || v != "AQ.x" {
		t.Fatalf("instrumented lookup changed the result: (%q, %v)", v, ok)
	}

	for range 2 {
		if err := obs.Shutdown(context.Background()); err != nil {
			t.Fatalf("Shutdown() error = %v", err)
		}
	}
}

func TestNoops_DoNotPanic(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	var m Metrics = noopMetrics{}
	m.RecordOperation(ctx, OpMeta{Name: "get", Slot: 1}, 10*time.Millisecond, boom)
	m.RecordLookup(ctx, "JULES_API_KEY_1", false)

	tracer := NewTracer(nil)
	_, span := tracer.StartSpan(ctx, OpMeta{Name: "get"})
	tracer.EndSpan(span, boom)

	if NopLogger().With(OpMeta{Name: "get"}) == nil {
		t.Fatal("With should return a logger")
	}
}
