package observe

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*otelMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := newMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

func sumValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	found := findMetric(rm, name)
	if found == nil {
		return 0
	}
	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64] for %s, got %T", name, found.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_TotalCounterIncrements(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordOperation(context.Background(), OpMeta{Component: "accessor", Name: "all"}, 100*time.Millisecond, nil)

	if got := sumValue(t, collect(t, reader), "credential.op.total"); got != 1 {
		t.Errorf("expected count 1, got %d", got)
	}
}

func TestMetrics_ErrorCounter(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordOperation(ctx, OpMeta{Name: "get"}, time.Millisecond, nil)
	m.RecordOperation(ctx, OpMeta{Name: "get"}, time.Millisecond, errors.New("out of range"))

	rm := collect(t, reader)
	if got := sumValue(t, rm, "credential.op.total"); got != 2 {
		t.Errorf("expected total 2, got %d", got)
	}
	if got := sumValue(t, rm, "credential.op.errors"); got != 1 {
		t.Errorf("expected errors 1, got %d", got)
	}
}

func TestMetrics_DurationHistogramRecords(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordOperation(context.Background(), OpMeta{Name: "list"}, 250*time.Millisecond, nil)

	found := findMetric(collect(t, reader), "credential.op.duration_ms")
	if found == nil {
		t.Fatal("credential.op.duration_ms metric not found")
	}
	hist, ok := found.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", found.Data)
	}
	if len(hist.DataPoints) != 1 || hist.DataPoints[0].Sum != 250 {
		t.Errorf("unexpected histogram data: %+v", hist.DataPoints)
	}
}

func TestNewMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}

	m.RecordOperation(context.Background(), OpMeta{Component: "cli", Name: "get"}, time.Millisecond, nil)
	if got := sumValue(t, collect(t, reader), MetricOpTotal); got != 1 {
		t.Errorf("expected 1 operation, got %d", got)
	}
}

func TestMetrics_LookupCounter(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordLookup(ctx, "JULES_API_KEY_1", true)
	m.RecordLookup(ctx, "JULES_API_KEY_2", false)
	m.RecordLookup(ctx, "JULES_API_KEY_1", true)

	rm := collect(t, reader)
	if got := sumValue(t, rm, "credential.lookup.total"); got != 3 {
		t.Errorf("expected 3 lookups, got %d", got)
	}

	sum := findMetric(rm, "credential.lookup.total").Data.(metricdata.Sum[int64])
	if len(sum.DataPoints) != 2 {
		t.Errorf("expected 2 attribute sets, got %d", len(sum.DataPoints))
	}
	for _, dp := range sum.DataPoints {
		key, _ := dp.Attributes.Value("credential.key")
		found, _ := dp.Attributes.Value("credential.found")
		if key.AsString() == "JULES_API_KEY_1" && (dp.Value != 2 || !found.AsBool()) {
			t.Errorf("unexpected data point for slot 1: %+v", dp)
		}
	}
}

func TestMetrics_ConcurrentRecording(t *testing.T) {
	m, reader := newTestMetrics(t)

	const numGoroutines = 50
	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordOperation(context.Background(), OpMeta{Name: "count"}, time.Millisecond, nil)
		}()
	}
	wg.Wait()

	if got := sumValue(t, collect(t, reader), "credential.op.total"); got != numGoroutines {
		t.Errorf("expected count %d, got %d", numGoroutines, got)
	}
}

// findMetric searches for a metric by name in ResourceMetrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}
