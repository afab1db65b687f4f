package middleware

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/shuliangfu/render-sub000/pkg/adapter"
	"github.com/shuliangfu/render-sub000/pkg/engine"
)

// stubRenderer returns a canned result or error.
type stubRenderer struct {
	result *engine.RenderResult
	err    error
	calls  int
}

func (s *stubRenderer) Render(context.Context, engine.Options) (*engine.RenderResult, error) {
	s.calls++
	return s.result, s.err
}

func resetGlobalMetricsForTest() {
	globalMetricsMu.Lock()
	globalMetrics = nil
	globalMetricsMu.Unlock()
}

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestPrometheusRecordsSuccess(t *testing.T) {
	resetGlobalMetricsForTest()
	reg := prometheus.NewRegistry()

	stub := &stubRenderer{result: &engine.RenderResult{
		RenderInfo:   adapter.RenderInfo{Engine: "html"},
		OriginalSize: 2048,
	}}
	r := Prometheus(stub, WithRegistry(reg))

	if _, err := r.Render(context.Background(), engine.Options{Component: "p"}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	m := globalMetrics
	if got := metricCounterValue(t, m.rendersTotal.WithLabelValues("html", "ok")); got != 1 {
		t.Errorf("renders_total(html, ok) = %v, want 1", got)
	}
	if got := metricHistogramCount(t, m.renderDuration.WithLabelValues("html")); got != 1 {
		t.Errorf("render_duration sample count = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.cacheMisses); got != 1 {
		t.Errorf("cache_misses = %v, want 1", got)
	}
	if got := metricHistogramCount(t, m.payloadBytes); got != 1 {
		t.Errorf("payload_bytes sample count = %v, want 1", got)
	}
}

func TestPrometheusRecordsError(t *testing.T) {
	resetGlobalMetricsForTest()
	reg := prometheus.NewRegistry()

	stub := &stubRenderer{err: fmt.Errorf("render broke")}
	r := Prometheus(stub, WithRegistry(reg))

	if _, err := r.Render(context.Background(), engine.Options{Component: "p"}); err == nil {
		t.Fatal("Render() error = nil, want propagated failure")
	}

	m := globalMetrics
	if got := metricCounterValue(t, m.rendersTotal.WithLabelValues("unknown", "error")); got != 1 {
		t.Errorf("renders_total(unknown, error) = %v, want 1", got)
	}
}

func TestPrometheusRecordsCacheHitAndFallback(t *testing.T) {
	resetGlobalMetricsForTest()
	reg := prometheus.NewRegistry()

	stub := &stubRenderer{result: &engine.RenderResult{
		RenderInfo: adapter.RenderInfo{Engine: "html", Recovered: true},
		FromCache:  true,
	}}
	r := Prometheus(stub, WithRegistry(reg))

	if _, err := r.Render(context.Background(), engine.Options{Component: "p"}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	m := globalMetrics
	if got := metricCounterValue(t, m.cacheHits); got != 1 {
		t.Errorf("cache_hits = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.fallbackRenders); got != 1 {
		t.Errorf("fallback_renders = %v, want 1", got)
	}
}

func TestPrometheusInitializesOnce(t *testing.T) {
	resetGlobalMetricsForTest()
	reg := prometheus.NewRegistry()

	stub := &stubRenderer{result: &engine.RenderResult{}}
	// Wrapping twice against the same registry must not panic with
	// duplicate registration.
	r := Prometheus(Prometheus(stub, WithRegistry(reg)), WithRegistry(reg))

	if _, err := r.Render(context.Background(), engine.Options{Component: "p"}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if stub.calls != 1 {
		t.Errorf("inner renderer called %d times, want 1", stub.calls)
	}
}
