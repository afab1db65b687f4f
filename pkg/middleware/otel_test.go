package middleware

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"

	"github.com/shuliangfu/render-sub000/pkg/adapter"
	"github.com/shuliangfu/render-sub000/pkg/component"
	"github.com/shuliangfu/render-sub000/pkg/engine"
)

func TestOpenTelemetryPassesResultThrough(t *testing.T) {
	stub := &stubRenderer{result: &engine.RenderResult{
		HTML:       "<p>ok</p>",
		RenderInfo: adapter.RenderInfo{Engine: "html"},
	}}

	extracted := false
	r := OpenTelemetry(stub,
		WithTracerName("test"),
		WithAttributeExtractor(func(opts engine.Options) []attribute.KeyValue {
			extracted = true
			return []attribute.KeyValue{attribute.String("test.attr", "ok")}
		}))

	result, err := r.Render(context.Background(), engine.Options{
		Component: "p",
		Context:   &component.Context{URL: "/traced"},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if result.HTML != "<p>ok</p>" {
		t.Errorf("HTML = %q", result.HTML)
	}
	if !extracted {
		t.Error("attribute extractor not invoked")
	}
	if stub.calls != 1 {
		t.Errorf("renderer called %d times, want 1", stub.calls)
	}
}

func TestOpenTelemetryPropagatesError(t *testing.T) {
	wantErr := errors.New("boom")
	stub := &stubRenderer{err: wantErr}

	r := OpenTelemetry(stub)
	_, err := r.Render(context.Background(), engine.Options{Component: "p"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want %v", err, wantErr)
	}
}

func TestOpenTelemetryFilterSkipsTracing(t *testing.T) {
	stub := &stubRenderer{result: &engine.RenderResult{}}

	extracted := false
	r := OpenTelemetry(stub,
		WithRenderFilter(func(opts engine.Options) bool {
			return opts.Context == nil || opts.Context.URL != "/healthz"
		}),
		WithAttributeExtractor(func(engine.Options) []attribute.KeyValue {
			extracted = true
			return nil
		}))

	_, err := r.Render(context.Background(), engine.Options{
		Component: "p",
		Context:   &component.Context{URL: "/healthz"},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if stub.calls != 1 {
		t.Error("filtered call must still reach the renderer")
	}
	if extracted {
		t.Error("attribute extractor ran for a filtered call")
	}
}
