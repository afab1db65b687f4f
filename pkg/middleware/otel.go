package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shuliangfu/render-sub000/pkg/engine"
)

// Default tracer name for render pipelines.
const defaultTracerName = "renderkit"

// OTelConfig configures the OpenTelemetry wrapper.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "renderkit").
	TracerName string

	// Filter determines which render calls to trace. Return true to
	// trace the call, false to skip. If nil, all calls are traced.
	Filter func(opts engine.Options) bool

	// AttributeExtractor extracts custom attributes per call.
	AttributeExtractor func(opts engine.Options) []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry wrapper.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithRenderFilter sets a filter function for render calls.
func WithRenderFilter(filter func(opts engine.Options) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(opts engine.Options) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// otelRenderer decorates a Renderer with tracing.
type otelRenderer struct {
	next   Renderer
	config OTelConfig
}

// OpenTelemetry wraps a renderer so every render call produces a span
// with url, engine, cache, and recovery attributes. Errors are recorded
// and set the span status.
//
// The tracer uses the global OpenTelemetry tracer provider; configure it
// in main() before serving.
func OpenTelemetry(next Renderer, opts ...OTelOption) Renderer {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)
	return &otelRenderer{next: next, config: config}
}

func (r *otelRenderer) Render(ctx context.Context, opts engine.Options) (*engine.RenderResult, error) {
	if r.config.Filter != nil && !r.config.Filter(opts) {
		return r.next.Render(ctx, opts)
	}

	url := "/"
	if opts.Context != nil && opts.Context.URL != "" {
		url = opts.Context.URL
	}

	attrs := []attribute.KeyValue{
		attribute.String("render.url", url),
		attribute.Int("render.layouts", len(opts.Layouts)),
	}
	if r.config.AttributeExtractor != nil {
		attrs = append(attrs, r.config.AttributeExtractor(opts)...)
	}

	ctx, span := r.config.tracer.Start(ctx, "render",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...))
	defer span.End()

	result, err := r.next.Render(ctx, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("render.engine", result.RenderInfo.Engine),
		attribute.Bool("render.from_cache", result.FromCache),
		attribute.Bool("render.recovered", result.RenderInfo.Recovered),
	)
	span.SetStatus(codes.Ok, "")
	return result, nil
}
