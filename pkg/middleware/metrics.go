package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shuliangfu/render-sub000/pkg/engine"
)

// Renderer is the engine surface the wrappers decorate. *engine.Engine
// satisfies it.
type Renderer interface {
	Render(ctx context.Context, opts engine.Options) (*engine.RenderResult, error)
}

// MetricsConfig configures the Prometheus metrics wrapper.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "renderkit").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics wrapper.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "renderkit",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus metrics for render calls.
type metrics struct {
	rendersTotal    *prometheus.CounterVec
	renderDuration  *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	fallbackRenders prometheus.Counter
	payloadBytes    prometheus.Histogram
}

// globalMetrics is the singleton metrics instance, created on the first
// Prometheus() call so repeated wrapping never double-registers.
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

// initMetrics registers the Prometheus metrics.
func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of render calls by engine and status",
			ConstLabels: config.ConstLabels,
		}, []string{"engine", "status"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Render call duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"engine"}),

		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "metadata_cache_hits_total",
			Help:        "Total number of metadata cache hits",
			ConstLabels: config.ConstLabels,
		}),

		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "metadata_cache_misses_total",
			Help:        "Total number of metadata cache misses",
			ConstLabels: config.ConstLabels,
		}),

		fallbackRenders: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "fallback_renders_total",
			Help:        "Total number of renders served by the fallback component",
			ConstLabels: config.ConstLabels,
		}),

		payloadBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "data_payload_bytes",
			Help:        "Size of the serialized client data payload in bytes",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1024, 10240, 102400, 1048576}, // 1KB to 1MB
		}),
	}
}

// metricsRenderer decorates a Renderer with Prometheus metrics.
type metricsRenderer struct {
	next Renderer
	m    *metrics
}

// Prometheus wraps a renderer with Prometheus metrics collection.
//
// Metrics collected:
//   - renderkit_renders_total: Counter of renders by engine and status
//   - renderkit_render_duration_seconds: Histogram of render duration
//   - renderkit_metadata_cache_hits_total / _misses_total
//   - renderkit_fallback_renders_total: Counter of recovered renders
//   - renderkit_data_payload_bytes: Histogram of payload sizes
//
// Expose them with promhttp:
//
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(next Renderer, opts ...MetricsOption) Renderer {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	return &metricsRenderer{next: next, m: m}
}

func (r *metricsRenderer) Render(ctx context.Context, opts engine.Options) (*engine.RenderResult, error) {
	start := time.Now()
	result, err := r.next.Render(ctx, opts)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		r.m.rendersTotal.WithLabelValues("unknown", "error").Inc()
		r.m.renderDuration.WithLabelValues("unknown").Observe(elapsed)
		return nil, err
	}

	eng := result.RenderInfo.Engine
	if eng == "" {
		eng = "unknown"
	}
	r.m.rendersTotal.WithLabelValues(eng, "ok").Inc()
	r.m.renderDuration.WithLabelValues(eng).Observe(elapsed)

	if result.FromCache {
		r.m.cacheHits.Inc()
	} else {
		r.m.cacheMisses.Inc()
	}
	if result.RenderInfo.Recovered {
		r.m.fallbackRenders.Inc()
	}
	if result.OriginalSize > 0 {
		r.m.payloadBytes.Observe(float64(result.OriginalSize))
	}
	return result, nil
}
