package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/shuliangfu/render-sub000/internal/errors"
	"github.com/shuliangfu/render-sub000/pkg/adapter"
	"github.com/shuliangfu/render-sub000/pkg/cache"
	"github.com/shuliangfu/render-sub000/pkg/component"
	"github.com/shuliangfu/render-sub000/pkg/compose"
	"github.com/shuliangfu/render-sub000/pkg/compress"
	"github.com/shuliangfu/render-sub000/pkg/inject"
	"github.com/shuliangfu/render-sub000/pkg/loader"
	"github.com/shuliangfu/render-sub000/pkg/metadata"
	"github.com/shuliangfu/render-sub000/pkg/recovery"
	"github.com/shuliangfu/render-sub000/pkg/scripts"
)

// DefaultDataSlot is the global variable the serialized page payload is
// assigned to in the emitted data script.
const DefaultDataSlot = "__RENDER_DATA__"

// Options describes one render call.
type Options struct {
	// Component is the page component.
	Component any

	// Props are passed to the page component.
	Props component.Props

	// Context is the render context; nil means defaults.
	Context *component.Context

	// Layouts wrap the page, ordered outermost first.
	Layouts []compose.Entry

	// Template is the HTML document the rendered markup and generated
	// fragments are injected into. Empty means no document injection:
	// the result carries the bare markup and fragments.
	Template string

	// Metadata overrides resolved metadata. A value or a MetadataFunc;
	// it always wins over layout and page metadata.
	Metadata any

	// Data overrides page data key-by-key, winning over loaded values.
	Data map[string]any

	// SkipLayouts renders the page without its layouts.
	SkipLayouts bool
}

// Performance carries per-call timing.
type Performance struct {
	// Total is the wall time of the whole Render call.
	Total time.Duration

	// Load is the time spent in metadata resolution and data loading.
	Load time.Duration

	// Adapter is the time spent generating markup.
	Adapter time.Duration
}

// RenderResult is the unified output of one render call.
type RenderResult struct {
	HTML        string
	Styles      []string
	Scripts     []string
	RenderInfo  adapter.RenderInfo
	Metadata    *metadata.Metadata
	LayoutData  map[string]any
	PageData    map[string]any
	Performance Performance
	FromCache   bool

	// DataScript and ScriptTags carry the generated fragments verbatim,
	// so callers rendering without a template can place them themselves.
	DataScript string
	ScriptTags string

	// CompressedSize and OriginalSize are set when the data payload was
	// emitted compressed.
	CompressedSize int
	OriginalSize   int
}

// Engine sequences a render: layout composition, metadata resolution,
// data loading, script collection, adapter invocation with recovery,
// payload serialization, and template injection.
type Engine struct {
	adapter adapter.Adapter
	coord   *recovery.Coordinator
	logger  *slog.Logger

	cacheStore  cache.Store
	cacheTTL    time.Duration
	cacheKeyFn  cache.KeyFunc
	compressOpt compress.Options

	// lazyThreshold is the uncompressed payload size, in bytes, above
	// which the data script defers JSON parsing. Zero disables it.
	lazyThreshold int

	dataSlot string

	fallback any
	onError  recovery.ErrorHook
	quiet    bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for load failures and recovery reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithCache enables metadata caching in the given store. A ttl of zero
// keeps entries until evicted.
func WithCache(store cache.Store, ttl time.Duration) Option {
	return func(e *Engine) {
		e.cacheStore = store
		e.cacheTTL = ttl
	}
}

// WithCacheKey sets a custom cache key function.
func WithCacheKey(fn cache.KeyFunc) Option {
	return func(e *Engine) { e.cacheKeyFn = fn }
}

// WithCompression enables payload compression above the threshold.
// A threshold of zero uses the compressor default.
func WithCompression(threshold int) Option {
	return func(e *Engine) {
		e.compressOpt = compress.Options{Enabled: true, Threshold: threshold}
	}
}

// WithLazyThreshold defers payload parsing for uncompressed payloads
// larger than n bytes.
func WithLazyThreshold(n int) Option {
	return func(e *Engine) { e.lazyThreshold = n }
}

// WithDataSlot sets the global variable name the payload is assigned to.
func WithDataSlot(slot string) Option {
	return func(e *Engine) { e.dataSlot = slot }
}

// WithFallback sets the component rendered when the page component fails.
func WithFallback(comp any) Option {
	return func(e *Engine) { e.fallback = comp }
}

// WithErrorHook sets a hook invoked on primary render failure.
func WithErrorHook(hook recovery.ErrorHook) Option {
	return func(e *Engine) { e.onError = hook }
}

// WithQuiet suppresses render failure logging.
func WithQuiet(quiet bool) Option {
	return func(e *Engine) { e.quiet = quiet }
}

// New creates an Engine around the given adapter.
func New(a adapter.Adapter, opts ...Option) *Engine {
	e := &Engine{
		adapter:  a,
		logger:   slog.Default(),
		dataSlot: DefaultDataSlot,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.coord = recovery.New(a,
		recovery.WithFallback(e.fallback),
		recovery.WithErrorHook(e.onError),
		recovery.WithQuiet(e.quiet),
		recovery.WithLogger(e.logger))
	return e
}

// AdapterName reports the engine's rendering backend.
func (e *Engine) AdapterName() string {
	return e.adapter.Name()
}

// Render runs the full pipeline for one page.
func (e *Engine) Render(ctx context.Context, opts Options) (*RenderResult, error) {
	start := time.Now()

	rc := opts.Context.Normalize()

	// A cache hit skips metadata resolution, nothing else: data loading
	// and script extraction still run for every component.
	var cached *metadata.Metadata
	if e.cacheStore != nil {
		md, err := cache.CachedMetadata(ctx, e.cacheStore, rc, e.cacheKeyFn)
		if err != nil {
			e.logger.Warn("metadata cache read failed",
				slog.String("url", rc.URL), slog.Any("error", err))
		} else {
			cached = md
		}
	}
	hit := cached != nil

	skipAll := opts.SkipLayouts || compose.ShouldSkipLayouts(opts.Component)
	layouts := compose.FilterLayouts(opts.Layouts)
	if skipAll {
		layouts = nil
	}

	loadStart := time.Now()

	var (
		layoutMetas  []*metadata.Metadata
		layoutData   map[string]any
		layoutRoutes []string
		scriptLists  [][]scripts.Definition
	)
	for _, entry := range layouts {
		d := component.Describe(entry.Component)
		if !hit && d.Metadata != nil {
			md, err := metadata.Resolve(ctx, d.Metadata, rc)
			if err != nil {
				return nil, err
			}
			if md != nil {
				layoutMetas = append(layoutMetas, md)
			}
		}
		if data := loader.Load(ctx, d.Load, rc, e.logger); data != nil {
			layoutData = loader.Merge(layoutData, data)
		}
		if list := scripts.Extract(entry.Component); len(list) > 0 {
			scriptLists = append(scriptLists, list)
		}
		if d.Route != "" {
			layoutRoutes = append(layoutRoutes, d.Route)
		}
	}

	pd := component.Describe(opts.Component)
	var pageMeta *metadata.Metadata
	if !hit && pd.Metadata != nil {
		md, err := metadata.Resolve(ctx, pd.Metadata, rc)
		if err != nil {
			return nil, err
		}
		pageMeta = md
	}
	pageData := loader.Load(ctx, pd.Load, rc, e.logger)
	if list := scripts.Extract(opts.Component); len(list) > 0 {
		scriptLists = append(scriptLists, list)
	}
	pageRoute := pd.Route

	merged := cached
	if !hit && (len(layoutMetas) > 0 || pageMeta != nil) {
		merged = metadata.Merge(layoutMetas, pageMeta)
	}

	// Caller overrides always win, over cached values included.
	if opts.Metadata != nil {
		override, err := metadata.Resolve(ctx, opts.Metadata, rc)
		if err != nil {
			return nil, err
		}
		merged = metadata.Merge([]*metadata.Metadata{merged}, override)
	}
	if opts.Data != nil {
		pageData = loader.Merge(pageData, opts.Data)
	}

	loadDuration := time.Since(loadStart)

	if e.cacheStore != nil && !hit && merged != nil {
		if err := cache.CacheMetadata(ctx, e.cacheStore, rc, merged, e.cacheTTL, e.cacheKeyFn); err != nil {
			e.logger.Warn("metadata cache write failed",
				slog.String("url", rc.URL), slog.Any("error", err))
		}
	}

	adapterStart := time.Now()
	rendered, err := e.coord.Render(ctx, adapter.Options{
		Component:   opts.Component,
		Props:       opts.Props,
		Context:     rc,
		Layouts:     layouts,
		SkipLayouts: skipAll,
	})
	if err != nil {
		return nil, err
	}
	adapterDuration := time.Since(adapterStart)

	result := &RenderResult{
		Styles:     rendered.Styles,
		Scripts:    rendered.Scripts,
		RenderInfo: rendered.RenderInfo,
		Metadata:   merged,
		LayoutData: layoutData,
		PageData:   pageData,
		FromCache:  hit,
	}

	allScripts := scripts.Merge(scriptLists...)

	payload := e.payload(merged, layoutData, pageData, rc, layoutRoutes, pageRoute)
	dataScript, err := e.dataScript(payload, result)
	if err != nil {
		return nil, err
	}

	result.DataScript = dataScript
	result.ScriptTags = joinFragments(scripts.Tags(allScripts), scripts.AsyncLoader(allScripts))

	result.HTML = e.injectAll(opts.Template, rendered.HTML, merged, dataScript, result.ScriptTags)

	result.Performance = Performance{
		Total:   time.Since(start),
		Load:    loadDuration,
		Adapter: adapterDuration,
	}
	return result, nil
}

// payload assembles the unified client data payload.
func (e *Engine) payload(md *metadata.Metadata, layoutData, pageData map[string]any, rc *component.Context, layoutRoutes []string, pageRoute string) map[string]any {
	p := map[string]any{
		"url":    rc.URL,
		"params": rc.Params,
	}
	if md != nil {
		p["metadata"] = md
	}
	if layoutData != nil {
		p["layoutData"] = layoutData
	}
	if pageData != nil {
		p["pageData"] = pageData
	}
	if len(layoutRoutes) > 0 {
		p["layoutRoutes"] = layoutRoutes
	}
	if pageRoute != "" {
		p["route"] = pageRoute
		p["pageRoute"] = pageRoute
	}
	for k, v := range rc.Extra {
		if _, taken := p[k]; !taken {
			p[k] = v
		}
	}
	return p
}

// dataScript serializes the payload, preferring compression, then lazy
// parsing above the threshold, then a plain inline assignment.
func (e *Engine) dataScript(payload map[string]any, result *RenderResult) (string, error) {
	if compressed, err := compress.Compress(payload, e.compressOpt); err != nil {
		return "", err
	} else if compressed != nil {
		result.CompressedSize = compressed.CompressedSize
		result.OriginalSize = compressed.OriginalSize
		return compress.ClientScript(compressed, e.dataSlot), nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Serialization(err, "marshal data payload")
	}

	if e.lazyThreshold > 0 && len(raw) > e.lazyThreshold {
		return lazyScript(string(raw), e.dataSlot), nil
	}
	return "<script>window." + e.dataSlot + " = " + string(raw) + ";</script>", nil
}

// lazyScript parses a large payload off the critical path, at idle time
// when the browser supports it.
func lazyScript(rawJSON, slot string) string {
	encoded, _ := json.Marshal(rawJSON)
	return "<script>(function(){" +
		"var parse=function(){window." + slot + "=JSON.parse(" + string(encoded) + ");};" +
		"if(window.requestIdleCallback){requestIdleCallback(parse);}else{setTimeout(parse,0);}" +
		"})();</script>"
}

// joinFragments concatenates two HTML fragments, dropping empties.
func joinFragments(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + "\n" + b
}

// injectAll places the markup and generated fragments into the template.
// Without a template the bare markup is returned; the fragments stay
// available on the RenderResult for the caller to place.
func (e *Engine) injectAll(template, markup string, md *metadata.Metadata, dataScript, scriptTags string) string {
	if template == "" {
		return markup
	}

	html := inject.InjectComponent(template, markup)

	var list []inject.Injection
	if metaTags := metadata.MetaTags(md); metaTags != "" {
		list = append(list, inject.Injection{
			Content: metaTags,
			Options: inject.Options{Type: inject.TypeMeta, InHead: true},
		})
	}
	if dataScript != "" {
		list = append(list, inject.Injection{
			Content: dataScript,
			Options: inject.Options{Type: inject.TypeDataScript, InHead: true},
		})
	}
	if scriptTags != "" {
		list = append(list, inject.Injection{
			Content: scriptTags,
			Options: inject.Options{Type: inject.TypeScript},
		})
	}
	return inject.InjectMultiple(html, list)
}
