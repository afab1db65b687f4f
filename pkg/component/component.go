package component

import (
	"context"
	"reflect"
)

// Props holds component properties passed through layout composition and
// down to the adapter.
type Props map[string]any

// Context is the immutable per-render input: the requested URL, matched
// route parameters, and arbitrary passthrough values the caller wants
// surfaced in the client payload.
type Context struct {
	URL    string
	Params map[string]string
	Extra  map[string]any
}

// DefaultContext returns the context used when the caller supplies none.
func DefaultContext() *Context {
	return &Context{URL: "/", Params: map[string]string{}}
}

// Normalize fills zero fields with their defaults. A nil context becomes
// DefaultContext. The receiver is never mutated.
func (c *Context) Normalize() *Context {
	if c == nil {
		return DefaultContext()
	}
	out := &Context{URL: c.URL, Params: c.Params, Extra: c.Extra}
	if out.URL == "" {
		out.URL = "/"
	}
	if out.Params == nil {
		out.Params = map[string]string{}
	}
	return out
}

// RenderFunc is a function component. It returns either markup, a nested
// node understood by the tree builder, or nil.
type RenderFunc func(rc *Context, props Props) any

// MetadataFunc computes metadata from the render context. It may block;
// the engine suspends on it with no internal timeout.
type MetadataFunc func(ctx context.Context, rc *Context) (any, error)

// LoadFunc loads server data for a component. Failures are logged and
// degrade to "no data" rather than aborting the render.
type LoadFunc func(ctx context.Context, rc *Context) (map[string]any, error)

// Capability interfaces. A component may expose any subset, either on
// itself or on its Default export (one level only, never deeper).
type (
	// MetadataCarrier exposes static metadata or a MetadataFunc.
	MetadataCarrier interface{ ComponentMetadata() any }

	// DataLoader exposes a server data loader.
	DataLoader interface {
		Load(ctx context.Context, rc *Context) (map[string]any, error)
	}

	// ScriptCarrier exposes script declarations. Entries are
	// scripts.Definition values or bare source strings.
	ScriptCarrier interface{ ComponentScripts() []any }

	// LayoutInheritance lets a component opt out of surrounding layouts.
	LayoutInheritance interface{ InheritLayout() bool }

	// RouteCarrier declares the route a component belongs to.
	RouteCarrier interface{ Route() string }

	// DefaultExport mirrors a bundled module whose capabilities live on
	// its default export rather than the module object itself.
	DefaultExport interface{ Default() any }
)

// Spec is the concrete capability object. Any subset of fields may be set;
// absent fields are simply not capabilities.
type Spec struct {
	// Render produces the component's output when the built-in adapter
	// renders it. Ignored by adapters with their own component model.
	Render RenderFunc

	// Metadata is a static metadata value or a MetadataFunc.
	Metadata any

	// Load is the server data loader.
	Load LoadFunc

	// Scripts are script declarations: scripts.Definition values or bare
	// source strings.
	Scripts []any

	// InheritLayout, when set to false, removes the component from its
	// surrounding layouts. Unset means inherit.
	InheritLayout *bool

	// Route is the declared route, exposed in the client payload.
	Route string
}

// Descriptor is the normalized view of a component's capabilities. It is
// produced once per component by Describe; the rest of the pipeline never
// re-probes raw values.
type Descriptor struct {
	Metadata      any
	Load          LoadFunc
	Scripts       []any
	InheritLayout *bool
	Route         string
}

// Describe normalizes a raw component into a Descriptor. Each capability
// is looked up on the value itself and, when absent there, on its Default
// export — exactly one level, never deeper. Nil and primitive values yield
// an empty descriptor.
func Describe(raw any) Descriptor {
	var d Descriptor
	fill(&d, raw)
	if de, ok := raw.(DefaultExport); ok {
		fill(&d, de.Default())
	}
	return d
}

// fill copies capabilities from v into d, keeping already-present fields.
func fill(d *Descriptor, v any) {
	if v == nil {
		return
	}
	if s, ok := v.(*Spec); ok {
		if s == nil {
			return
		}
		if d.Metadata == nil {
			d.Metadata = s.Metadata
		}
		if d.Load == nil {
			d.Load = s.Load
		}
		if d.Scripts == nil {
			d.Scripts = s.Scripts
		}
		if d.InheritLayout == nil {
			d.InheritLayout = s.InheritLayout
		}
		if d.Route == "" {
			d.Route = s.Route
		}
		return
	}
	if d.Metadata == nil {
		if mc, ok := v.(MetadataCarrier); ok {
			d.Metadata = mc.ComponentMetadata()
		}
	}
	if d.Load == nil {
		if dl, ok := v.(DataLoader); ok {
			d.Load = dl.Load
		}
	}
	if d.Scripts == nil {
		if sc, ok := v.(ScriptCarrier); ok {
			d.Scripts = sc.ComponentScripts()
		}
	}
	if d.InheritLayout == nil {
		if li, ok := v.(LayoutInheritance); ok {
			inherit := li.InheritLayout()
			d.InheritLayout = &inherit
		}
	}
	if d.Route == "" {
		if rc, ok := v.(RouteCarrier); ok {
			d.Route = rc.Route()
		}
	}
}

// Kind classifies a raw component value.
type Kind uint8

const (
	KindInvalid Kind = iota // nil, primitives, anything unrenderable
	KindTag                 // plain element tag name
	KindFunc                // callable component
	KindObject              // capability object
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindTag:
		return "Tag"
	case KindFunc:
		return "Func"
	case KindObject:
		return "Object"
	default:
		return "Invalid"
	}
}

// KindOf classifies a component: a non-empty string is a tag name, any
// function value is callable, and capability objects are values exposing
// at least one capability (directly or via a Default export). Everything
// else is invalid.
func KindOf(raw any) Kind {
	switch v := raw.(type) {
	case nil:
		return KindInvalid
	case string:
		if v == "" {
			return KindInvalid
		}
		return KindTag
	case *Spec:
		if v == nil {
			return KindInvalid
		}
		return KindObject
	}
	if reflect.ValueOf(raw).Kind() == reflect.Func {
		return KindFunc
	}
	switch raw.(type) {
	case MetadataCarrier, DataLoader, ScriptCarrier, LayoutInheritance, RouteCarrier, DefaultExport:
		return KindObject
	}
	return KindInvalid
}

// Bool returns a pointer to b, for Spec.InheritLayout literals.
func Bool(b bool) *bool { return &b }
