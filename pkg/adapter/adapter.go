package adapter

import (
	"context"

	"github.com/shuliangfu/render-sub000/pkg/component"
	"github.com/shuliangfu/render-sub000/pkg/compose"
)

// Options carries everything an adapter needs to render a page on the
// server: the page component, its props, the request context, and the
// layout chain that should wrap it.
type Options struct {
	// Component is the page component to render.
	Component any

	// Props are the props passed to the page component.
	Props component.Props

	// Context is the request context. A nil Context is normalized to
	// defaults by the engine before the adapter is invoked.
	Context *component.Context

	// Layouts is the layout chain, outermost first. Entries whose Skip
	// flag is set have already been filtered out.
	Layouts []compose.Entry

	// SkipLayouts renders the component bare even when Layouts is
	// non-empty.
	SkipLayouts bool
}

// RenderInfo describes how a render was produced.
type RenderInfo struct {
	// Engine names the adapter that produced the markup.
	Engine string

	// Recovered is true when the markup came from a fallback component
	// after the primary component failed.
	Recovered bool

	// Extra holds adapter-specific details.
	Extra map[string]any
}

// Result is the output of a server-side render.
type Result struct {
	// HTML is the rendered markup for the component subtree. It does not
	// include the surrounding document template.
	HTML string

	// Styles are style payloads collected during the render, if the
	// adapter supports style extraction.
	Styles []string

	// Scripts are script payloads collected during the render.
	Scripts []string

	// RenderInfo describes the render.
	RenderInfo RenderInfo
}

// Adapter turns a composed component tree into markup. Implementations
// wrap a specific rendering engine; the orchestrator stays agnostic of
// how markup is produced.
type Adapter interface {
	// Name identifies the engine, e.g. "html".
	Name() string

	// RenderSSR renders the component described by opts to markup.
	RenderSSR(ctx context.Context, opts Options) (*Result, error)
}
