package htmladapter

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/shuliangfu/render-sub000/internal/errors"
	"github.com/shuliangfu/render-sub000/internal/htmlesc"
	"github.com/shuliangfu/render-sub000/pkg/adapter"
	"github.com/shuliangfu/render-sub000/pkg/component"
	"github.com/shuliangfu/render-sub000/pkg/compose"
)

// EngineName identifies the built-in adapter.
const EngineName = "html"

// Adapter renders composed component trees straight to HTML markup.
// Tag components become elements, function components are invoked with
// their children pre-rendered, and text children are escaped.
type Adapter struct{}

// New creates the built-in HTML adapter.
func New() *Adapter {
	return &Adapter{}
}

// Name identifies the engine.
func (a *Adapter) Name() string { return EngineName }

// RenderSSR composes the layout chain around the page component, builds
// the element tree, and serializes it to markup.
func (a *Adapter) RenderSSR(_ context.Context, opts adapter.Options) (*adapter.Result, error) {
	rc := opts.Context.Normalize()

	skipAll := opts.SkipLayouts || compose.ShouldSkipLayouts(opts.Component)
	node := compose.ComposeLayouts(opts.Component, opts.Props, opts.Layouts, skipAll)

	built, err := compose.BuildTree(a.factory(rc), node)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	renderValue(&sb, built)

	return &adapter.Result{
		HTML:       sb.String(),
		RenderInfo: adapter.RenderInfo{Engine: EngineName},
	}, nil
}

// element is a built node awaiting serialization.
type element struct {
	tag      string
	props    component.Props
	children []any
}

// rawHTML marks markup that must not be escaped again.
type rawHTML string

// factory builds framework elements for the tree builder. Tag components
// become elements; function and object components are invoked with their
// already-rendered children available under the children prop.
func (a *Adapter) factory(rc *component.Context) compose.Factory {
	return func(comp any, props component.Props, children ...any) (any, error) {
		switch component.KindOf(comp) {
		case component.KindTag:
			return &element{tag: comp.(string), props: props, children: children}, nil

		case component.KindFunc:
			fn, ok := asRenderFunc(comp)
			if !ok {
				return nil, errors.InvalidComponent("function component %T is not renderable", comp)
			}
			return invoke(fn, rc, props, children)

		case component.KindObject:
			fn, ok := resolveRender(comp)
			if !ok {
				return nil, errors.InvalidComponent("object component %T has no render function", comp)
			}
			return invoke(fn, rc, props, children)

		default:
			return nil, errors.InvalidComponent("unsupported component type %T", comp)
		}
	}
}

// invoke calls a function component. Its children arrive pre-rendered as
// a markup string under the children prop, so the function can splice
// them into its own output.
func invoke(fn component.RenderFunc, rc *component.Context, props component.Props, children []any) (any, error) {
	callProps := props
	if len(children) > 0 {
		callProps = make(component.Props, len(props)+1)
		for k, v := range props {
			callProps[k] = v
		}
		var sb strings.Builder
		for _, child := range children {
			renderValue(&sb, child)
		}
		callProps[compose.ChildrenProp] = sb.String()
	}

	out := fn(rc, callProps)
	switch v := out.(type) {
	case nil:
		return nil, nil
	case string:
		// Function components return markup, not text.
		return rawHTML(v), nil
	default:
		return v, nil
	}
}

// asRenderFunc adapts supported function shapes to RenderFunc.
func asRenderFunc(comp any) (component.RenderFunc, bool) {
	switch fn := comp.(type) {
	case component.RenderFunc:
		return fn, true
	case func(*component.Context, component.Props) any:
		return fn, true
	}
	// Zero-arg functions render without caring about context or props.
	if fn, ok := comp.(func() any); ok {
		return func(*component.Context, component.Props) any { return fn() }, true
	}
	return nil, false
}

// resolveRender finds the render function of an object component, probing
// the value itself and then its default export, one level only.
func resolveRender(comp any) (component.RenderFunc, bool) {
	if fn, ok := specRender(comp); ok {
		return fn, true
	}
	if de, ok := comp.(component.DefaultExport); ok {
		inner := de.Default()
		if fn, ok := specRender(inner); ok {
			return fn, true
		}
		if fn, ok := asRenderFunc(inner); inner != nil && ok {
			return fn, true
		}
	}
	return nil, false
}

func specRender(v any) (component.RenderFunc, bool) {
	if s, ok := v.(*component.Spec); ok && s != nil && s.Render != nil {
		return s.Render, true
	}
	return nil, false
}

// renderValue serializes a built value. Strings are escaped as text,
// rawHTML passes through, elements render recursively, and everything
// else is formatted then escaped.
func renderValue(sb *strings.Builder, v any) {
	switch val := v.(type) {
	case nil:
		return
	case *element:
		renderElement(sb, val)
	case rawHTML:
		sb.WriteString(string(val))
	case string:
		sb.WriteString(htmlesc.Text(val))
	case []any:
		for _, item := range val {
			renderValue(sb, item)
		}
	default:
		sb.WriteString(htmlesc.Text(fmt.Sprint(val)))
	}
}

// renderElement writes an element with sorted attributes and its children.
func renderElement(sb *strings.Builder, el *element) {
	sb.WriteByte('<')
	sb.WriteString(el.tag)
	renderAttributes(sb, el.props)
	sb.WriteByte('>')

	if isVoidElement(el.tag) {
		return
	}

	for _, child := range el.children {
		renderValue(sb, child)
	}

	sb.WriteString("</")
	sb.WriteString(el.tag)
	sb.WriteByte('>')
}

// renderAttributes writes props as attributes in sorted key order.
func renderAttributes(sb *strings.Builder, props component.Props) {
	if len(props) == 0 {
		return
	}

	keys := make([]string, 0, len(props))
	for key := range props {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := props[key]

		// Internal props are never serialized.
		if strings.HasPrefix(key, "_") || key == compose.ChildrenProp {
			continue
		}
		if value == nil {
			continue
		}
		if reflect.ValueOf(value).Kind() == reflect.Func {
			continue
		}

		switch key {
		case "className":
			key = "class"
		case "htmlFor":
			key = "for"
		}

		if isBooleanAttr(key) {
			if boolValue, ok := value.(bool); ok {
				if boolValue {
					sb.WriteByte(' ')
					sb.WriteString(key)
				}
				continue
			}
		}

		strValue := attrToString(value)
		if strValue == "" {
			continue
		}
		sb.WriteByte(' ')
		sb.WriteString(key)
		sb.WriteString(`="`)
		sb.WriteString(htmlesc.Attr(strValue))
		sb.WriteByte('"')
	}
}

// attrToString formats an attribute value.
func attrToString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(v)
	}
}
