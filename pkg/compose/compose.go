package compose

import (
	"github.com/shuliangfu/render-sub000/internal/errors"
	"github.com/shuliangfu/render-sub000/pkg/component"
)

// ChildrenProp is the props key holding a node's composed children.
const ChildrenProp = "children"

// Entry is one layout in an outer-to-inner ordered list.
type Entry struct {
	// Component wraps everything composed after this entry.
	Component any

	// Props are passed to the layout component alongside its children.
	Props component.Props

	// Skip removes the entry before composition without disturbing the
	// relative order of the remaining entries.
	Skip bool
}

// Node is a composed page/layout description: a component plus its props,
// where Props[ChildrenProp] may hold a nested Node.
type Node struct {
	Component any
	Props     component.Props
}

// ShouldSkipLayouts reports whether a component opts out of its layouts.
// Only an explicit "do not inherit" — on the component or one default
// export down — counts; nil and primitive values never skip.
func ShouldSkipLayouts(c any) bool {
	d := component.Describe(c)
	return d.InheritLayout != nil && !*d.InheritLayout
}

// FilterLayouts drops entries marked Skip, preserving relative order.
func FilterLayouts(layouts []Entry) []Entry {
	kept := make([]Entry, 0, len(layouts))
	for _, l := range layouts {
		if !l.Skip {
			kept = append(kept, l)
		}
	}
	return kept
}

// ComposeLayouts nests a page component inside its layouts. The fold runs
// innermost-first: the page is the deepest leaf and the first usable layout
// becomes the root. With skipAll set or no usable layouts, the page node is
// returned unchanged.
func ComposeLayouts(comp any, props component.Props, layouts []Entry, skipAll bool) *Node {
	node := &Node{Component: comp, Props: props}
	if skipAll {
		return node
	}
	usable := FilterLayouts(layouts)
	if len(usable) == 0 {
		return node
	}

	for i := len(usable) - 1; i >= 0; i-- {
		layout := usable[i]
		merged := make(component.Props, len(layout.Props)+1)
		for k, v := range layout.Props {
			merged[k] = v
		}
		merged[ChildrenProp] = node
		node = &Node{Component: layout.Component, Props: merged}
	}
	return node
}

// Factory turns a component, its props (children removed), and its built
// children into a framework element. Supplied by the adapter.
type Factory func(comp any, props component.Props, children ...any) (any, error)

// BuildTree recursively turns a composed Node into a framework element via
// the factory. Malformed component references fail fast, before the factory
// is ever called for them.
func BuildTree(factory Factory, node *Node) (any, error) {
	if node == nil {
		return nil, errors.InvalidComponent("cannot build tree from nil node")
	}
	if component.KindOf(node.Component) == component.KindInvalid {
		return nil, errors.InvalidComponent("unsupported component type %T", node.Component)
	}

	rest := make(component.Props, len(node.Props))
	var rawChildren any
	hasChildren := false
	for k, v := range node.Props {
		if k == ChildrenProp {
			rawChildren = v
			hasChildren = true
			continue
		}
		rest[k] = v
	}

	if !hasChildren || rawChildren == nil {
		return factory(node.Component, rest)
	}

	switch children := rawChildren.(type) {
	case *Node:
		// A falsy nested component means no child at all, not a recursion
		// into garbage.
		if children == nil || isFalsyComponent(children.Component) {
			return factory(node.Component, rest)
		}
		built, err := BuildTree(factory, children)
		if err != nil {
			return nil, err
		}
		return factory(node.Component, rest, built)

	case []any:
		built := make([]any, 0, len(children))
		for _, child := range children {
			nested, ok := child.(*Node)
			if !ok {
				// Literal values (text and the like) pass through untouched.
				built = append(built, child)
				continue
			}
			if nested == nil || isFalsyComponent(nested.Component) {
				built = append(built, nil)
				continue
			}
			elem, err := BuildTree(factory, nested)
			if err != nil {
				return nil, err
			}
			built = append(built, elem)
		}
		return factory(node.Component, rest, built...)

	default:
		return factory(node.Component, rest, rawChildren)
	}
}

// isFalsyComponent reports component values that stand for "nothing here".
func isFalsyComponent(c any) bool {
	if c == nil {
		return true
	}
	if s, ok := c.(string); ok {
		return s == ""
	}
	return false
}
