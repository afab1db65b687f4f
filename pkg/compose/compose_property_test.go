package compose

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/shuliangfu/render-sub000/pkg/component"
)

// TestCompositionProperties checks the structural invariants of layout
// composition over arbitrary layout lists and skip masks.
func TestCompositionProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("root is first non-skipped layout, leaf is the page", prop.ForAll(
		func(names []string, skips []bool) bool {
			layouts := make([]Entry, len(names))
			for i, n := range names {
				skip := i < len(skips) && skips[i]
				layouts[i] = Entry{Component: "l-" + n, Skip: skip}
			}

			page := "the-page"
			root := ComposeLayouts(page, nil, layouts, false)
			kept := FilterLayouts(layouts)

			// Walk down the children chain, collecting components.
			var chain []any
			node := root
			for node != nil {
				chain = append(chain, node.Component)
				next, _ := node.Props[ChildrenProp].(*Node)
				node = next
			}

			if len(chain) != len(kept)+1 {
				return false
			}
			for i, l := range kept {
				if chain[i] != l.Component {
					return false
				}
			}
			return chain[len(chain)-1] == page
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.Bool()),
	))

	properties.Property("skipAll always yields the bare page node", prop.ForAll(
		func(names []string) bool {
			layouts := make([]Entry, len(names))
			for i, n := range names {
				layouts[i] = Entry{Component: n}
			}
			root := ComposeLayouts("p", component.Props{"k": "v"}, layouts, true)
			return root.Component == "p" && root.Props[ChildrenProp] == nil
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}
