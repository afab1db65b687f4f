package scripts

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shuliangfu/render-sub000/internal/htmlesc"
	"github.com/shuliangfu/render-sub000/pkg/component"
)

// DefaultPriority is the effective priority of entries that declare none.
// Lower priorities load first.
const DefaultPriority = 100

// Definition describes one script to attach to the rendered page.
type Definition struct {
	// Src is the external source URL. Takes precedence over Content for
	// identity purposes.
	Src string

	// Content is an inline script body.
	Content string

	Async bool
	Defer bool

	// Priority orders scripts ascending. Nil means DefaultPriority.
	Priority *int

	// Type is the script MIME type, when not the default.
	Type string

	// Attrs are extra attributes passed through to the tag verbatim
	// (boolean true renders a bare attribute).
	Attrs map[string]any
}

// EffectivePriority resolves the entry's sort priority.
func (d Definition) EffectivePriority() int {
	if d.Priority == nil {
		return DefaultPriority
	}
	return *d.Priority
}

// Key is the entry's identity for deduplication: Src, else Content, else
// a deterministic serialization of the definition itself.
func (d Definition) Key() string {
	if d.Src != "" {
		return d.Src
	}
	if d.Content != "" {
		return d.Content
	}
	raw, err := json.Marshal(struct {
		Async    bool           `json:"async"`
		Defer    bool           `json:"defer"`
		Priority int            `json:"priority"`
		Type     string         `json:"type,omitempty"`
		Attrs    map[string]any `json:"attrs,omitempty"`
	}{d.Async, d.Defer, d.EffectivePriority(), d.Type, d.Attrs})
	if err != nil {
		return fmt.Sprintf("%+v", d)
	}
	return string(raw)
}

// Priority returns a pointer to p, for Definition literals.
func Priority(p int) *int { return &p }

// Extract returns a component's script declarations, looked up on the
// component and one default-export level down. Bare strings normalize to
// external sources.
func Extract(c any) []Definition {
	raw := component.Describe(c).Scripts
	if len(raw) == 0 {
		return nil
	}
	defs := make([]Definition, 0, len(raw))
	for _, entry := range raw {
		switch v := entry.(type) {
		case string:
			defs = append(defs, Definition{Src: v})
		case Definition:
			defs = append(defs, v)
		case *Definition:
			if v != nil {
				defs = append(defs, *v)
			}
		}
	}
	return defs
}

// Merge concatenates the lists, drops duplicates (first occurrence wins),
// and stable-sorts ascending by priority.
func Merge(lists ...[]Definition) []Definition {
	seen := make(map[string]struct{})
	var merged []Definition
	for _, list := range lists {
		for _, d := range list {
			key := d.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, d)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].EffectivePriority() < merged[j].EffectivePriority()
	})
	return merged
}

// reserved fields never pass through as extra attributes.
var reserved = map[string]struct{}{
	"src": {}, "content": {}, "type": {}, "async": {}, "defer": {}, "priority": {},
}

// Tags renders one script tag per definition.
func Tags(defs []Definition) string {
	var b strings.Builder
	for _, d := range defs {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("<script")
		if d.Src != "" {
			b.WriteString(` src="` + htmlesc.Attr(d.Src) + `"`)
		}
		if d.Type != "" {
			b.WriteString(` type="` + htmlesc.Attr(d.Type) + `"`)
		}
		if d.Async {
			b.WriteString(" async")
		}
		if d.Defer {
			b.WriteString(" defer")
		}
		for _, k := range sortedAttrKeys(d.Attrs) {
			if _, skip := reserved[k]; skip {
				continue
			}
			switch v := d.Attrs[k].(type) {
			case bool:
				if v {
					b.WriteString(" " + k)
				}
			default:
				b.WriteString(` ` + k + `="` + htmlesc.Attr(fmt.Sprintf("%v", v)) + `"`)
			}
		}
		b.WriteString(">")
		if d.Src == "" && d.Content != "" {
			b.WriteString(d.Content)
		}
		b.WriteString("</script>")
	}
	return b.String()
}

// AsyncLoader emits a single script that loads the async and explicitly
// prioritized entries from the client: inline content runs immediately,
// external sources are appended as dynamically created script elements
// with their async/defer/type preserved. Returns "" when nothing applies.
func AsyncLoader(defs []Definition) string {
	var stmts []string
	for _, d := range defs {
		if !d.Async && d.Priority == nil {
			continue
		}
		if d.Src == "" && d.Content != "" {
			stmts = append(stmts, "(function(){"+d.Content+"})();")
			continue
		}
		if d.Src == "" {
			continue
		}
		var set strings.Builder
		fmt.Fprintf(&set, "var s=document.createElement('script');s.src=%s;", jsString(d.Src))
		if d.Async {
			set.WriteString("s.async=true;")
		}
		if d.Defer {
			set.WriteString("s.defer=true;")
		}
		if d.Type != "" {
			fmt.Fprintf(&set, "s.type=%s;", jsString(d.Type))
		}
		set.WriteString("document.head.appendChild(s);")
		stmts = append(stmts, "(function(){"+set.String()+"})();")
	}
	if len(stmts) == 0 {
		return ""
	}
	return "<script>" + strings.Join(stmts, "") + "</script>"
}

// jsString renders a Go string as a safe JS string literal.
func jsString(s string) string {
	raw, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(raw)
}

func sortedAttrKeys(m map[string]any) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
