package scripts

import (
	"strings"
	"testing"

	"github.com/shuliangfu/render-sub000/pkg/component"
)

func TestExtractNormalizesStrings(t *testing.T) {
	spec := &component.Spec{Scripts: []any{
		"/app.js",
		Definition{Content: "init()"},
	}}

	defs := Extract(spec)
	if len(defs) != 2 {
		t.Fatalf("got %d definitions, want 2", len(defs))
	}
	if defs[0].Src != "/app.js" {
		t.Errorf("bare string should become Src, got %+v", defs[0])
	}
	if defs[1].Content != "init()" {
		t.Errorf("definition entry should pass through, got %+v", defs[1])
	}
}

func TestExtractNone(t *testing.T) {
	if defs := Extract("div"); defs != nil {
		t.Errorf("tag components declare no scripts, got %v", defs)
	}
}

func TestMergePriorityOrder(t *testing.T) {
	a := []Definition{{Src: "a", Priority: Priority(10)}}
	b := []Definition{{Src: "b", Priority: Priority(1)}}

	merged := Merge(a, b)
	if len(merged) != 2 || merged[0].Src != "b" || merged[1].Src != "a" {
		t.Errorf("want [b a], got %v", merged)
	}
}

func TestMergeDedupFirstWins(t *testing.T) {
	a := []Definition{{Src: "x", Async: true}}
	b := []Definition{{Src: "x"}, {Content: "y()"}, {Content: "y()"}}

	merged := Merge(a, b)
	if len(merged) != 2 {
		t.Fatalf("got %d entries, want 2", len(merged))
	}
	for _, d := range merged {
		if d.Src == "x" && !d.Async {
			t.Error("first occurrence of a duplicate should win")
		}
	}
}

func TestMergeStableAtEqualPriority(t *testing.T) {
	merged := Merge([]Definition{{Src: "a"}, {Src: "b"}, {Src: "c"}})
	got := []string{merged[0].Src, merged[1].Src, merged[2].Src}
	if got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("equal priorities should keep insertion order, got %v", got)
	}
}

func TestTags(t *testing.T) {
	defs := []Definition{
		{Src: "/a.js", Async: true, Attrs: map[string]any{"crossorigin": "anonymous", "nomodule": true}},
		{Content: "boot()", Type: "module"},
	}

	tags := Tags(defs)
	if !strings.Contains(tags, `<script src="/a.js" async crossorigin="anonymous" nomodule></script>`) {
		t.Errorf("external tag malformed: %q", tags)
	}
	if !strings.Contains(tags, `<script type="module">boot()</script>`) {
		t.Errorf("inline tag malformed: %q", tags)
	}
}

func TestTagsSkipsReservedAttrs(t *testing.T) {
	tags := Tags([]Definition{{Src: "/a.js", Attrs: map[string]any{"priority": 5, "id": "x"}}})
	if strings.Contains(tags, "priority") {
		t.Errorf("reserved fields must not leak into attributes: %q", tags)
	}
	if !strings.Contains(tags, `id="x"`) {
		t.Errorf("non-reserved attrs should pass through: %q", tags)
	}
}

func TestAsyncLoader(t *testing.T) {
	defs := []Definition{
		{Src: "/later.js", Async: true, Type: "module"},
		{Content: "warm()", Priority: Priority(1)},
		{Src: "/plain.js"}, // neither async nor prioritized
	}

	out := AsyncLoader(defs)
	if !strings.Contains(out, `s.src="/later.js"`) || !strings.Contains(out, "s.async=true") || !strings.Contains(out, `s.type="module"`) {
		t.Errorf("dynamic loader missing pieces: %q", out)
	}
	if !strings.Contains(out, "warm()") {
		t.Errorf("inline prioritized content should run immediately: %q", out)
	}
	if strings.Contains(out, "/plain.js") {
		t.Errorf("unmarked scripts do not belong in the loader: %q", out)
	}
}

func TestAsyncLoaderEmpty(t *testing.T) {
	if out := AsyncLoader([]Definition{{Src: "/plain.js"}}); out != "" {
		t.Errorf("no async entries should render nothing, got %q", out)
	}
}
