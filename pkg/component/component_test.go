package component

import (
	"context"
	"testing"
)

// moduleWithDefault exposes capabilities only through its default export.
type moduleWithDefault struct {
	inner any
}

func (m moduleWithDefault) Default() any { return m.inner }

// deepModule nests default exports two levels, which must not be probed.
type deepModule struct {
	inner any
}

func (m deepModule) Default() any { return moduleWithDefault{inner: m.inner} }

func TestDescribeSpec(t *testing.T) {
	loaded := false
	spec := &Spec{
		Metadata: map[string]string{"title": "Home"},
		Load: func(ctx context.Context, rc *Context) (map[string]any, error) {
			loaded = true
			return map[string]any{"n": 1}, nil
		},
		Scripts: []any{"/app.js"},
		Route:   "/home",
	}

	d := Describe(spec)
	if d.Metadata == nil {
		t.Error("metadata should be carried over")
	}
	if d.Load == nil {
		t.Fatal("load should be carried over")
	}
	if _, err := d.Load(context.Background(), DefaultContext()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !loaded {
		t.Error("load function should have run")
	}
	if d.Route != "/home" {
		t.Errorf("got route %q, want %q", d.Route, "/home")
	}
}

func TestDescribeDefaultExport(t *testing.T) {
	mod := moduleWithDefault{inner: &Spec{Route: "/about"}}

	d := Describe(mod)
	if d.Route != "/about" {
		t.Errorf("capabilities on the default export should be found, got route %q", d.Route)
	}
}

func TestDescribeTopLevelWins(t *testing.T) {
	outer := specModule{
		spec:  &Spec{Route: "/outer"},
		inner: &Spec{Route: "/inner"},
	}
	d := Describe(outer)
	if d.Route != "/outer" {
		t.Errorf("top-level capability should win, got %q", d.Route)
	}
}

// specModule exposes a route itself and a different one on its default.
type specModule struct {
	spec  *Spec
	inner any
}

func (m specModule) Route() string { return m.spec.Route }
func (m specModule) Default() any  { return m.inner }

func TestDescribeNeverProbesDeeper(t *testing.T) {
	mod := deepModule{inner: &Spec{Route: "/deep"}}

	d := Describe(mod)
	if d.Route != "" {
		t.Errorf("two levels of default export should not be probed, got %q", d.Route)
	}
}

func TestDescribeAbsenceIsValid(t *testing.T) {
	for _, raw := range []any{nil, 42, "div", map[string]any{}} {
		d := Describe(raw)
		if d.Metadata != nil || d.Load != nil || d.Scripts != nil || d.InheritLayout != nil || d.Route != "" {
			t.Errorf("Describe(%v) should be empty", raw)
		}
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want Kind
	}{
		{"tag", "div", KindTag},
		{"empty tag", "", KindInvalid},
		{"nil", nil, KindInvalid},
		{"int", 7, KindInvalid},
		{"map", map[string]any{}, KindInvalid},
		{"render func", RenderFunc(func(rc *Context, p Props) any { return nil }), KindFunc},
		{"plain func", func() {}, KindFunc},
		{"spec", &Spec{}, KindObject},
		{"nil spec", (*Spec)(nil), KindInvalid},
		{"default export", moduleWithDefault{}, KindObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.raw); got != tt.want {
				t.Errorf("KindOf(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeContext(t *testing.T) {
	var nilCtx *Context
	rc := nilCtx.Normalize()
	if rc.URL != "/" || rc.Params == nil {
		t.Errorf("nil context should normalize to defaults, got %+v", rc)
	}

	orig := &Context{URL: "/p", Params: map[string]string{"id": "1"}}
	rc = orig.Normalize()
	if rc.URL != "/p" || rc.Params["id"] != "1" {
		t.Errorf("populated context should pass through, got %+v", rc)
	}
}
