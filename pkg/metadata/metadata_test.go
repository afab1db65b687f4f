package metadata

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shuliangfu/render-sub000/pkg/component"
)

func TestExtract(t *testing.T) {
	spec := &component.Spec{Metadata: &Metadata{Title: "T"}}
	if Extract(spec) == nil {
		t.Error("metadata on the component should be found")
	}
	if Extract("div") != nil {
		t.Error("a bare tag has no metadata")
	}
	if Extract(nil) != nil {
		t.Error("nil component has no metadata")
	}
}

func TestResolveStatic(t *testing.T) {
	md, err := Resolve(context.Background(), &Metadata{Title: "Home"}, component.DefaultContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if md.Title != "Home" {
		t.Errorf("got title %q", md.Title)
	}
}

func TestResolveFunc(t *testing.T) {
	fn := component.MetadataFunc(func(ctx context.Context, rc *component.Context) (any, error) {
		return &Metadata{Title: "For " + rc.URL}, nil
	})

	md, err := Resolve(context.Background(), fn, &component.Context{URL: "/p"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if md.Title != "For /p" {
		t.Errorf("got title %q", md.Title)
	}
}

func TestResolveFuncErrorPropagates(t *testing.T) {
	boom := errors.New("metadata boom")
	fn := component.MetadataFunc(func(ctx context.Context, rc *component.Context) (any, error) {
		return nil, boom
	})

	if _, err := Resolve(context.Background(), fn, component.DefaultContext()); !errors.Is(err, boom) {
		t.Errorf("resolution errors must propagate, got %v", err)
	}
}

func TestResolveMap(t *testing.T) {
	md, err := Resolve(context.Background(), map[string]string{
		"title":        "M",
		"og:image":     "/img.png",
		"twitter:card": "summary",
		"robots":       "noindex",
	}, component.DefaultContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if md.Title != "M" || md.OG["image"] != "/img.png" || md.Twitter["card"] != "summary" || md.Custom["robots"] != "noindex" {
		t.Errorf("map form mis-parsed: %+v", md)
	}
}

func TestMergePrecedence(t *testing.T) {
	layouts := []*Metadata{{Title: "A", Description: "D"}}
	page := &Metadata{Title: "B"}

	merged := Merge(layouts, page)
	if merged.Title != "B" {
		t.Errorf("page title should win, got %q", merged.Title)
	}
	if merged.Description != "D" {
		t.Errorf("layout description should survive, got %q", merged.Description)
	}
}

func TestMergeObjectFields(t *testing.T) {
	layouts := []*Metadata{
		{OG: map[string]string{"type": "website", "image": "/a.png"}},
		{OG: map[string]string{"image": "/b.png"}},
	}
	page := &Metadata{OG: map[string]string{"title": "P"}}

	merged := Merge(layouts, page)
	if merged.OG["type"] != "website" {
		t.Error("outer layout keys should survive")
	}
	if merged.OG["image"] != "/b.png" {
		t.Error("inner layout should overwrite per key")
	}
	if merged.OG["title"] != "P" {
		t.Error("page keys should win")
	}
}

func TestMergeDoesNotMutateSources(t *testing.T) {
	l := &Metadata{OG: map[string]string{"k": "1"}}
	Merge([]*Metadata{l}, &Metadata{OG: map[string]string{"k": "2"}})
	if l.OG["k"] != "1" {
		t.Error("merge must not mutate its sources")
	}
}

func TestMetaTags(t *testing.T) {
	md := &Metadata{
		Title:       "A & B",
		Description: `say "hi"`,
		Custom:      map[string]string{"robots": "noindex"},
	}

	tags := MetaTags(md)
	if !strings.Contains(tags, "<title>A &amp; B</title>") {
		t.Errorf("title should be escaped, got %q", tags)
	}
	if !strings.Contains(tags, `content="say &quot;hi&quot;"`) {
		t.Errorf("description should be attribute-escaped, got %q", tags)
	}
	if !strings.Contains(tags, `name="robots" content="noindex"`) {
		t.Errorf("custom tags should be emitted, got %q", tags)
	}
}

func TestMetaTagsSynthesizesSocialVariants(t *testing.T) {
	md := &Metadata{Title: "T", Description: "D", OG: map[string]string{"type": "article"}}

	tags := MetaTags(md)
	for _, want := range []string{
		`property="og:title" content="T"`,
		`property="og:description" content="D"`,
		`name="twitter:title" content="T"`,
		`name="twitter:description" content="D"`,
		`property="og:type" content="article"`,
	} {
		if !strings.Contains(tags, want) {
			t.Errorf("missing %q in %q", want, tags)
		}
	}
}

func TestMetaTagsExplicitSocialWins(t *testing.T) {
	md := &Metadata{Title: "T", OG: map[string]string{"title": "OGT"}}

	tags := MetaTags(md)
	if !strings.Contains(tags, `property="og:title" content="OGT"`) {
		t.Errorf("explicit og:title should not be overwritten, got %q", tags)
	}
	if strings.Contains(tags, `property="og:title" content="T"`) {
		t.Error("synthesized og:title should not appear next to the explicit one")
	}
}

func TestMetaTagsNil(t *testing.T) {
	if MetaTags(nil) != "" {
		t.Error("nil metadata renders nothing")
	}
}
