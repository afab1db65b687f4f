package metadata

import (
	"context"
	"sort"
	"strings"

	"github.com/shuliangfu/render-sub000/internal/htmlesc"
	"github.com/shuliangfu/render-sub000/pkg/component"
)

// Metadata is page descriptive data destined for the document head.
// Scalar fields merge last-writer-wins across ordered sources; map fields
// merge key-by-key with the same precedence.
type Metadata struct {
	Title       string
	Description string
	Keywords    string
	Author      string
	OG          map[string]string
	Twitter     map[string]string
	Custom      map[string]string
}

// Clone returns a deep copy. Nil maps stay nil.
func (m *Metadata) Clone() *Metadata {
	if m == nil {
		return nil
	}
	out := &Metadata{
		Title:       m.Title,
		Description: m.Description,
		Keywords:    m.Keywords,
		Author:      m.Author,
	}
	out.OG = cloneMap(m.OG)
	out.Twitter = cloneMap(m.Twitter)
	out.Custom = cloneMap(m.Custom)
	return out
}

func cloneMap(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// Extract returns a component's metadata capability: a static value or a
// function of the render context. Returns nil when the component declares
// none, which is always valid.
func Extract(c any) any {
	return component.Describe(c).Metadata
}

// Resolve turns an extracted metadata value into Metadata. Function values
// are invoked with the render context and may block; their errors propagate
// to the caller, deliberately unlike server data loads which degrade.
func Resolve(ctx context.Context, value any, rc *component.Context) (*Metadata, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case component.MetadataFunc:
		out, err := v(ctx, rc)
		if err != nil {
			return nil, err
		}
		return coerce(out), nil
	case func(ctx context.Context, rc *component.Context) (any, error):
		out, err := v(ctx, rc)
		if err != nil {
			return nil, err
		}
		return coerce(out), nil
	default:
		return coerce(value), nil
	}
}

// coerce converts static metadata forms into *Metadata.
func coerce(value any) *Metadata {
	switch v := value.(type) {
	case nil:
		return nil
	case *Metadata:
		return v
	case Metadata:
		return &v
	case map[string]string:
		return FromMap(v)
	default:
		return nil
	}
}

// FromMap builds Metadata from a flat key map. Keys "og:*" and "twitter:*"
// land in the corresponding tag maps; the four scalar names map to their
// fields; everything else becomes a custom tag.
func FromMap(m map[string]string) *Metadata {
	md := &Metadata{}
	for k, v := range m {
		switch {
		case k == "title":
			md.Title = v
		case k == "description":
			md.Description = v
		case k == "keywords":
			md.Keywords = v
		case k == "author":
			md.Author = v
		case strings.HasPrefix(k, "og:"):
			if md.OG == nil {
				md.OG = map[string]string{}
			}
			md.OG[strings.TrimPrefix(k, "og:")] = v
		case strings.HasPrefix(k, "twitter:"):
			if md.Twitter == nil {
				md.Twitter = map[string]string{}
			}
			md.Twitter[strings.TrimPrefix(k, "twitter:")] = v
		default:
			if md.Custom == nil {
				md.Custom = map[string]string{}
			}
			md.Custom[k] = v
		}
	}
	return md
}

// Merge folds ordered layout metadata and then the page metadata into one
// value. Precedence is layout[0] < layout[1] < ... < page: later sources
// overwrite scalars and win per key in the OG/Twitter/Custom maps.
func Merge(layouts []*Metadata, page *Metadata) *Metadata {
	merged := &Metadata{}
	for _, l := range layouts {
		apply(merged, l)
	}
	apply(merged, page)
	return merged
}

func apply(dst, src *Metadata) {
	if src == nil {
		return
	}
	if src.Title != "" {
		dst.Title = src.Title
	}
	if src.Description != "" {
		dst.Description = src.Description
	}
	if src.Keywords != "" {
		dst.Keywords = src.Keywords
	}
	if src.Author != "" {
		dst.Author = src.Author
	}
	dst.OG = mergeMap(dst.OG, src.OG)
	dst.Twitter = mergeMap(dst.Twitter, src.Twitter)
	dst.Custom = mergeMap(dst.Custom, src.Custom)
}

func mergeMap(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// MetaTags renders one tag per populated field, entity-escaped. Missing
// og/twitter title and description are synthesized from the top-level
// values so social cards never lose the basics.
func MetaTags(md *Metadata) string {
	if md == nil {
		return ""
	}

	var b strings.Builder
	writeTag := func(tag string) {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(tag)
	}

	if md.Title != "" {
		writeTag("<title>" + htmlesc.Text(md.Title) + "</title>")
	}
	if md.Description != "" {
		writeTag(`<meta name="description" content="` + htmlesc.Attr(md.Description) + `">`)
	}
	if md.Keywords != "" {
		writeTag(`<meta name="keywords" content="` + htmlesc.Attr(md.Keywords) + `">`)
	}
	if md.Author != "" {
		writeTag(`<meta name="author" content="` + htmlesc.Attr(md.Author) + `">`)
	}

	og := synthesized(md.OG, md)
	for _, k := range sortedKeys(og) {
		writeTag(`<meta property="og:` + htmlesc.Attr(k) + `" content="` + htmlesc.Attr(og[k]) + `">`)
	}

	tw := synthesized(md.Twitter, md)
	for _, k := range sortedKeys(tw) {
		writeTag(`<meta name="twitter:` + htmlesc.Attr(k) + `" content="` + htmlesc.Attr(tw[k]) + `">`)
	}

	for _, k := range sortedKeys(md.Custom) {
		writeTag(`<meta name="` + htmlesc.Attr(k) + `" content="` + htmlesc.Attr(md.Custom[k]) + `">`)
	}

	return b.String()
}

// synthesized fills missing title/description entries from the top-level
// scalars without mutating the source map.
func synthesized(src map[string]string, md *Metadata) map[string]string {
	needTitle := md.Title != "" && src["title"] == ""
	needDesc := md.Description != "" && src["description"] == ""
	if !needTitle && !needDesc {
		return src
	}
	out := make(map[string]string, len(src)+2)
	for k, v := range src {
		out[k] = v
	}
	if needTitle {
		out["title"] = md.Title
	}
	if needDesc {
		out["description"] = md.Description
	}
	return out
}

// sortedKeys keeps tag output deterministic.
func sortedKeys(m map[string]string) []string {
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
