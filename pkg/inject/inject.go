package inject

import "strings"

// OutletMarker is the literal substring a template may carry where the
// component markup belongs.
const OutletMarker = "<!--app-html-->"

// Fragment types with dedicated placement rules. Any other type falls back
// to region-boundary placement.
const (
	TypeMeta       = "meta"
	TypeDataScript = "data-script"
	TypeScript     = "script"
)

// Options selects where a fragment lands in the document.
type Options struct {
	// Type is the fragment type (TypeMeta, TypeDataScript, TypeScript, or
	// anything else for boundary placement).
	Type string

	// InHead targets the head region instead of the body.
	InHead bool

	// CustomPosition, when present verbatim in the document, is replaced
	// by the fragment and overrides every other rule.
	CustomPosition string
}

// Injection pairs a fragment with its placement for InjectMultiple.
type Injection struct {
	Content string
	Options Options
}

// Inject places content into html. Placement resolution order:
//
//  1. CustomPosition found verbatim: replace it.
//  2. Meta in head: immediately after the last meta tag in the head,
//     else before </head>, else after <head>, else prepended.
//  3. Data script in head: after the last complete script pair in the
//     head, with the same fallback chain.
//  4. Script in body: after the last complete script pair in the body,
//     else before </body>, else appended.
//  5. Anything else: before the target region's closing tag, else after
//     its opening tag, else prepended (head) or appended (body).
//
// Because each call anchors on the last tag of its type, repeated
// injections of one type cluster contiguously.
func Inject(html, content string, opts Options) string {
	if content == "" {
		return html
	}
	if opts.CustomPosition != "" && strings.Contains(html, opts.CustomPosition) {
		return strings.Replace(html, opts.CustomPosition, content, 1)
	}

	switch {
	case opts.Type == TypeMeta && opts.InHead:
		return injectAfterLastTag(html, content, "meta", true)
	case opts.Type == TypeDataScript && opts.InHead:
		return injectAfterLastPair(html, content, true)
	case opts.Type == TypeScript && !opts.InHead:
		return injectAfterLastPair(html, content, false)
	default:
		return injectAtBoundary(html, content, opts.InHead)
	}
}

// InjectComponent places component markup into a template: the outlet
// marker when present, else just inside the opening body tag. Without a
// template the markup is returned verbatim.
func InjectComponent(template, markup string) string {
	if template == "" {
		return markup
	}
	if strings.Contains(template, OutletMarker) {
		return strings.Replace(template, OutletMarker, markup, 1)
	}
	if open, _, ok := region(template, "body"); ok {
		return template[:open] + markup + template[open:]
	}
	return template + markup
}

// InjectMultiple applies the injections in order.
func InjectMultiple(html string, list []Injection) string {
	for _, inj := range list {
		html = Inject(html, inj.Content, inj.Options)
	}
	return html
}

// lowerASCII lowercases the ASCII letters of s and leaves every other
// byte alone, so offsets found in the result are valid in s.
// strings.ToLower can change byte lengths (İ lowercases to a longer
// sequence) and would shift every offset past such a character.
func lowerASCII(s string) string {
	var lowered []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 'A' || c > 'Z' {
			continue
		}
		if lowered == nil {
			lowered = []byte(s)
		}
		lowered[i] = c + 'a' - 'A'
	}
	if lowered == nil {
		return s
	}
	return string(lowered)
}

// tagDelimiter reports whether c may follow a tag name inside an
// opening tag.
func tagDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '/', '>':
		return true
	}
	return false
}

// indexOpenTag finds the first opening tag with the given name in
// already-lowercased html. The name must be followed by a delimiter so
// "head" does not anchor on "<header>".
func indexOpenTag(lower, name string) int {
	prefix := "<" + name
	for from := 0; ; {
		at := strings.Index(lower[from:], prefix)
		if at < 0 {
			return -1
		}
		at += from
		if next := at + len(prefix); next < len(lower) && tagDelimiter(lower[next]) {
			return at
		}
		from = at + 1
	}
}

// lastIndexOpenTag is indexOpenTag scanning from the end.
func lastIndexOpenTag(lower, name string) int {
	prefix := "<" + name
	for from := len(lower); from > 0; {
		at := strings.LastIndex(lower[:from], prefix)
		if at < 0 {
			return -1
		}
		if next := at + len(prefix); next < len(lower) && tagDelimiter(lower[next]) {
			return at
		}
		from = at
	}
	return -1
}

// region locates the content span of <name ...>...</name>, returning the
// offset just past the opening tag and the offset of the closing tag.
func region(html, name string) (open, close int, ok bool) {
	lower := lowerASCII(html)
	start := indexOpenTag(lower, name)
	if start < 0 {
		return 0, 0, false
	}
	end := strings.IndexByte(lower[start:], '>')
	if end < 0 {
		return 0, 0, false
	}
	open = start + end + 1
	close = strings.Index(lower, "</"+name+">")
	if close < open {
		return open, 0, false
	}
	return open, close, true
}

// injectAfterLastTag inserts content after the last occurrence of a void
// tag (e.g. meta) inside the target region, falling back through the
// region boundaries.
func injectAfterLastTag(html, content, tag string, inHead bool) string {
	name := regionName(inHead)
	open, close, ok := region(html, name)
	if ok {
		body := lowerASCII(html[open:close])
		if at := lastIndexOpenTag(body, tag); at >= 0 {
			if end := strings.IndexByte(body[at:], '>'); end >= 0 {
				pos := open + at + end + 1
				return html[:pos] + "\n" + content + html[pos:]
			}
		}
	}
	return injectAtBoundary(html, content, inHead)
}

// injectAfterLastPair inserts content after the last complete
// <script>...</script> pair inside the target region, with the standard
// fallback chain.
func injectAfterLastPair(html, content string, inHead bool) string {
	name := regionName(inHead)
	open, close, ok := region(html, name)
	if ok {
		body := lowerASCII(html[open:close])
		if at := strings.LastIndex(body, "</script>"); at >= 0 {
			pos := open + at + len("</script>")
			return html[:pos] + "\n" + content + html[pos:]
		}
	}
	return injectAtBoundary(html, content, inHead)
}

// injectAtBoundary places content against the target region's boundaries:
// before the closing tag, else after the opening tag, else at the document
// edge nearest the region.
func injectAtBoundary(html, content string, inHead bool) string {
	name := regionName(inHead)
	lower := lowerASCII(html)

	if close := strings.Index(lower, "</"+name+">"); close >= 0 {
		return html[:close] + content + "\n" + html[close:]
	}
	if start := indexOpenTag(lower, name); start >= 0 {
		if end := strings.IndexByte(lower[start:], '>'); end >= 0 {
			pos := start + end + 1
			return html[:pos] + "\n" + content + html[pos:]
		}
	}
	if inHead {
		return content + "\n" + html
	}
	return html + "\n" + content
}

func regionName(inHead bool) string {
	if inHead {
		return "head"
	}
	return "body"
}
