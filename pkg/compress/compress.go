package compress

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/shuliangfu/render-sub000/internal/errors"
)

// DefaultThreshold is the payload size in bytes below which compression
// is never attempted.
const DefaultThreshold = 10240

// minRun is the shortest character run the substitution pass replaces.
const minRun = 10

// Options gates the compression pass.
type Options struct {
	Enabled bool

	// Threshold is the minimum serialized size in bytes. Zero means
	// DefaultThreshold.
	Threshold int
}

// Payload is a compressed client payload with size diagnostics.
type Payload struct {
	// Compressed is the base64-encoded compacted text.
	Compressed string `json:"compressed"`

	// OriginalSize is the serialized size before compaction, in bytes.
	OriginalSize int `json:"originalSize"`

	// CompressedSize is the compacted size that was encoded, in bytes.
	CompressedSize int `json:"compressedSize"`
}

// Ratio is CompressedSize over OriginalSize.
func (p *Payload) Ratio() float64 {
	if p.OriginalSize == 0 {
		return 0
	}
	return float64(p.CompressedSize) / float64(p.OriginalSize)
}

// Compress serializes data and attempts a size reduction pass: whitespace
// compaction plus substitution of character runs longer than 10 with a
// short marker, then base64 encoding. It returns nil — meaning "emit the
// payload uncompressed" — when compression is disabled, the serialized
// form is below the threshold, or compaction failed to shrink it.
func Compress(data any, opts Options) (*Payload, error) {
	if !opts.Enabled {
		return nil, nil
	}
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Serialization(err, "cannot serialize payload for compression")
	}
	if len(raw) < threshold {
		return nil, nil
	}

	compacted := substituteRuns(compactWhitespace(string(raw)))
	if len(compacted) >= len(raw) {
		return nil, nil
	}

	return &Payload{
		Compressed:     base64.StdEncoding.EncodeToString([]byte(compacted)),
		OriginalSize:   len(raw),
		CompressedSize: len(compacted),
	}, nil
}

// Decompress decodes and parses a compressed payload.
//
// Known limitation: the run substitution applied by Compress is not
// inverted here, so payloads whose serialized form contained character
// runs longer than 10 do not round-trip; the markers survive into the
// parsed value. Callers that need lossless round-trips must disable
// compression.
func Decompress(b64 string) (any, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, errors.Wrap(errors.CodeSerialization, errors.CategoryCompress, err, "invalid compressed payload")
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrap(errors.CodeSerialization, errors.CategoryCompress, err, "compressed payload is not valid JSON")
	}
	return out, nil
}

// ClientScript emits a self-contained script that decodes the payload
// into the given global slot and exposes size diagnostics alongside it.
func ClientScript(p *Payload, slot string) string {
	if p == nil || slot == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("<script>(function(){")
	fmt.Fprintf(&b, "var t=atob(%q);", p.Compressed)
	fmt.Fprintf(&b, "window.%s=JSON.parse(t);", slot)
	fmt.Fprintf(&b, "window.%s_INFO={originalSize:%d,compressedSize:%d,ratio:%.4f};",
		slot, p.OriginalSize, p.CompressedSize, p.Ratio())
	b.WriteString("})();</script>")
	return b.String()
}

// compactWhitespace collapses every whitespace run into a single space.
func compactWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inRun := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inRun {
				b.WriteByte(' ')
				inRun = true
			}
			continue
		}
		inRun = false
		b.WriteRune(r)
	}
	return b.String()
}

// substituteRuns replaces runs of one character longer than minRun with a
// "~R{char}{length};" marker.
func substituteRuns(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	runes := []rune(s)
	for i := 0; i < len(runes); {
		j := i
		for j < len(runes) && runes[j] == runes[i] {
			j++
		}
		if n := j - i; n > minRun {
			fmt.Fprintf(&b, "~R%c%d;", runes[i], n)
		} else {
			for k := i; k < j; k++ {
				b.WriteRune(runes[k])
			}
		}
		i = j
	}
	return b.String()
}
