// Package loader extracts and invokes per-component server data loaders.
//
// Loading is fail-soft: a loader that errors (or panics) is logged and
// contributes no data, and the render continues. Layout data accumulates
// outer to inner with inner keys overwriting outer ones; page data is kept
// in its own slot and never folded into layout data.
package loader

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shuliangfu/render-sub000/pkg/component"
)

// ExtractLoad returns a component's load function, looked up on the
// component and one default-export level down. Nil when absent.
func ExtractLoad(c any) component.LoadFunc {
	return component.Describe(c).Load
}

// Load invokes a load function with the render context. On error or panic
// it logs through the given logger and returns nil, never aborting the
// render. A nil fn loads nothing.
func Load(ctx context.Context, fn component.LoadFunc, rc *component.Context, logger *slog.Logger) map[string]any {
	if fn == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	data, err := safeLoad(ctx, fn, rc)
	if err != nil {
		logger.Error("server data load failed", "url", rc.URL, "error", err)
		return nil
	}
	return data
}

// safeLoad confines panics from user load functions. An uncaught panic
// would abort the whole render, which loads must never do.
func safeLoad(ctx context.Context, fn component.LoadFunc, rc *component.Context) (data map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			data = nil
			err = &panicError{value: r}
		}
	}()
	return fn(ctx, rc)
}

type panicError struct{ value any }

func (e *panicError) Error() string {
	return fmt.Sprintf("load function panicked: %v", e.value)
}

// Merge shallow-merges src into dst and returns dst, allocating it when
// nil. Used to accumulate layout data outer to inner.
func Merge(dst, src map[string]any) map[string]any {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
