package recovery

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shuliangfu/render-sub000/internal/errors"
	"github.com/shuliangfu/render-sub000/internal/htmlesc"
	"github.com/shuliangfu/render-sub000/pkg/adapter"
)

// State tracks where a render attempt is in its lifecycle.
type State uint8

const (
	// StateRendering is the initial state while the primary component
	// renders.
	StateRendering State = iota

	// StateSucceeded means the render produced markup.
	StateSucceeded

	// StateFailed means the primary render errored.
	StateFailed

	// StateRecovering means a fallback component is being rendered in
	// place of the failed one.
	StateRecovering

	// StateFatallyFailed means the fallback also errored. No further
	// attempts are made.
	StateFatallyFailed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateRendering:
		return "rendering"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateRecovering:
		return "recovering"
	case StateFatallyFailed:
		return "fatally_failed"
	default:
		return "unknown"
	}
}

// ErrorHook is invoked when the primary render fails, before any
// fallback attempt. It is best-effort: errors and panics inside the
// hook are logged and otherwise ignored.
type ErrorHook func(err error, opts adapter.Options)

// Coordinator wraps an adapter with one-shot fallback recovery. When
// the primary render fails and a fallback component is configured, the
// coordinator swaps the component and retries once with the options
// otherwise unchanged. A fallback failure is fatal.
type Coordinator struct {
	adapter  adapter.Adapter
	fallback any
	onError  ErrorHook
	quiet    bool
	logger   *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithFallback sets the component rendered when the primary component
// fails. Without a fallback, primary failures are fatal.
func WithFallback(comp any) Option {
	return func(c *Coordinator) { c.fallback = comp }
}

// WithErrorHook sets a hook invoked on primary render failure.
func WithErrorHook(hook ErrorHook) Option {
	return func(c *Coordinator) { c.onError = hook }
}

// WithQuiet suppresses error logging. Hooks still run.
func WithQuiet(quiet bool) Option {
	return func(c *Coordinator) { c.quiet = quiet }
}

// WithLogger sets the logger used for failure reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// New creates a Coordinator around the given adapter.
func New(a adapter.Adapter, opts ...Option) *Coordinator {
	c := &Coordinator{
		adapter: a,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Render renders opts through the underlying adapter, applying the
// fallback policy on failure. On recovery the returned result has
// RenderInfo.Recovered set. When both the primary and the fallback
// fail, the returned error wraps the fallback error; the caller can
// serve StaticErrorDocument as a last-resort response body.
func (c *Coordinator) Render(ctx context.Context, opts adapter.Options) (*adapter.Result, error) {
	result, err := c.renderSafe(ctx, opts)
	if err == nil {
		return result, nil
	}

	c.reportFailure(StateFailed, err, opts)

	if c.fallback == nil {
		return nil, errors.AdapterRender(c.adapter.Name(), err)
	}

	fallbackOpts := opts
	fallbackOpts.Component = c.fallback
	result, fbErr := c.renderSafe(ctx, fallbackOpts)
	if fbErr != nil {
		if !c.quiet {
			c.logger.Error("fallback render failed",
				slog.String("engine", c.adapter.Name()),
				slog.String("state", StateFatallyFailed.String()),
				slog.Any("error", fbErr))
		}
		return nil, errors.FallbackRender(c.adapter.Name(), fbErr)
	}

	result.RenderInfo.Recovered = true
	return result, nil
}

// renderSafe invokes the adapter, converting panics into errors so a
// misbehaving component cannot take down the server.
func (c *Coordinator) renderSafe(ctx context.Context, opts adapter.Options) (result *adapter.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("render panicked: %v", r)
		}
	}()
	return c.adapter.RenderSSR(ctx, opts)
}

// reportFailure runs the error hook and logs the primary failure. Hook
// panics and logging are both best-effort.
func (c *Coordinator) reportFailure(state State, err error, opts adapter.Options) {
	if c.onError != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error("error hook panicked", slog.Any("panic", r))
				}
			}()
			c.onError(err, opts)
		}()
	}
	if !c.quiet {
		url := ""
		if opts.Context != nil {
			url = opts.Context.URL
		}
		c.logger.Error("render failed",
			slog.String("engine", c.adapter.Name()),
			slog.String("state", state.String()),
			slog.String("url", url),
			slog.Any("error", err))
	}
}

// StaticErrorDocument builds a minimal standalone HTML document for the
// case where both the primary and fallback renders failed.
func StaticErrorDocument(engine string, err error) string {
	msg := "internal render error"
	if err != nil {
		msg = err.Error()
	}
	return "<!DOCTYPE html><html><head><title>Render Error</title></head>" +
		"<body><h1>Render Error</h1><p>" + htmlesc.Text(msg) + "</p>" +
		"<p>engine: " + htmlesc.Text(engine) + "</p></body></html>"
}
