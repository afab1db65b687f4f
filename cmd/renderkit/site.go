package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shuliangfu/render-sub000/internal/config"
	"github.com/shuliangfu/render-sub000/internal/errors"
	"github.com/shuliangfu/render-sub000/pkg/cache"
	"github.com/shuliangfu/render-sub000/pkg/component"
	"github.com/shuliangfu/render-sub000/pkg/compose"
	"github.com/shuliangfu/render-sub000/pkg/engine"
	"github.com/shuliangfu/render-sub000/pkg/htmladapter"
)

// defaultTemplate is used when the config names no template file.
const defaultTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body>
<div id="app"><!--app-html--></div>
</body>
</html>`

// page is one entry of the built-in sample site.
type page struct {
	component any
	props     component.Props
	layouts   []compose.Entry
}

// sampleSite returns the demo pages served by the CLI. They exercise
// layouts, metadata, data loading, and script collection end to end.
func sampleSite() map[string]page {
	shell := &component.Spec{
		Render: func(_ *component.Context, props component.Props) any {
			return fmt.Sprintf(`<div class="shell"><header>renderkit</header>%v</div>`,
				props[compose.ChildrenProp])
		},
		Metadata: map[string]string{
			"author":      "renderkit",
			"description": "A renderkit sample site",
		},
		Scripts: []any{"/static/shell.js"},
		Route:   "/",
	}

	home := &component.Spec{
		Render: func(rc *component.Context, _ component.Props) any {
			return fmt.Sprintf("<main><h1>Home</h1><p>You are at %s</p></main>", rc.URL)
		},
		Metadata: map[string]string{"title": "Home"},
		Route:    "/",
	}

	about := &component.Spec{
		Render: func(*component.Context, component.Props) any {
			return "<main><h1>About</h1><p>Render orchestration for Go.</p></main>"
		},
		Metadata: component.MetadataFunc(func(_ context.Context, rc *component.Context) (any, error) {
			return map[string]string{
				"title":    "About",
				"og:title": "About renderkit",
			}, nil
		}),
		Load: func(_ context.Context, rc *component.Context) (map[string]any, error) {
			return map[string]any{"generatedAt": time.Now().UTC().Format(time.RFC3339)}, nil
		},
		Route: "/about",
	}

	layouts := []compose.Entry{{Component: shell}}
	return map[string]page{
		"/":      {component: home, layouts: layouts},
		"/about": {component: about, layouts: layouts},
	}
}

// loadTemplate reads the configured template file, falling back to the
// built-in document.
func loadTemplate(cfg *config.Config) (string, error) {
	if cfg.Template.Path == "" {
		return defaultTemplate, nil
	}
	data, err := os.ReadFile(cfg.Template.Path)
	if err != nil {
		return "", errors.Wrap(errors.CodeConfigInvalid, errors.CategoryConfig, err,
			"cannot read template %s", cfg.Template.Path)
	}
	return string(data), nil
}

// buildStore constructs the metadata cache store named by the config.
func buildStore(cfg *config.Config) (cache.Store, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	switch cfg.Cache.Backend {
	case config.BackendMemory:
		return cache.NewMemoryStore(cache.WithMaxSize(cfg.Cache.MaxSize)), nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		return cache.NewRedisStore(client), nil
	case config.BackendS3:
		// The s3 store needs an injected client with credentials; it is
		// a library-level backend, not constructible from config alone.
		return nil, errors.New(errors.CodeConfigInvalid, errors.CategoryConfig,
			"the s3 cache backend requires programmatic setup; use the memory or redis backend here")
	default:
		return nil, errors.New(errors.CodeConfigInvalid, errors.CategoryConfig,
			"unknown cache backend %q", cfg.Cache.Backend)
	}
}

// buildEngine wires an engine from the project config.
func buildEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithDataSlot(cfg.Data.Slot),
	}

	store, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}
	if store != nil {
		ttl, err := cfg.CacheTTL()
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithCache(store, ttl))
	}
	if cfg.Compression.Enabled {
		opts = append(opts, engine.WithCompression(cfg.Compression.Threshold))
	}
	if cfg.Data.LazyThreshold > 0 {
		opts = append(opts, engine.WithLazyThreshold(cfg.Data.LazyThreshold))
	}

	fallback := &component.Spec{
		Render: func(*component.Context, component.Props) any {
			return "<main><h1>Something went wrong</h1><p>The page failed to render.</p></main>"
		},
		Metadata: map[string]string{"title": "Error"},
	}
	opts = append(opts, engine.WithFallback(fallback))

	return engine.New(htmladapter.New(), opts...), nil
}

// loadConfig reads renderkit.json from the working directory, falling
// back to defaults when the file does not exist.
func loadConfig() (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(wd, config.ConfigFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.New(), nil
	}
	return config.LoadFile(path)
}
