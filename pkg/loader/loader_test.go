package loader

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/shuliangfu/render-sub000/pkg/component"
)

func TestExtractLoad(t *testing.T) {
	spec := &component.Spec{
		Load: func(ctx context.Context, rc *component.Context) (map[string]any, error) {
			return map[string]any{"ok": true}, nil
		},
	}
	if ExtractLoad(spec) == nil {
		t.Error("load function on the component should be found")
	}
	if ExtractLoad("div") != nil {
		t.Error("a bare tag has no load function")
	}
}

func TestLoadSuccess(t *testing.T) {
	fn := component.LoadFunc(func(ctx context.Context, rc *component.Context) (map[string]any, error) {
		return map[string]any{"user": rc.Params["id"]}, nil
	})

	rc := &component.Context{URL: "/u/1", Params: map[string]string{"id": "1"}}
	data := Load(context.Background(), fn, rc, nil)
	if data["user"] != "1" {
		t.Errorf("got %v", data)
	}
}

func TestLoadFailSoft(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	fn := component.LoadFunc(func(ctx context.Context, rc *component.Context) (map[string]any, error) {
		return nil, errors.New("db down")
	})

	data := Load(context.Background(), fn, component.DefaultContext(), logger)
	if data != nil {
		t.Errorf("failed load should yield nil data, got %v", data)
	}
	if !strings.Contains(buf.String(), "db down") {
		t.Errorf("failure should be logged, got %q", buf.String())
	}
}

func TestLoadConfinesPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	fn := component.LoadFunc(func(ctx context.Context, rc *component.Context) (map[string]any, error) {
		panic("nil map write")
	})

	data := Load(context.Background(), fn, component.DefaultContext(), logger)
	if data != nil {
		t.Errorf("panicking load should yield nil data, got %v", data)
	}
	if !strings.Contains(buf.String(), "panicked") {
		t.Errorf("panic should be logged, got %q", buf.String())
	}
}

func TestLoadNilFunc(t *testing.T) {
	if data := Load(context.Background(), nil, component.DefaultContext(), nil); data != nil {
		t.Errorf("nil load function loads nothing, got %v", data)
	}
}

func TestMergeInnerWins(t *testing.T) {
	dst := Merge(nil, map[string]any{"a": 1, "b": 1})
	dst = Merge(dst, map[string]any{"b": 2, "c": 3})

	if dst["a"] != 1 || dst["b"] != 2 || dst["c"] != 3 {
		t.Errorf("inner keys should overwrite outer ones, got %v", dst)
	}
}

func TestMergeEmptySource(t *testing.T) {
	if got := Merge(nil, nil); got != nil {
		t.Errorf("merging nothing into nothing stays nil, got %v", got)
	}
}
