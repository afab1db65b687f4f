package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormat(t *testing.T) {
	err := New(CodeInvalidComponent, CategoryCompose, "unsupported component type %T", 42)

	msg := err.Error()
	if !strings.Contains(msg, "R001") {
		t.Errorf("error should contain code, got %q", msg)
	}
	if !strings.Contains(msg, "unsupported component type int") {
		t.Errorf("error should contain message, got %q", msg)
	}
}

func TestErrorEngineContext(t *testing.T) {
	cause := stderrors.New("boom")
	err := AdapterRender("html", cause)

	msg := err.Error()
	if !strings.Contains(msg, "engine html") {
		t.Errorf("adapter error should name the engine, got %q", msg)
	}
	if !strings.Contains(msg, "boom") {
		t.Errorf("adapter error should include the cause, got %q", msg)
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("backend down")
	err := Wrap(CodeCacheBackend, CategoryCache, cause, "cache read failed")

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	var re *RenderError
	if !stderrors.As(err, &re) {
		t.Fatal("errors.As should find RenderError")
	}
	if re.Category != CategoryCache {
		t.Errorf("got category %q, want %q", re.Category, CategoryCache)
	}
}

func TestIsCode(t *testing.T) {
	err := FallbackRender("html", stderrors.New("still broken"))

	if !IsCode(err, CodeFallbackRender) {
		t.Error("IsCode should match the top-level code")
	}
	if IsCode(err, CodeAdapterRender) {
		t.Error("IsCode should not match a different code")
	}

	wrapped := fmt.Errorf("while serving: %w", err)
	if !IsCode(wrapped, CodeFallbackRender) {
		t.Error("IsCode should unwrap standard wrappers")
	}
	if IsCode(nil, CodeFallbackRender) {
		t.Error("IsCode on nil should be false")
	}
}
