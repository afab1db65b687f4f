package errors

import "fmt"

// Category groups errors by the pipeline stage that produced them.
type Category string

const (
	CategoryCompose   Category = "compose"
	CategoryMetadata  Category = "metadata"
	CategoryLoad      Category = "load"
	CategoryAdapter   Category = "adapter"
	CategoryCache     Category = "cache"
	CategoryCompress  Category = "compress"
	CategorySerialize Category = "serialize"
	CategoryConfig    Category = "config"
)

// Well-known error codes. Codes are stable identifiers; messages are not.
const (
	CodeInvalidComponent = "R001"
	CodeLoadFailed       = "R002"
	CodeAdapterRender    = "R003"
	CodeFallbackRender   = "R004"
	CodeSerialization    = "R005"
	CodeCacheBackend     = "R006"
	CodeConfigInvalid    = "R007"
)

// RenderError is a structured error carrying a stable code, the pipeline
// stage it came from, and optional diagnostic detail.
type RenderError struct {
	// Code is a unique error identifier (e.g., "R001").
	Code string

	// Category is the pipeline stage (compose, adapter, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation, when one helps.
	Detail string

	// Engine is the adapter engine name, for adapter and fallback errors.
	Engine string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	msg := e.Message
	if e.Engine != "" {
		msg = fmt.Sprintf("%s (engine %s)", msg, e.Engine)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, msg)
	}
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Wrapped)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *RenderError) Unwrap() error {
	return e.Wrapped
}

// WithDetail adds a detailed explanation to the error.
func (e *RenderError) WithDetail(format string, args ...any) *RenderError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithEngine records which adapter engine the error came from.
func (e *RenderError) WithEngine(engine string) *RenderError {
	e.Engine = engine
	return e
}

// New creates a RenderError with the given code, category, and message.
func New(code string, category Category, format string, args ...any) *RenderError {
	return &RenderError{
		Code:     code,
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Wrap creates a RenderError wrapping an underlying error.
func Wrap(code string, category Category, err error, format string, args ...any) *RenderError {
	return &RenderError{
		Code:     code,
		Category: category,
		Message:  fmt.Sprintf(format, args...),
		Wrapped:  err,
	}
}

// InvalidComponent reports a malformed component reference handed to the
// tree builder. It is raised synchronously, before any factory call.
func InvalidComponent(format string, args ...any) *RenderError {
	return New(CodeInvalidComponent, CategoryCompose, format, args...)
}

// AdapterRender wraps a failure from the external markup adapter.
func AdapterRender(engine string, err error) *RenderError {
	return Wrap(CodeAdapterRender, CategoryAdapter, err, "adapter render failed").WithEngine(engine)
}

// FallbackRender wraps a failure from the configured fallback component.
// It is terminal: no further recovery is attempted.
func FallbackRender(engine string, err error) *RenderError {
	return Wrap(CodeFallbackRender, CategoryAdapter, err, "fallback render failed").WithEngine(engine)
}

// Serialization reports a value that could not be serialized for the
// client payload.
func Serialization(err error, format string, args ...any) *RenderError {
	return Wrap(CodeSerialization, CategorySerialize, err, format, args...)
}

// IsCode reports whether err is a RenderError with the given code.
func IsCode(err error, code string) bool {
	for err != nil {
		if re, ok := err.(*RenderError); ok && re.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
