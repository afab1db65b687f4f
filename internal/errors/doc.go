// Package errors provides structured errors for the render pipeline.
//
// Every failure surfaced by the engine carries a stable code (e.g., "R003")
// and the pipeline stage it came from, so callers can branch on the code
// without parsing messages.
//
// # Error Categories
//
// Errors are organized by pipeline stage:
//   - compose: layout composition and tree building
//   - metadata: metadata resolution (propagates, not defended)
//   - load: server data loading (logged and degraded, never fatal)
//   - adapter: external markup adapter failures (recoverable once)
//   - cache: cache backend failures
//   - compress: payload compression failures
//   - serialize: client payload serialization failures
//
// # Usage
//
//	err := errors.InvalidComponent("unsupported component type %T", raw)
//	if errors.IsCode(err, errors.CodeInvalidComponent) {
//	    // fail fast, the tree builder never called the factory
//	}
package errors
