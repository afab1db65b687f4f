// Package htmladapter is the built-in rendering backend.
//
// It implements the adapter contract over a minimal element model: tag
// components serialize to HTML elements with deterministically ordered,
// escaped attributes; function components receive their pre-rendered
// children as a markup string under the "children" prop and return
// markup of their own.
package htmladapter
