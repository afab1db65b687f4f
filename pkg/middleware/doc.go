// Package middleware decorates a render engine with observability.
//
// Wrappers compose around anything satisfying the Renderer interface:
//
//	r := middleware.OpenTelemetry(middleware.Prometheus(eng))
package middleware
