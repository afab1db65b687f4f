// Package recovery provides one-shot fallback handling around adapter
// renders.
//
// When a page component fails to render, the Coordinator can retry the
// exact same render with a configured fallback component swapped in.
// Only one recovery attempt is ever made; if the fallback also fails,
// the error is returned and StaticErrorDocument offers a last-resort
// response body.
package recovery
