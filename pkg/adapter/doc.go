// Package adapter defines the contract between the render engine and
// pluggable rendering backends.
//
// The engine composes layouts, resolves metadata, and loads server data;
// an Adapter is only responsible for turning the composed component tree
// into markup. The built-in HTML adapter lives in package htmladapter.
package adapter
