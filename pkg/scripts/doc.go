// Package scripts collects script declarations from components, dedups and
// orders them, and serializes them into tags or a client-side async loader.
//
// Identity for deduplication is the source URL, then the inline content,
// then a deterministic serialization of the definition. First occurrence
// wins; the merged list is stable-sorted ascending by priority with 100 as
// the default.
package scripts
