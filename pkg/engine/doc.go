// Package engine orchestrates server-side page renders.
//
// A render walks the layout chain and the page component collecting
// metadata, server data, scripts, and routes, merges them with caller
// overrides, delegates markup generation to an adapter behind fallback
// recovery, and injects the markup plus generated head and body
// fragments into the document template. Resolved metadata can be cached
// between calls and the client data payload can be compressed or
// lazily parsed.
package engine
