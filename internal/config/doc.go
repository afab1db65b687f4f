// Package config loads and validates the renderkit.json project file.
//
// The file configures the HTTP server, the document template, metadata
// caching, payload compression, and development mode. Absent fields
// fall back to defaults, so an empty file is a valid configuration.
package config
