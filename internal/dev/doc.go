// Package dev supports development mode: a polling file watcher and a
// websocket reload server that pushes reload and error messages to
// connected browsers. Neither is part of the render pipeline.
package dev
