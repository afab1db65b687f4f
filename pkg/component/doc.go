// Package component defines the component capability model shared by the
// render pipeline.
//
// A component is one of three things: a plain element tag name (string), a
// callable (any function value, typically a RenderFunc), or a capability
// object. Capability objects expose optional behaviors — metadata, a server
// data loader, script declarations, layout opt-out, a declared route —
// either as interfaces on the value itself or through a Spec struct.
//
// Bundled modules whose capabilities live on a default export are supported
// through the DefaultExport interface. The probe goes exactly one level
// down, never deeper; Describe performs it once and hands the rest of the
// pipeline a normalized Descriptor.
package component
