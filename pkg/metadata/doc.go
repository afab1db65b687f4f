// Package metadata extracts, resolves, and merges page metadata and turns
// the merged result into document head tags.
//
// Metadata flows from the outermost layout inward and ends with the page,
// later sources overwriting earlier ones. Resolution errors propagate to
// the caller; unlike server data loading there is deliberately no
// fail-soft path here.
package metadata
