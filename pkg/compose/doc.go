// Package compose builds nested page/layout descriptions and turns them
// into framework elements.
//
// Layouts are ordered outer to inner. ComposeLayouts folds them around a
// page component so the outermost layout is the root of the resulting Node
// tree and the page is its deepest leaf, each layout receiving the inner
// node through its "children" prop. BuildTree then walks that tree with an
// adapter-supplied Factory, validating every component reference before
// the factory sees it.
package compose
