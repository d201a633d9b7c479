// Package render draws the package graph as a node-link diagram.
//
// # Overview
//
// [ToDOT] turns a set of graph nodes into Graphviz DOT source. Boxes are
// packages; arrows point from a package to the local packages it depends
// on. Edge style encodes the dependency kind:
//
//   - dependencies: solid
//   - devDependencies: dashed grey
//   - peerDependencies: dotted
//   - optionalDependencies: dashed
//
// Private packages are filled grey. When [Options].Batches is set each
// batch of a schedule shares a rank, which makes the execution order
// visible at a glance.
//
// # Rendering
//
// [Render] lays the DOT source out in-process with go-graphviz (a
// WebAssembly build of Graphviz, no system install needed) and encodes it
// as SVG or PNG:
//
//	dot := render.ToDOT(g.Nodes(), render.Options{Detailed: true})
//	svg, err := render.Render(ctx, dot, render.FormatSVG)
//
// [Render] with [FormatDOT] returns the source unchanged, so callers can
// treat every output format the same way.
package render
