// Package render turns a tracked layout into visual artifacts.
//
// Three sinks are provided:
//   - SVG: a storyboard snapshot of the canvas, optionally filtered to
//     a single instant and overlaid with the region grid
//   - PNG: the same snapshot rasterized for previews
//   - DOT/SVG conflict graphs: failed placements linked to the objects
//     that blocked them, rendered through Graphviz
package render
