// Package place implements the placement search strategies of the layout
// engine.
//
// A Strategy proposes a center point for a box of a requested size so
// that the box lies fully inside the canvas and is conflict-free against
// the tracker for the requested time query and margin. Strategies never
// mutate the tracker and are fully deterministic: identical inputs
// produce identical candidates.
//
// The set of strategies is closed and selected via the Name enum:
// center_spiral, grid, flow, vertical_stack, horizontal_stack, and
// region_preferential.
package place
