package place

import (
	"github.com/sceneplan/sceneplan/pkg/geometry"
	"github.com/sceneplan/sceneplan/pkg/track"
)

// Default grid partition.
const (
	DefaultGridRows = 2
	DefaultGridCols = 3
)

// Grid partitions the canvas into a fixed rows×cols lattice and offers
// cell centers as candidates, iterating row-major with the top row
// first and cells left to right.
type Grid struct {
	Rows int
	Cols int
}

// NewGrid creates a grid strategy; non-positive dimensions fall back to
// the defaults.
func NewGrid(rows, cols int) *Grid {
	if rows <= 0 {
		rows = DefaultGridRows
	}
	if cols <= 0 {
		cols = DefaultGridCols
	}
	return &Grid{Rows: rows, Cols: cols}
}

// Name returns NameGrid.
func (g *Grid) Name() Name { return NameGrid }

// Find returns the first cell center whose cell accommodates the
// requested size and whose box is conflict-free. Returns false when
// every cell fails.
func (g *Grid) Find(t *track.Tracker, canvas geometry.Canvas, width, height float64, query track.Query, margin float64) (Point, bool) {
	cellW := canvas.Width / float64(g.Cols)
	cellH := canvas.Height / float64(g.Rows)

	// A candidate must fit inside its cell, otherwise neighbors could
	// never coexist.
	if width > cellW || height > cellH {
		return Point{}, false
	}

	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			x := -canvas.Width/2 + (float64(col)+0.5)*cellW
			y := canvas.Height/2 - (float64(row)+0.5)*cellH
			if fits(t, canvas, x, y, width, height, query, margin) {
				return Point{X: x, Y: y}, true
			}
		}
	}
	return Point{}, false
}
