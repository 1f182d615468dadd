package place

import (
	"github.com/sceneplan/sceneplan/pkg/geometry"
	"github.com/sceneplan/sceneplan/pkg/track"
)

// Flow packs candidates left-to-right, top-to-bottom like text layout:
// a cursor starts at the top-left corner, advances by width+margin, and
// wraps down a row of height+margin when it would pass the right edge.
type Flow struct{}

// NewFlow creates a flow packing strategy.
func NewFlow() *Flow { return &Flow{} }

// Name returns NameFlow.
func (f *Flow) Name() Name { return NameFlow }

// Find walks the flow cursor until a conflict-free slot appears.
// Returns false once the next row would exceed the bottom edge.
func (f *Flow) Find(t *track.Tracker, canvas geometry.Canvas, width, height float64, query track.Query, margin float64) (Point, bool) {
	left := -canvas.Width/2 + margin
	right := canvas.Width/2 - margin
	top := canvas.Height/2 - margin
	bottom := -canvas.Height/2 + margin

	for y := top; y-height >= bottom; y -= height + margin {
		for x := left; x+width <= right; x += width + margin {
			cx := x + width/2
			cy := y - height/2
			if fits(t, canvas, cx, cy, width, height, query, margin) {
				return Point{X: cx, Y: cy}, true
			}
		}
	}
	return Point{}, false
}
