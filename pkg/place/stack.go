package place

import (
	"github.com/sceneplan/sceneplan/pkg/geometry"
	"github.com/sceneplan/sceneplan/pkg/track"
)

// VerticalStack walks downward from the top edge along the canvas
// midline in fixed steps of height+margin, taking the first
// conflict-free slot.
type VerticalStack struct{}

// NewVerticalStack creates a top-down stacking strategy.
func NewVerticalStack() *VerticalStack { return &VerticalStack{} }

// Name returns NameVerticalStack.
func (s *VerticalStack) Name() Name { return NameVerticalStack }

// Find returns the first free slot walking down; false at the bottom
// edge.
func (s *VerticalStack) Find(t *track.Tracker, canvas geometry.Canvas, width, height float64, query track.Query, margin float64) (Point, bool) {
	top := canvas.Height/2 - margin
	bottom := -canvas.Height/2 + margin

	for y := top - height/2; y-height/2 >= bottom; y -= height + margin {
		if fits(t, canvas, 0, y, width, height, query, margin) {
			return Point{X: 0, Y: y}, true
		}
	}
	return Point{}, false
}

// HorizontalStack walks rightward from the left edge along the canvas
// midline in fixed steps of width+margin, taking the first
// conflict-free slot.
type HorizontalStack struct{}

// NewHorizontalStack creates a left-to-right stacking strategy.
func NewHorizontalStack() *HorizontalStack { return &HorizontalStack{} }

// Name returns NameHorizontalStack.
func (s *HorizontalStack) Name() Name { return NameHorizontalStack }

// Find returns the first free slot walking right; false at the right
// edge.
func (s *HorizontalStack) Find(t *track.Tracker, canvas geometry.Canvas, width, height float64, query track.Query, margin float64) (Point, bool) {
	left := -canvas.Width/2 + margin
	right := canvas.Width/2 - margin

	for x := left + width/2; x+width/2 <= right; x += width + margin {
		if fits(t, canvas, x, 0, width, height, query, margin) {
			return Point{X: x, Y: 0}, true
		}
	}
	return Point{}, false
}
