package geometry

import (
	"github.com/sceneplan/sceneplan/pkg/errors"
)

// =============================================================================
// Region - 3×3 Named Canvas Zones
// =============================================================================

// Region is one of 9 fixed named zones from a 3×3 partition of the canvas.
type Region int

// Regions in row-major order, top row first.
const (
	RegionTopLeft Region = iota
	RegionTopCenter
	RegionTopRight
	RegionMiddleLeft
	RegionCenter
	RegionMiddleRight
	RegionBottomLeft
	RegionBottomCenter
	RegionBottomRight

	regionCount = 9
)

var regionNames = [regionCount]string{
	"top_left", "top_center", "top_right",
	"middle_left", "center", "middle_right",
	"bottom_left", "bottom_center", "bottom_right",
}

// String returns the region's wire name (e.g. "top_center").
func (r Region) String() string {
	if r < 0 || r >= regionCount {
		return "unknown"
	}
	return regionNames[r]
}

// Regions returns all 9 regions in row-major order, top row first.
func Regions() []Region {
	out := make([]Region, regionCount)
	for i := range out {
		out[i] = Region(i)
	}
	return out
}

// ParseRegion converts a wire name back to a Region.
func ParseRegion(name string) (Region, error) {
	for i, n := range regionNames {
		if n == name {
			return Region(i), nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidRequest, "unknown region %q", name)
}

// row and col return the region's position in the 3×3 grid.
func (r Region) row() int { return int(r) / 3 }
func (r Region) col() int { return int(r) % 3 }

// =============================================================================
// Canvas - Fixed Coordinate Space
// =============================================================================

// Canvas is the fixed-size 2D coordinate space objects are placed within.
// The origin is at the center; y grows upward.
type Canvas struct {
	Width  float64
	Height float64
}

// NewCanvas creates a canvas with the given dimensions (both > 0).
func NewCanvas(width, height float64) (Canvas, error) {
	if width <= 0 || height <= 0 {
		return Canvas{}, errors.New(errors.ErrCodeInvalidGeometry, "canvas size %vx%v must be positive", width, height)
	}
	return Canvas{Width: width, Height: height}, nil
}

// Bounds returns the full canvas extent as a box.
func (c Canvas) Bounds() Box {
	return Box{
		XMin: -c.Width / 2, XMax: c.Width / 2,
		YMin: -c.Height / 2, YMax: c.Height / 2,
	}
}

// Contains reports whether the box lies entirely within the canvas.
func (c Canvas) Contains(b Box) bool {
	return c.Bounds().ContainsBox(b)
}

// RegionBounds returns the extent of a region, dividing the canvas
// into thirds. Adjacent regions share their boundary lines.
func (c Canvas) RegionBounds(r Region) Box {
	thirdW := c.Width / 3
	thirdH := c.Height / 3

	col := float64(r.col())
	row := float64(r.row())

	return Box{
		XMin: -c.Width/2 + col*thirdW,
		XMax: -c.Width/2 + (col+1)*thirdW,
		YMax: c.Height/2 - row*thirdH,
		YMin: c.Height/2 - (row+1)*thirdH,
	}
}

// Classify maps an in-bounds point to exactly one region. Points on a
// shared boundary fall into the more central region, so classification
// stays consistent with RegionBounds (inclusive containment). Points
// outside the canvas are clamped to the nearest region.
func (c Canvas) Classify(x, y float64) Region {
	col := 1
	switch {
	case x < -c.Width/6:
		col = 0
	case x > c.Width/6:
		col = 2
	}

	row := 1
	switch {
	case y > c.Height/6:
		row = 0
	case y < -c.Height/6:
		row = 2
	}

	return Region(row*3 + col)
}

// RegionOf returns the region containing the box center.
func (c Canvas) RegionOf(b Box) Region {
	return c.Classify(b.CenterX(), b.CenterY())
}
