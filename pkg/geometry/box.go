package geometry

import (
	"fmt"

	"github.com/sceneplan/sceneplan/pkg/errors"
)

// Box is an axis-aligned rectangle used as an object's spatial footprint.
// Construct with NewBox or FromCenter; the zero value is degenerate.
type Box struct {
	XMin, XMax float64
	YMin, YMax float64
}

// NewBox creates a box from its edge coordinates.
// Fails with INVALID_GEOMETRY when either axis is inverted or degenerate.
func NewBox(xMin, xMax, yMin, yMax float64) (Box, error) {
	if xMin >= xMax {
		return Box{}, errors.New(errors.ErrCodeInvalidGeometry, "x_min %v must be less than x_max %v", xMin, xMax)
	}
	if yMin >= yMax {
		return Box{}, errors.New(errors.ErrCodeInvalidGeometry, "y_min %v must be less than y_max %v", yMin, yMax)
	}
	return Box{XMin: xMin, XMax: xMax, YMin: yMin, YMax: yMax}, nil
}

// FromCenter creates a box of the given size centered at (cx, cy).
// Fails with INVALID_GEOMETRY when width or height is not positive.
func FromCenter(cx, cy, width, height float64) (Box, error) {
	if width <= 0 || height <= 0 {
		return Box{}, errors.New(errors.ErrCodeInvalidGeometry, "size %vx%v must be positive", width, height)
	}
	return Box{
		XMin: cx - width/2,
		XMax: cx + width/2,
		YMin: cy - height/2,
		YMax: cy + height/2,
	}, nil
}

// Width returns the horizontal span of the box.
func (b Box) Width() float64 { return b.XMax - b.XMin }

// Height returns the vertical span of the box.
func (b Box) Height() float64 { return b.YMax - b.YMin }

// CenterX returns the horizontal center point of the box.
func (b Box) CenterX() float64 { return (b.XMin + b.XMax) / 2 }

// CenterY returns the vertical center point of the box.
func (b Box) CenterY() float64 { return (b.YMin + b.YMax) / 2 }

// Area returns the box area.
func (b Box) Area() float64 { return b.Width() * b.Height() }

// Expand returns a copy grown by margin on every side.
// A negative margin shrinks the box; the result may be degenerate.
func (b Box) Expand(margin float64) Box {
	return Box{
		XMin: b.XMin - margin,
		XMax: b.XMax + margin,
		YMin: b.YMin - margin,
		YMax: b.YMax + margin,
	}
}

// Overlaps reports whether b and other, with b expanded by margin,
// intersect on both axes. Boxes that merely touch at an edge do not
// overlap at margin 0. The test is symmetric: a.Overlaps(b, m) equals
// b.Overlaps(a, m) for any margin.
func (b Box) Overlaps(other Box, margin float64) bool {
	e := b.Expand(margin)
	return e.XMin < other.XMax && other.XMin < e.XMax &&
		e.YMin < other.YMax && other.YMin < e.YMax
}

// ContainsPoint reports whether (x, y) lies within the box.
// Bounds are inclusive.
func (b Box) ContainsPoint(x, y float64) bool {
	return x >= b.XMin && x <= b.XMax && y >= b.YMin && y <= b.YMax
}

// ContainsBox reports whether other lies entirely within b (inclusive).
func (b Box) ContainsBox(other Box) bool {
	return other.XMin >= b.XMin && other.XMax <= b.XMax &&
		other.YMin >= b.YMin && other.YMax <= b.YMax
}

// String returns a compact representation for logs and error messages.
func (b Box) String() string {
	return fmt.Sprintf("[%.2f,%.2f]x[%.2f,%.2f]", b.XMin, b.XMax, b.YMin, b.YMax)
}
