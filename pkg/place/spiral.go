package place

import (
	"math"

	"github.com/sceneplan/sceneplan/pkg/geometry"
	"github.com/sceneplan/sceneplan/pkg/track"
)

// DefaultRingStep is the radial distance between successive search rings.
const DefaultRingStep = 0.25

// CenterSpiral searches outward from the canvas center in concentric
// rings. The exact center is tried first; each ring samples angularly
// evenly-spaced points, with the sample count growing proportionally to
// the circumference so coverage density stays roughly constant. The
// search is deterministic and bounded by min(width, height)/2.
type CenterSpiral struct {
	// RingStep is the radius increment between rings.
	RingStep float64
}

// NewCenterSpiral creates a spiral search with the default ring step.
func NewCenterSpiral() *CenterSpiral {
	return &CenterSpiral{RingStep: DefaultRingStep}
}

// Name returns NameCenterSpiral.
func (s *CenterSpiral) Name() Name { return NameCenterSpiral }

// Find returns the first conflict-free, in-bounds candidate, walking
// rings of increasing radius. Returns false once the radius bound is
// exhausted.
func (s *CenterSpiral) Find(t *track.Tracker, canvas geometry.Canvas, width, height float64, query track.Query, margin float64) (Point, bool) {
	if fits(t, canvas, 0, 0, width, height, query, margin) {
		return Point{}, true
	}

	step := s.RingStep
	if step <= 0 {
		step = DefaultRingStep
	}
	maxRadius := math.Min(canvas.Width, canvas.Height) / 2

	for radius := step; radius <= maxRadius; radius += step {
		samples := ringSamples(radius, step)
		for i := 0; i < samples; i++ {
			angle := 2 * math.Pi * float64(i) / float64(samples)
			x := radius * math.Cos(angle)
			y := radius * math.Sin(angle)
			if fits(t, canvas, x, y, width, height, query, margin) {
				return Point{X: x, Y: y}, true
			}
		}
	}
	return Point{}, false
}

// ringSamples returns the number of evenly-spaced candidates on a ring,
// at least 8, growing with the circumference so the arc length between
// neighbors stays near the ring step.
func ringSamples(radius, step float64) int {
	n := int(math.Ceil(2 * math.Pi * radius / step))
	if n < 8 {
		return 8
	}
	return n
}
