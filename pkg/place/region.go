package place

import (
	"github.com/sceneplan/sceneplan/pkg/geometry"
	"github.com/sceneplan/sceneplan/pkg/track"
)

// regionPrefs ranks preferred regions per object kind. Kinds without an
// entry fall straight through to the generic region sweep.
var regionPrefs = map[track.Kind][]geometry.Region{
	track.KindTitle:    {geometry.RegionTopCenter, geometry.RegionTopLeft, geometry.RegionTopRight},
	track.KindLabel:    {geometry.RegionBottomCenter, geometry.RegionBottomLeft, geometry.RegionBottomRight},
	track.KindEquation: {geometry.RegionCenter, geometry.RegionMiddleLeft, geometry.RegionMiddleRight},
	track.KindDiagram:  {geometry.RegionCenter, geometry.RegionMiddleRight},
	track.KindImage:    {geometry.RegionCenter, geometry.RegionMiddleRight, geometry.RegionMiddleLeft},
	track.KindText:     {geometry.RegionMiddleLeft, geometry.RegionCenter, geometry.RegionMiddleRight},
	track.KindShape:    {geometry.RegionCenter, geometry.RegionMiddleLeft, geometry.RegionMiddleRight},
}

// regionSubdivision is the per-region sub-search lattice.
const regionSubdivision = 2

// RegionPreferential places objects according to a static ranked list of
// regions for their kind: each preferred region is probed with a bounded
// grid sub-search, then every remaining region in canvas order, and
// finally a center spiral over the whole canvas.
type RegionPreferential struct {
	// Kind selects the preference ranking. Empty means no preference,
	// which degrades to the generic sweep plus spiral fallback.
	Kind track.Kind

	spiral *CenterSpiral
}

// NewRegionPreferential creates the strategy without a kind preference.
func NewRegionPreferential() *RegionPreferential {
	return &RegionPreferential{spiral: NewCenterSpiral()}
}

// NewRegionPreferentialFor creates the strategy ranked for a kind.
func NewRegionPreferentialFor(kind track.Kind) *RegionPreferential {
	return &RegionPreferential{Kind: kind, spiral: NewCenterSpiral()}
}

// Name returns NameRegionPreferential.
func (s *RegionPreferential) Name() Name { return NameRegionPreferential }

// Find probes preferred regions, then the rest, then falls back to a
// whole-canvas spiral. Returns false only when every region and the
// spiral are exhausted.
func (s *RegionPreferential) Find(t *track.Tracker, canvas geometry.Canvas, width, height float64, query track.Query, margin float64) (Point, bool) {
	tried := make(map[geometry.Region]bool)

	for _, region := range regionPrefs[s.Kind] {
		tried[region] = true
		if p, ok := s.searchRegion(t, canvas, region, width, height, query, margin); ok {
			return p, true
		}
	}

	for _, region := range geometry.Regions() {
		if tried[region] {
			continue
		}
		if p, ok := s.searchRegion(t, canvas, region, width, height, query, margin); ok {
			return p, true
		}
	}

	spiral := s.spiral
	if spiral == nil {
		spiral = NewCenterSpiral()
	}
	return spiral.Find(t, canvas, width, height, query, margin)
}

// searchRegion runs a bounded grid sub-search confined to one region's
// bounds. The region center is tried first, then the sub-lattice cell
// centers.
func (s *RegionPreferential) searchRegion(t *track.Tracker, canvas geometry.Canvas, region geometry.Region, width, height float64, query track.Query, margin float64) (Point, bool) {
	bounds := canvas.RegionBounds(region)

	if fits(t, canvas, bounds.CenterX(), bounds.CenterY(), width, height, query, margin) {
		return Point{X: bounds.CenterX(), Y: bounds.CenterY()}, true
	}

	cellW := bounds.Width() / regionSubdivision
	cellH := bounds.Height() / regionSubdivision
	for row := 0; row < regionSubdivision; row++ {
		for col := 0; col < regionSubdivision; col++ {
			x := bounds.XMin + (float64(col)+0.5)*cellW
			y := bounds.YMax - (float64(row)+0.5)*cellH
			if fits(t, canvas, x, y, width, height, query, margin) {
				return Point{X: x, Y: y}, true
			}
		}
	}
	return Point{}, false
}
