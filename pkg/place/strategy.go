package place

import (
	"github.com/sceneplan/sceneplan/pkg/errors"
	"github.com/sceneplan/sceneplan/pkg/geometry"
	"github.com/sceneplan/sceneplan/pkg/track"
)

// =============================================================================
// Strategy Names - Closed Enum
// =============================================================================

// Name identifies a placement strategy. The set is closed; ForName
// rejects anything else.
type Name string

// The available placement strategies.
const (
	NameCenterSpiral       Name = "center_spiral"
	NameGrid               Name = "grid"
	NameFlow               Name = "flow"
	NameVerticalStack      Name = "vertical_stack"
	NameHorizontalStack    Name = "horizontal_stack"
	NameRegionPreferential Name = "region_preferential"
)

// Names lists every strategy name.
func Names() []Name {
	return []Name{
		NameCenterSpiral,
		NameGrid,
		NameFlow,
		NameVerticalStack,
		NameHorizontalStack,
		NameRegionPreferential,
	}
}

// ForName constructs the strategy for a name with its default
// parameters. Fails with INVALID_STRATEGY for unknown names.
func ForName(n Name) (Strategy, error) {
	switch n {
	case NameCenterSpiral:
		return NewCenterSpiral(), nil
	case NameGrid:
		return NewGrid(DefaultGridRows, DefaultGridCols), nil
	case NameFlow:
		return NewFlow(), nil
	case NameVerticalStack:
		return NewVerticalStack(), nil
	case NameHorizontalStack:
		return NewHorizontalStack(), nil
	case NameRegionPreferential:
		return NewRegionPreferential(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidStrategy, "unknown strategy %q", string(n))
	}
}

// =============================================================================
// Strategy Interface
// =============================================================================

// Point is a candidate box center.
type Point struct {
	X float64
	Y float64
}

// Strategy searches for a conflict-free center point for a box of the
// given size, active during the given time query, with the given
// clearance margin. Implementations are read-only over the tracker.
// The second return value is false when the search space is exhausted.
type Strategy interface {
	Name() Name
	Find(t *track.Tracker, canvas geometry.Canvas, width, height float64, query track.Query, margin float64) (Point, bool)
}

// fits reports whether a box of size w×h centered at (x, y) lies fully
// inside the canvas and has no conflicts for the query and margin.
// Shared by every strategy so the placement contract is checked in one
// place.
func fits(t *track.Tracker, canvas geometry.Canvas, x, y, w, h float64, query track.Query, margin float64) bool {
	box, err := geometry.FromCenter(x, y, w, h)
	if err != nil {
		return false
	}
	if !canvas.Contains(box) {
		return false
	}
	return len(t.Conflicts(box, query, margin)) == 0
}
