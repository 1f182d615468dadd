package plan

import (
	"github.com/sceneplan/sceneplan/pkg/place"
	"github.com/sceneplan/sceneplan/pkg/track"
)

// Position is an explicit box center supplied by the caller.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Request describes one object to place. Width and height arrive from an
// external size-estimation collaborator and are taken as given.
type Request struct {
	ID     string       `json:"id" bson:"id"`
	Kind   track.Kind   `json:"kind" bson:"kind"`
	Width  float64      `json:"width" bson:"width"`
	Height float64      `json:"height" bson:"height"`
	Window track.Window `json:"time_window" bson:"time_window"`

	// Position pins the object to an exact center; it is validated
	// against the tracker instead of searched.
	Position *Position `json:"explicit_position,omitempty" bson:"explicit_position,omitempty"`

	// Strategy overrides the planner's default search strategy.
	Strategy place.Name `json:"preferred_strategy,omitempty" bson:"preferred_strategy,omitempty"`

	Meta map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// Area returns the requested footprint area.
func (r Request) Area() float64 { return r.Width * r.Height }

// kindRank orders kinds for batch processing: space-constrained,
// anchor-like kinds place first while the canvas is emptiest.
var kindRank = map[track.Kind]int{
	track.KindTitle:    0,
	track.KindDiagram:  1,
	track.KindImage:    1,
	track.KindEquation: 2,
	track.KindText:     3,
	track.KindShape:    4,
	track.KindLabel:    5,
}

// rank returns the processing priority for a kind; unknown kinds sort
// last.
func rank(k track.Kind) int {
	if r, ok := kindRank[k]; ok {
		return r
	}
	return len(kindRank) + 1
}
