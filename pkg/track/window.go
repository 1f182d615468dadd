package track

import (
	"fmt"

	"github.com/sceneplan/sceneplan/pkg/errors"
)

// =============================================================================
// Window - Half-Open Time Interval
// =============================================================================

// Window is the half-open interval [Start, End) during which an object
// occupies its bounding box.
type Window struct {
	Start float64 `json:"start" bson:"start"`
	End   float64 `json:"end" bson:"end"`
}

// NewWindow creates a window, failing with INVALID_TIME_WINDOW unless
// start < end.
func NewWindow(start, end float64) (Window, error) {
	if start >= end {
		return Window{}, errors.New(errors.ErrCodeInvalidTimeWindow, "start %v is not before end %v", start, end)
	}
	return Window{Start: start, End: end}, nil
}

// Valid reports whether the window satisfies start < end.
func (w Window) Valid() bool { return w.Start < w.End }

// Duration returns End - Start.
func (w Window) Duration() float64 { return w.End - w.Start }

// Contains reports whether instant t falls inside the window.
// The interval is half-open: Contains(Start) is true, Contains(End) is false.
func (w Window) Contains(t float64) bool {
	return t >= w.Start && t < w.End
}

// Overlaps reports whether two half-open windows intersect.
func (w Window) Overlaps(o Window) bool {
	return w.Start < o.End && o.Start < w.End
}

// String returns the interval in [start, end) notation.
func (w Window) String() string {
	return fmt.Sprintf("[%g, %g)", w.Start, w.End)
}

// =============================================================================
// Query - Instant or Interval Time Filter
// =============================================================================

type queryKind int

const (
	queryAny queryKind = iota
	queryInstant
	querySpan
)

// Query selects tracked objects by time. The zero Query matches every
// window; build instants with At and intervals with During.
type Query struct {
	kind  queryKind
	start float64
	end   float64
}

// At returns a query matching windows that contain instant t.
func At(t float64) Query {
	return Query{kind: queryInstant, start: t}
}

// During returns a query matching windows that intersect the half-open
// interval [start, end).
func During(start, end float64) Query {
	return Query{kind: querySpan, start: start, end: end}
}

// AnyTime returns a query matching every window.
func AnyTime() Query { return Query{} }

// Matches reports whether the query selects the given window.
func (q Query) Matches(w Window) bool {
	switch q.kind {
	case queryInstant:
		return w.Contains(q.start)
	case querySpan:
		return q.start < w.End && w.Start < q.end
	default:
		return true
	}
}

// String describes the query for logs.
func (q Query) String() string {
	switch q.kind {
	case queryInstant:
		return fmt.Sprintf("t=%g", q.start)
	case querySpan:
		return fmt.Sprintf("[%g, %g)", q.start, q.end)
	default:
		return "any"
	}
}
