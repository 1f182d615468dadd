package track

import (
	"slices"
	"sort"

	"github.com/sceneplan/sceneplan/pkg/errors"
	"github.com/sceneplan/sceneplan/pkg/geometry"
)

// Tracker is an in-memory spatio-temporal index over tracked objects.
// It exclusively owns the objects it holds; callers must treat returned
// pointers as read-only.
type Tracker struct {
	canvas  geometry.Canvas
	objects map[string]*Object
	nextSeq int
}

// NewTracker creates an empty tracker over the given canvas.
func NewTracker(canvas geometry.Canvas) *Tracker {
	return &Tracker{
		canvas:  canvas,
		objects: make(map[string]*Object),
	}
}

// Canvas returns the coordinate space the tracker indexes.
func (t *Tracker) Canvas() geometry.Canvas { return t.canvas }

// Len returns the number of tracked objects.
func (t *Tracker) Len() int { return len(t.objects) }

// Get returns the object with the given id, if tracked.
func (t *Tracker) Get(id string) (*Object, bool) {
	o, ok := t.objects[id]
	return o, ok
}

// Register admits a new object into the index. It is atomic: every
// invariant is checked before any mutation, so a failed call leaves the
// tracker unchanged.
//
// Failure modes, in check order: DUPLICATE_ID, INVALID_TIME_WINDOW,
// INVALID_GEOMETRY, OUT_OF_BOUNDS, and CONFLICT naming every tracked
// object whose window intersects and whose margin-expanded box overlaps.
func (t *Tracker) Register(id string, kind Kind, box geometry.Box, window Window, margin float64) error {
	if _, exists := t.objects[id]; exists {
		return errors.New(errors.ErrCodeDuplicateID, "id %q already tracked", id)
	}
	if !window.Valid() {
		return errors.New(errors.ErrCodeInvalidTimeWindow, "window %s: start must precede end", window)
	}
	if box.Width() <= 0 || box.Height() <= 0 {
		return errors.New(errors.ErrCodeInvalidGeometry, "box %s is degenerate", box)
	}
	if !t.canvas.Contains(box) {
		return errors.New(errors.ErrCodeOutOfBounds, "box %s exceeds canvas %gx%g", box, t.canvas.Width, t.canvas.Height)
	}
	if ids := t.Conflicts(box, During(window.Start, window.End), margin); len(ids) > 0 {
		return errors.Conflict(ids)
	}

	t.objects[id] = &Object{
		ID:     id,
		Kind:   kind,
		Box:    box,
		Window: window,
		seq:    t.nextSeq,
	}
	t.nextSeq++
	return nil
}

// RegisterObject is a convenience wrapper that also attaches metadata.
func (t *Tracker) RegisterObject(id string, kind Kind, box geometry.Box, window Window, margin float64, meta map[string]any) error {
	if err := t.Register(id, kind, box, window, margin); err != nil {
		return err
	}
	t.objects[id].Meta = meta
	return nil
}

// Unregister removes an object. Returns false if the id is not tracked.
func (t *Tracker) Unregister(id string) bool {
	if _, ok := t.objects[id]; !ok {
		return false
	}
	delete(t.objects, id)
	return true
}

// Clear removes every tracked object.
func (t *Tracker) Clear() {
	t.objects = make(map[string]*Object)
	t.nextSeq = 0
}

// Conflicts returns the ids of every tracked object whose window matches
// the time query and whose margin-expanded box overlaps the candidate.
// Results are in registration order. Excluded ids are skipped.
func (t *Tracker) Conflicts(box geometry.Box, query Query, margin float64, exclude ...string) []string {
	var hits []*Object
	for _, o := range t.objects {
		if len(exclude) > 0 && slices.Contains(exclude, o.ID) {
			continue
		}
		if !query.Matches(o.Window) {
			continue
		}
		if box.Overlaps(o.Box, margin) {
			hits = append(hits, o)
		}
	}
	sortBySeq(hits)

	ids := make([]string, len(hits))
	for i, o := range hits {
		ids[i] = o.ID
	}
	return ids
}

// ActiveAt returns the objects occupying the canvas at instant tm,
// in registration order.
func (t *Tracker) ActiveAt(tm float64) []*Object {
	return t.collect(At(tm), nil)
}

// InRegion returns the objects whose boxes overlap the given region,
// filtered by the time query (pass AnyTime for no filter), in
// registration order.
func (t *Tracker) InRegion(region geometry.Region, query Query) []*Object {
	bounds := t.canvas.RegionBounds(region)
	return t.collect(query, func(o *Object) bool {
		return o.Box.Overlaps(bounds, 0)
	})
}

// collect gathers objects matching the query and optional predicate.
func (t *Tracker) collect(query Query, keep func(*Object) bool) []*Object {
	var out []*Object
	for _, o := range t.objects {
		if !query.Matches(o.Window) {
			continue
		}
		if keep != nil && !keep(o) {
			continue
		}
		out = append(out, o)
	}
	sortBySeq(out)
	return out
}

// OccupancyGrid discretizes the canvas into rows×cols cells and counts,
// for each object active at instant tm, every cell its box overlaps.
// Row 0 is the top of the canvas.
func (t *Tracker) OccupancyGrid(tm float64, rows, cols int) [][]int {
	if rows <= 0 || cols <= 0 {
		return nil
	}

	grid := make([][]int, rows)
	for r := range grid {
		grid[r] = make([]int, cols)
	}

	cellW := t.canvas.Width / float64(cols)
	cellH := t.canvas.Height / float64(rows)

	for _, o := range t.ActiveAt(tm) {
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				cell := geometry.Box{
					XMin: -t.canvas.Width/2 + float64(c)*cellW,
					XMax: -t.canvas.Width/2 + float64(c+1)*cellW,
					YMax: t.canvas.Height/2 - float64(r)*cellH,
					YMin: t.canvas.Height/2 - float64(r+1)*cellH,
				}
				if o.Box.Overlaps(cell, 0) {
					grid[r][c]++
				}
			}
		}
	}
	return grid
}

// Timeline returns every tracked object sorted by window start,
// ties broken by registration order.
func (t *Tracker) Timeline() []*Object {
	out := make([]*Object, 0, len(t.objects))
	for _, o := range t.objects {
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Window.Start != out[j].Window.Start {
			return out[i].Window.Start < out[j].Window.Start
		}
		return out[i].seq < out[j].seq
	})
	return out
}

func sortBySeq(objs []*Object) {
	sort.Slice(objs, func(i, j int) bool { return objs[i].seq < objs[j].seq })
}
