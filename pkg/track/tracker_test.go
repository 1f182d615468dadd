package track

import (
	"reflect"
	"testing"

	"github.com/sceneplan/sceneplan/pkg/errors"
	"github.com/sceneplan/sceneplan/pkg/geometry"
)

func testCanvas(t *testing.T) geometry.Canvas {
	t.Helper()
	c, err := geometry.NewCanvas(10.8, 9.6)
	if err != nil {
		t.Fatalf("NewCanvas: %v", err)
	}
	return c
}

func mustBox(t *testing.T, cx, cy, w, h float64) geometry.Box {
	t.Helper()
	b, err := geometry.FromCenter(cx, cy, w, h)
	if err != nil {
		t.Fatalf("FromCenter: %v", err)
	}
	return b
}

func mustWindow(t *testing.T, start, end float64) Window {
	t.Helper()
	w, err := NewWindow(start, end)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	return w
}

func TestRegisterAndConflict(t *testing.T) {
	tr := NewTracker(testCanvas(t))

	if err := tr.Register("a", KindText, mustBox(t, 0, 0, 2, 2), mustWindow(t, 0, 10), 0); err != nil {
		t.Fatalf("register a: %v", err)
	}

	// Overlapping box, overlapping window: rejected with the collider named.
	err := tr.Register("b", KindText, mustBox(t, 0.5, 0.5, 2, 2), mustWindow(t, 5, 15), 0)
	if !errors.Is(err, errors.ErrCodeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
	if ids := errors.ConflictIDs(err); !reflect.DeepEqual(ids, []string{"a"}) {
		t.Errorf("conflict ids = %v, want [a]", ids)
	}
	if tr.Len() != 1 {
		t.Error("rejected register must not mutate the tracker")
	}

	// Same box, disjoint window: accepted.
	if err := tr.Register("c", KindText, mustBox(t, 0.5, 0.5, 2, 2), mustWindow(t, 10, 15), 0); err != nil {
		t.Fatalf("register c: %v", err)
	}
}

func TestRegisterValidationOrder(t *testing.T) {
	tr := NewTracker(testCanvas(t))
	box := mustBox(t, 0, 0, 2, 2)
	win := mustWindow(t, 0, 1)

	if err := tr.Register("a", KindShape, box, win, 0); err != nil {
		t.Fatalf("register a: %v", err)
	}

	// Duplicate id wins over any other failure.
	err := tr.Register("a", KindShape, box, Window{Start: 5, End: 5}, 0)
	if !errors.Is(err, errors.ErrCodeDuplicateID) {
		t.Errorf("expected DUPLICATE_ID, got %v", err)
	}

	err = tr.Register("b", KindShape, box, Window{Start: 5, End: 5}, 0)
	if !errors.Is(err, errors.ErrCodeInvalidTimeWindow) {
		t.Errorf("expected INVALID_TIME_WINDOW, got %v", err)
	}

	err = tr.Register("b", KindShape, geometry.Box{XMin: 0, XMax: 0, YMin: 0, YMax: 1}, win, 0)
	if !errors.Is(err, errors.ErrCodeInvalidGeometry) {
		t.Errorf("expected INVALID_GEOMETRY, got %v", err)
	}

	err = tr.Register("b", KindShape, mustBox(t, 5.0, 0, 2, 2), win, 0)
	if !errors.Is(err, errors.ErrCodeOutOfBounds) {
		t.Errorf("expected OUT_OF_BOUNDS, got %v", err)
	}

	if tr.Len() != 1 {
		t.Errorf("tracker should still hold exactly one object, has %d", tr.Len())
	}
}

func TestMarginConflicts(t *testing.T) {
	tr := NewTracker(testCanvas(t))
	if err := tr.Register("a", KindText, mustBox(t, 0, 0, 2, 2), mustWindow(t, 0, 10), 0); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Box touching a's edge: clean at margin 0, conflicting at margin 0.5.
	neighbor := mustBox(t, 2.5, 0, 3, 2)
	if ids := tr.Conflicts(neighbor, At(5), 0); len(ids) != 0 {
		t.Errorf("margin 0 conflicts = %v, want none", ids)
	}
	if ids := tr.Conflicts(neighbor, At(5), 0.5); !reflect.DeepEqual(ids, []string{"a"}) {
		t.Errorf("margin 0.5 conflicts = %v, want [a]", ids)
	}
	// Inactive instant: no conflict regardless of margin.
	if ids := tr.Conflicts(neighbor, At(10), 0.5); len(ids) != 0 {
		t.Errorf("conflicts at t=10 = %v, want none", ids)
	}
}

func TestConflictsExclude(t *testing.T) {
	tr := NewTracker(testCanvas(t))
	if err := tr.Register("a", KindText, mustBox(t, 0, 0, 2, 2), mustWindow(t, 0, 10), 0); err != nil {
		t.Fatalf("register: %v", err)
	}

	box := mustBox(t, 0.5, 0, 2, 2)
	if ids := tr.Conflicts(box, At(5), 0); !reflect.DeepEqual(ids, []string{"a"}) {
		t.Fatalf("conflicts = %v, want [a]", ids)
	}
	if ids := tr.Conflicts(box, At(5), 0, "a"); len(ids) != 0 {
		t.Errorf("excluded conflicts = %v, want none", ids)
	}
}

func TestUnregister(t *testing.T) {
	tr := NewTracker(testCanvas(t))
	if err := tr.Register("a", KindText, mustBox(t, 0, 0, 2, 2), mustWindow(t, 0, 10), 0); err != nil {
		t.Fatalf("register: %v", err)
	}

	if !tr.Unregister("a") {
		t.Error("Unregister of a tracked id should return true")
	}
	if tr.Unregister("a") {
		t.Error("Unregister of an absent id should return false")
	}

	// Freed space is immediately reusable.
	if err := tr.Register("b", KindText, mustBox(t, 0, 0, 2, 2), mustWindow(t, 0, 10), 0); err != nil {
		t.Errorf("register into freed space: %v", err)
	}
}

func TestActiveAtIdempotent(t *testing.T) {
	tr := NewTracker(testCanvas(t))
	if err := tr.Register("a", KindText, mustBox(t, -2, 0, 2, 2), mustWindow(t, 0, 10), 0); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := tr.Register("b", KindText, mustBox(t, 2, 0, 2, 2), mustWindow(t, 5, 15), 0); err != nil {
		t.Fatalf("register: %v", err)
	}

	first := tr.ActiveAt(7)
	second := tr.ActiveAt(7)
	if !reflect.DeepEqual(first, second) {
		t.Error("ActiveAt must be idempotent without mutation")
	}
	if len(first) != 2 || first[0].ID != "a" || first[1].ID != "b" {
		t.Errorf("ActiveAt(7) order = %v", idsOf(first))
	}
	if got := tr.ActiveAt(2); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("ActiveAt(2) = %v, want [a]", idsOf(got))
	}
}

func TestInRegionScenario(t *testing.T) {
	// Canvas 10.8x9.6; "title" centered at (0, 4.0), size (3.0, 0.8),
	// window [0, 3).
	tr := NewTracker(testCanvas(t))
	if err := tr.Register("title", KindTitle, mustBox(t, 0, 4.0, 3.0, 0.8), mustWindow(t, 0, 3), 0); err != nil {
		t.Fatalf("register: %v", err)
	}

	top := tr.InRegion(geometry.RegionTopCenter, At(1.5))
	if got := idsOf(top); !reflect.DeepEqual(got, []string{"title"}) {
		t.Errorf("InRegion(top_center, 1.5) = %v, want [title]", got)
	}
	if got := tr.InRegion(geometry.RegionBottomCenter, At(1.5)); len(got) != 0 {
		t.Errorf("InRegion(bottom_center, 1.5) = %v, want empty", idsOf(got))
	}
	// Outside the window.
	if got := tr.InRegion(geometry.RegionTopCenter, At(3.0)); len(got) != 0 {
		t.Errorf("InRegion(top_center, 3.0) = %v, want empty", idsOf(got))
	}
	// No time filter.
	if got := tr.InRegion(geometry.RegionTopCenter, AnyTime()); len(got) != 1 {
		t.Errorf("InRegion(top_center, any) = %v, want [title]", idsOf(got))
	}
}

func TestOccupancyGridReproducible(t *testing.T) {
	tr := NewTracker(testCanvas(t))
	box := mustBox(t, -2.7, 2.4, 2, 2)
	win := mustWindow(t, 0, 10)
	if err := tr.Register("a", KindDiagram, box, win, 0); err != nil {
		t.Fatalf("register: %v", err)
	}

	before := tr.OccupancyGrid(5, 4, 4)

	if !tr.Unregister("a") {
		t.Fatal("unregister failed")
	}
	if err := tr.Register("a", KindDiagram, box, win, 0); err != nil {
		t.Fatalf("re-register: %v", err)
	}

	after := tr.OccupancyGrid(5, 4, 4)
	if !reflect.DeepEqual(before, after) {
		t.Errorf("occupancy grid changed after unregister/re-register:\n%v\n%v", before, after)
	}

	// The object sits in the upper-left quadrant only.
	var total int
	for r, row := range before {
		for c, n := range row {
			total += n
			if n > 0 && (r > 1 || c > 1) {
				t.Errorf("unexpected occupancy at cell (%d,%d)", r, c)
			}
		}
	}
	if total == 0 {
		t.Error("occupancy grid should count at least one cell")
	}
}

func TestStatisticsScenario(t *testing.T) {
	// Two objects with disjoint 3s and 5s windows.
	tr := NewTracker(testCanvas(t))
	if err := tr.Register("a", KindTitle, mustBox(t, -2, 0, 2, 1), mustWindow(t, 0, 3), 0); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := tr.Register("b", KindText, mustBox(t, 2, 0, 4, 2), mustWindow(t, 4, 9), 0); err != nil {
		t.Fatalf("register: %v", err)
	}

	s := tr.Statistics()
	if s.Count != 2 {
		t.Errorf("Count = %d, want 2", s.Count)
	}
	if s.AverageDuration != 4.0 {
		t.Errorf("AverageDuration = %v, want 4.0", s.AverageDuration)
	}
	if s.TimeRange.Start != 0 || s.TimeRange.End != 9 {
		t.Errorf("TimeRange = %v, want [0, 9)", s.TimeRange)
	}
	if s.CountsByKind[KindTitle] != 1 || s.CountsByKind[KindText] != 1 {
		t.Errorf("CountsByKind = %v", s.CountsByKind)
	}

	wantUtil := ((2.0 + 8.0) / 2) / (10.8 * 9.6)
	if diff := s.CanvasUtilization - wantUtil; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("CanvasUtilization = %v, want %v", s.CanvasUtilization, wantUtil)
	}
}

func TestStatisticsEmpty(t *testing.T) {
	tr := NewTracker(testCanvas(t))
	s := tr.Statistics()
	if s.Count != 0 || s.AverageDuration != 0 || s.CanvasUtilization != 0 {
		t.Errorf("empty stats = %+v", s)
	}
}

func TestTimelineOrdering(t *testing.T) {
	tr := NewTracker(testCanvas(t))
	// Registered out of start order; b and c share a start.
	if err := tr.Register("a", KindText, mustBox(t, -3, 0, 1, 1), mustWindow(t, 5, 6), 0); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := tr.Register("b", KindText, mustBox(t, 0, 0, 1, 1), mustWindow(t, 1, 2), 0); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := tr.Register("c", KindText, mustBox(t, 3, 0, 1, 1), mustWindow(t, 1, 3), 0); err != nil {
		t.Fatalf("register: %v", err)
	}

	got := idsOf(tr.Timeline())
	if !reflect.DeepEqual(got, []string{"b", "c", "a"}) {
		t.Errorf("Timeline = %v, want [b c a]", got)
	}
}

func TestClear(t *testing.T) {
	tr := NewTracker(testCanvas(t))
	if err := tr.Register("a", KindText, mustBox(t, 0, 0, 1, 1), mustWindow(t, 0, 1), 0); err != nil {
		t.Fatalf("register: %v", err)
	}
	tr.Clear()
	if tr.Len() != 0 {
		t.Error("Clear should remove every object")
	}
}

func idsOf(objs []*Object) []string {
	ids := make([]string, len(objs))
	for i, o := range objs {
		ids[i] = o.ID
	}
	return ids
}
