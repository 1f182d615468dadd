package plan

import (
	"math/rand"
	"testing"

	"github.com/sceneplan/sceneplan/pkg/errors"
	"github.com/sceneplan/sceneplan/pkg/geometry"
	"github.com/sceneplan/sceneplan/pkg/place"
	"github.com/sceneplan/sceneplan/pkg/track"
)

func testPlanner(t *testing.T, opts ...Option) *Planner {
	t.Helper()
	canvas, err := geometry.NewCanvas(10.8, 9.6)
	if err != nil {
		t.Fatalf("NewCanvas: %v", err)
	}
	return New(canvas, opts...)
}

func win(start, end float64) track.Window {
	return track.Window{Start: start, End: end}
}

func TestPlanEmptyBatch(t *testing.T) {
	p := testPlanner(t)
	out, err := p.Plan(nil)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(out.Entries) != 0 {
		t.Errorf("empty batch produced %d entries", len(out.Entries))
	}
	if out.CanvasWidth != 10.8 || out.CanvasHeight != 9.6 {
		t.Errorf("canvas dims = %v x %v", out.CanvasWidth, out.CanvasHeight)
	}
}

func TestPlanExplicitPosition(t *testing.T) {
	p := testPlanner(t, WithMargin(0))
	out, err := p.Plan([]Request{{
		ID: "hdr", Kind: track.KindTitle, Width: 3, Height: 0.8,
		Window:   win(0, 5),
		Position: &Position{X: 0, Y: 4.0},
	}})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	e, ok := out.Entry("hdr")
	if !ok || e.Status != StatusPlaced {
		t.Fatalf("hdr entry = %+v, %v", e, ok)
	}
	if e.X != 0 || e.Y != 4.0 {
		t.Errorf("explicit position moved to (%v, %v)", e.X, e.Y)
	}
	if e.Region != "top_center" {
		t.Errorf("region = %q, want top_center", e.Region)
	}
	if e.Strategy != "" {
		t.Errorf("explicit placement should record no strategy, got %q", e.Strategy)
	}
}

func TestPlanExplicitConflictFails(t *testing.T) {
	p := testPlanner(t, WithMargin(0))
	out, err := p.Plan([]Request{
		{ID: "a", Kind: track.KindText, Width: 2, Height: 2, Window: win(0, 10), Position: &Position{X: 0, Y: 0}},
		{ID: "b", Kind: track.KindText, Width: 2, Height: 2, Window: win(2, 8), Position: &Position{X: 0.5, Y: 0}},
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	b, _ := out.Entry("b")
	if b.Status != StatusFailed {
		t.Fatalf("overlapping explicit placement should fail, got %s", b.Status)
	}
	if b.Reason == nil || b.Reason.Code != errors.ErrCodeConflict {
		t.Fatalf("reason = %+v, want CONFLICT", b.Reason)
	}
	if len(b.Reason.ConflictIDs) != 1 || b.Reason.ConflictIDs[0] != "a" {
		t.Errorf("conflict ids = %v, want [a]", b.Reason.ConflictIDs)
	}

	// Failed requests leave no trace in the tracker.
	if _, exists := p.Tracker().Get("b"); exists {
		t.Error("failed request was registered")
	}
}

func TestPlanExplicitBeforeSearched(t *testing.T) {
	// The searched title would love the top band; the explicit request
	// claims it first even though it appears later in the batch.
	p := testPlanner(t, WithMargin(0))
	out, err := p.Plan([]Request{
		{ID: "t", Kind: track.KindTitle, Width: 3, Height: 0.8, Window: win(0, 5)},
		{ID: "pinned", Kind: track.KindShape, Width: 3.5, Height: 3.0, Window: win(0, 5), Position: &Position{X: 0, Y: 3.2}},
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	pinned, _ := out.Entry("pinned")
	if pinned.Status != StatusPlaced {
		t.Fatalf("pinned = %+v", pinned)
	}
	title, _ := out.Entry("t")
	if title.Status != StatusPlaced {
		t.Fatalf("title = %+v", title)
	}
	if title.X == 0 && title.Y == 3.2 {
		t.Error("searched title landed on the pinned shape")
	}
}

func TestPlanPriorityOrdering(t *testing.T) {
	p := testPlanner(t)
	out, err := p.Plan([]Request{
		{ID: "lbl", Kind: track.KindLabel, Width: 1, Height: 0.5, Window: win(0, 5)},
		{ID: "ttl", Kind: track.KindTitle, Width: 3, Height: 0.8, Window: win(0, 5)},
		{ID: "txt", Kind: track.KindText, Width: 2, Height: 1, Window: win(0, 5)},
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	order := make([]string, len(out.Entries))
	for i, e := range out.Entries {
		order[i] = e.ID
	}
	want := []string{"ttl", "txt", "lbl"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("processing order = %v, want %v", order, want)
		}
	}
}

func TestPlanAreaBreaksKindTies(t *testing.T) {
	p := testPlanner(t)
	out, err := p.Plan([]Request{
		{ID: "small", Kind: track.KindText, Width: 1, Height: 1, Window: win(0, 5)},
		{ID: "big", Kind: track.KindText, Width: 3, Height: 2, Window: win(0, 5)},
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if out.Entries[0].ID != "big" {
		t.Errorf("larger request should place first, order = %s, %s",
			out.Entries[0].ID, out.Entries[1].ID)
	}
}

func TestPlanDuplicateID(t *testing.T) {
	p := testPlanner(t)
	out, err := p.Plan([]Request{
		{ID: "x", Kind: track.KindText, Width: 2, Height: 1, Window: win(0, 5)},
		{ID: "x", Kind: track.KindText, Width: 2, Height: 1, Window: win(0, 5)},
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if got := len(out.Placed()); got != 1 {
		t.Fatalf("placed = %d, want 1", got)
	}
	failed := out.Failed()
	if len(failed) != 1 || failed[0].Reason.Code != errors.ErrCodeDuplicateID {
		t.Errorf("failed = %+v, want one DUPLICATE_ID", failed)
	}
}

func TestPlanDuplicateAcrossBatches(t *testing.T) {
	p := testPlanner(t)
	if _, err := p.Plan([]Request{{ID: "x", Kind: track.KindText, Width: 2, Height: 1, Window: win(0, 5)}}); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	out, err := p.Plan([]Request{{ID: "x", Kind: track.KindText, Width: 2, Height: 1, Window: win(10, 15)}})
	if err != nil {
		t.Fatalf("second batch: %v", err)
	}
	if out.Entries[0].Status != StatusFailed || out.Entries[0].Reason.Code != errors.ErrCodeDuplicateID {
		t.Errorf("entry = %+v, want DUPLICATE_ID failure", out.Entries[0])
	}
}

func TestPlanValidationFailures(t *testing.T) {
	p := testPlanner(t)
	out, err := p.Plan([]Request{
		{ID: "", Kind: track.KindText, Width: 2, Height: 1, Window: win(0, 5)},
		{ID: "flat", Kind: track.KindText, Width: 0, Height: 1, Window: win(0, 5)},
		{ID: "rev", Kind: track.KindText, Width: 2, Height: 1, Window: win(5, 5)},
		{ID: "odd", Kind: track.KindText, Width: 2, Height: 1, Window: win(0, 5), Strategy: "random_walk"},
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	wantCodes := map[string]errors.Code{
		"":     errors.ErrCodeInvalidRequest,
		"flat": errors.ErrCodeInvalidGeometry,
		"rev":  errors.ErrCodeInvalidTimeWindow,
		"odd":  errors.ErrCodeInvalidStrategy,
	}
	for _, e := range out.Entries {
		if e.Status != StatusFailed {
			t.Errorf("%q should fail, got %s", e.ID, e.Status)
			continue
		}
		if want := wantCodes[e.ID]; e.Reason.Code != want {
			t.Errorf("%q reason = %s, want %s", e.ID, e.Reason.Code, want)
		}
	}
}

func TestPlanExhaustionReported(t *testing.T) {
	p := testPlanner(t)
	out, err := p.Plan([]Request{{
		ID: "huge", Kind: track.KindDiagram,
		Width: 20, Height: 20, Window: win(0, 5),
	}})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	e := out.Entries[0]
	if e.Status != StatusFailed || e.Reason.Code != errors.ErrCodePlacementExhausted {
		t.Errorf("entry = %+v, want PLACEMENT_EXHAUSTED", e)
	}
}

func TestPlanDisjointWindowsShareSpace(t *testing.T) {
	p := testPlanner(t, WithMargin(0), WithDefaultStrategy(place.NameCenterSpiral))
	out, err := p.Plan([]Request{
		{ID: "early", Kind: track.KindText, Width: 2, Height: 2, Window: win(0, 5)},
		{ID: "late", Kind: track.KindText, Width: 2, Height: 2, Window: win(5, 10)},
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	early, _ := out.Entry("early")
	late, _ := out.Entry("late")
	if early.Status != StatusPlaced || late.Status != StatusPlaced {
		t.Fatalf("both should place: %+v / %+v", early, late)
	}
	// Half-open windows: [0,5) and [5,10) never coexist, so the spiral
	// offers the origin twice.
	if early.X != late.X || early.Y != late.Y {
		t.Errorf("disjoint windows should reuse the center: %v,%v vs %v,%v",
			early.X, early.Y, late.X, late.Y)
	}
}

func TestPlanStrategyRecorded(t *testing.T) {
	p := testPlanner(t)
	out, err := p.Plan([]Request{{
		ID: "g", Kind: track.KindText, Width: 2, Height: 2,
		Window: win(0, 5), Strategy: place.NameGrid,
	}})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if got := out.Entries[0].Strategy; got != place.NameGrid {
		t.Errorf("strategy_used = %q, want grid", got)
	}
}

func TestRemoveFreesSpace(t *testing.T) {
	p := testPlanner(t, WithMargin(0), WithDefaultStrategy(place.NameCenterSpiral))
	out, err := p.Plan([]Request{{ID: "a", Kind: track.KindText, Width: 2, Height: 2, Window: win(0, 10)}})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	a := out.Entries[0]

	if !p.Remove("a") {
		t.Fatal("Remove(a) = false")
	}
	if p.Remove("a") {
		t.Error("second Remove(a) should report false")
	}
	if p.Remove("missing") {
		t.Error("Remove of unknown id should report false")
	}

	// Both the freed center and the freed id are available again.
	out2, err := p.Plan([]Request{
		{ID: "b", Kind: track.KindText, Width: 2, Height: 2, Window: win(0, 10)},
		{ID: "a", Kind: track.KindText, Width: 2, Height: 2, Window: win(0, 10)},
	})
	if err != nil {
		t.Fatalf("second batch: %v", err)
	}
	b, _ := out2.Entry("b")
	if b.Status != StatusPlaced || b.X != a.X || b.Y != a.Y {
		t.Errorf("b should reuse the freed slot: %+v vs %+v", b, a)
	}
	again, _ := out2.Entry("a")
	if again.Status != StatusPlaced {
		t.Errorf("removed id should be reusable: %+v", again)
	}
	if again.X == b.X && again.Y == b.Y {
		t.Error("re-added object landed on b")
	}

	// Removing the re-added object works like the first time.
	if !p.Remove("a") {
		t.Error("Remove of re-added id = false")
	}
}

func TestPlanRetryAfterFailure(t *testing.T) {
	p := testPlanner(t)

	out, err := p.Plan([]Request{{
		ID: "x", Kind: track.KindDiagram, Width: 20, Height: 20, Window: win(0, 5),
	}})
	if err != nil {
		t.Fatalf("first batch: %v", err)
	}
	e := out.Entries[0]
	if e.Status != StatusFailed || e.Reason.Code != errors.ErrCodePlacementExhausted {
		t.Fatalf("oversized request = %+v, want PLACEMENT_EXHAUSTED", e)
	}

	// A failed request was never registered, so the same id can retry
	// at a feasible size.
	out2, err := p.Plan([]Request{{
		ID: "x", Kind: track.KindDiagram, Width: 2, Height: 2, Window: win(0, 5),
	}})
	if err != nil {
		t.Fatalf("retry batch: %v", err)
	}
	retry, _ := out2.Entry("x")
	if retry.Status != StatusPlaced {
		t.Errorf("retry = %+v, want placed", retry)
	}
}

func TestPlanGridSizeOption(t *testing.T) {
	p := testPlanner(t, WithGridSize(1, 1), WithDefaultStrategy(place.NameGrid))
	out, err := p.Plan([]Request{
		{ID: "only", Kind: track.KindText, Width: 2, Height: 2, Window: win(0, 5)},
		{ID: "spill", Kind: track.KindText, Width: 2, Height: 2, Window: win(0, 5)},
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	only, _ := out.Entry("only")
	if only.Status != StatusPlaced || only.X != 0 || only.Y != 0 {
		t.Errorf("single cell should center the first request: %+v", only)
	}
	spill, _ := out.Entry("spill")
	if spill.Status != StatusFailed || spill.Reason.Code != errors.ErrCodePlacementExhausted {
		t.Errorf("second request should exhaust the 1x1 grid: %+v", spill)
	}
}

// TestPlanNoOverlapsProperty drives the planner with a seeded random
// batch and checks the core guarantee on the result: no two placed
// boxes with overlapping windows overlap at the configured margin.
func TestPlanNoOverlapsProperty(t *testing.T) {
	const margin = 0.1
	rng := rand.New(rand.NewSource(42))
	kinds := track.Kinds()

	p := testPlanner(t, WithMargin(margin))
	var reqs []Request
	for i := 0; i < 60; i++ {
		start := float64(rng.Intn(20))
		reqs = append(reqs, Request{
			ID:     string(rune('A'+i/26)) + string(rune('a'+i%26)),
			Kind:   kinds[rng.Intn(len(kinds))],
			Width:  0.5 + rng.Float64()*2.5,
			Height: 0.5 + rng.Float64()*2.0,
			Window: win(start, start+1+float64(rng.Intn(8))),
		})
	}

	out, err := p.Plan(reqs)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	placed := out.Placed()
	if len(placed) == 0 {
		t.Fatal("random batch placed nothing")
	}
	for i := 0; i < len(placed); i++ {
		for j := i + 1; j < len(placed); j++ {
			a, b := placed[i], placed[j]
			if !a.Window.Overlaps(b.Window) {
				continue
			}
			boxA, _ := geometry.FromCenter(a.X, a.Y, a.Width, a.Height)
			boxB, _ := geometry.FromCenter(b.X, b.Y, b.Width, b.Height)
			if boxA.Overlaps(boxB, margin) {
				t.Errorf("placed %s and %s overlap within margin", a.ID, b.ID)
			}
		}
	}

	// Every failed entry carries a typed reason.
	for _, e := range out.Failed() {
		if e.Reason == nil || e.Reason.Code == "" {
			t.Errorf("failed entry %s lacks a reason", e.ID)
		}
	}
}
