package plan

import (
	"io"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/sceneplan/sceneplan/pkg/errors"
	"github.com/sceneplan/sceneplan/pkg/geometry"
	"github.com/sceneplan/sceneplan/pkg/place"
	"github.com/sceneplan/sceneplan/pkg/track"
)

// DefaultMargin is the default clearance between placed objects.
const DefaultMargin = 0.1

// Planner is the layout facade. It owns a tracker for one layout job,
// orders incoming batches, invokes placement strategies, and records
// every outcome. Planners are single-threaded; create one per job.
type Planner struct {
	canvas   geometry.Canvas
	tracker  *track.Tracker
	margin   float64
	strategy place.Name
	gridRows int
	gridCols int
	logger   *log.Logger

	// entries records placements across batches so they can be removed
	// later. Failed requests are never recorded; their ids stay free
	// for retry with a different size, position, or strategy.
	entries map[string]*Entry
}

// Option configures a Planner.
type Option func(*Planner)

// WithMargin sets the clearance required between placed objects.
func WithMargin(m float64) Option {
	return func(p *Planner) { p.margin = m }
}

// WithDefaultStrategy sets the strategy used by requests that do not
// name one.
func WithDefaultStrategy(n place.Name) Option {
	return func(p *Planner) { p.strategy = n }
}

// WithGridSize sets the cell layout used by the grid strategy.
// Non-positive dimensions keep the strategy's default.
func WithGridSize(rows, cols int) Option {
	return func(p *Planner) {
		p.gridRows = rows
		p.gridCols = cols
	}
}

// WithLogger sets the planner's logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Planner) { p.logger = l }
}

// New creates a planner over a fresh tracker for the given canvas.
func New(canvas geometry.Canvas, opts ...Option) *Planner {
	p := &Planner{
		canvas:   canvas,
		tracker:  track.NewTracker(canvas),
		margin:   DefaultMargin,
		strategy: place.NameRegionPreferential,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
		entries:  make(map[string]*Entry),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Tracker exposes the underlying index for read-only diagnostics
// (active-at, in-region, occupancy, statistics, timeline).
func (p *Planner) Tracker() *track.Tracker { return p.tracker }

// Plan processes a batch of requests and returns their outcomes.
//
// Requests with an explicit position are attempted first, in input
// order, validated directly by the tracker. The remainder are sorted by
// kind priority, ties broken by descending area, and searched with the
// request's preferred strategy or the planner default.
//
// Plan only returns an error for internal consistency faults (a
// registration failing after a successful search); every per-request
// failure is reported in the plan instead.
func (p *Planner) Plan(requests []Request) (*Plan, error) {
	out := &Plan{
		CanvasWidth:  p.canvas.Width,
		CanvasHeight: p.canvas.Height,
		Margin:       p.margin,
	}

	explicit, searched := splitBatch(requests)

	for _, req := range explicit {
		entry := p.placeExplicit(req)
		p.record(out, entry)
	}
	for _, req := range searched {
		entry, err := p.placeSearched(req)
		if err != nil {
			return nil, err
		}
		p.record(out, entry)
	}

	p.logger.Info("planned batch",
		"requests", len(requests),
		"placed", len(out.Placed()),
		"failed", len(out.Failed()))
	return out, nil
}

// Remove withdraws a placed object, freeing its space and its id for
// later batches. Returns false if the id was never placed or is
// already removed.
func (p *Planner) Remove(id string) bool {
	entry, ok := p.entries[id]
	if !ok || entry.Status != StatusPlaced {
		return false
	}
	if !p.tracker.Unregister(id) {
		return false
	}
	entry.Status = StatusRemoved
	p.logger.Debug("removed placement", "id", id)
	return true
}

// splitBatch partitions requests into explicit-position and searched
// groups, ordering the searched group by kind rank, then descending
// area, then input order.
func splitBatch(requests []Request) (explicit, searched []Request) {
	type indexed struct {
		req Request
		idx int
	}
	var rest []indexed
	for i, req := range requests {
		if req.Position != nil {
			explicit = append(explicit, req)
			continue
		}
		rest = append(rest, indexed{req: req, idx: i})
	}

	sort.SliceStable(rest, func(i, j int) bool {
		ri, rj := rank(rest[i].req.Kind), rank(rest[j].req.Kind)
		if ri != rj {
			return ri < rj
		}
		if rest[i].req.Area() != rest[j].req.Area() {
			return rest[i].req.Area() > rest[j].req.Area()
		}
		return rest[i].idx < rest[j].idx
	})

	searched = make([]Request, len(rest))
	for i, r := range rest {
		searched[i] = r.req
	}
	return explicit, searched
}

// placeExplicit validates a pinned position directly via Register.
func (p *Planner) placeExplicit(req Request) Entry {
	entry := Entry{ID: req.ID, Kind: req.Kind, Status: StatusFailed, Window: req.Window}

	if fail := p.validate(req); fail != nil {
		entry.Reason = fail
		return entry
	}

	box, err := geometry.FromCenter(req.Position.X, req.Position.Y, req.Width, req.Height)
	if err != nil {
		entry.Reason = failureFrom(err)
		return entry
	}
	if err := p.tracker.RegisterObject(req.ID, req.Kind, box, req.Window, p.margin, req.Meta); err != nil {
		entry.Reason = failureFrom(err)
		p.logger.Debug("explicit position rejected", "id", req.ID, "reason", entry.Reason.Code)
		return entry
	}

	entry.Status = StatusPlaced
	entry.X = req.Position.X
	entry.Y = req.Position.Y
	entry.Width = req.Width
	entry.Height = req.Height
	entry.Region = p.canvas.RegionOf(box).String()
	return entry
}

// placeSearched runs the strategy search and registers the winner.
// A registration failure after a successful search is an internal
// consistency fault: nothing else mutates the tracker between the two.
func (p *Planner) placeSearched(req Request) (Entry, error) {
	entry := Entry{ID: req.ID, Kind: req.Kind, Status: StatusFailed, Window: req.Window}

	if fail := p.validate(req); fail != nil {
		entry.Reason = fail
		return entry, nil
	}

	strategy, err := p.strategyFor(req)
	if err != nil {
		entry.Reason = failureFrom(err)
		return entry, nil
	}

	query := track.During(req.Window.Start, req.Window.End)
	pt, ok := strategy.Find(p.tracker, p.canvas, req.Width, req.Height, query, p.margin)
	if !ok {
		entry.Reason = &Failure{
			Code:    errors.ErrCodePlacementExhausted,
			Message: "no conflict-free position found",
		}
		p.logger.Debug("placement exhausted", "id", req.ID, "strategy", strategy.Name())
		return entry, nil
	}

	box, err := geometry.FromCenter(pt.X, pt.Y, req.Width, req.Height)
	if err != nil {
		return entry, errors.Wrap(errors.ErrCodeInternal, err, "strategy %s produced invalid box for %q", strategy.Name(), req.ID)
	}
	if err := p.tracker.RegisterObject(req.ID, req.Kind, box, req.Window, p.margin, req.Meta); err != nil {
		return entry, errors.Wrap(errors.ErrCodeInternal, err, "register %q after successful search", req.ID)
	}

	entry.Status = StatusPlaced
	entry.X = pt.X
	entry.Y = pt.Y
	entry.Width = req.Width
	entry.Height = req.Height
	entry.Region = p.canvas.RegionOf(box).String()
	entry.Strategy = strategy.Name()
	return entry, nil
}

// validate rejects malformed requests before any search runs.
// Duplicate ids are caught here so a doomed search never executes.
func (p *Planner) validate(req Request) *Failure {
	if req.ID == "" {
		return &Failure{Code: errors.ErrCodeInvalidRequest, Message: "id is required"}
	}
	if e, exists := p.entries[req.ID]; exists && e.Status == StatusPlaced {
		return &Failure{Code: errors.ErrCodeDuplicateID, Message: "id already planned"}
	}
	if _, exists := p.tracker.Get(req.ID); exists {
		return &Failure{Code: errors.ErrCodeDuplicateID, Message: "id already tracked"}
	}
	if req.Width <= 0 || req.Height <= 0 {
		return &Failure{Code: errors.ErrCodeInvalidGeometry, Message: "width and height must be positive"}
	}
	if !req.Window.Valid() {
		return &Failure{Code: errors.ErrCodeInvalidTimeWindow, Message: "start must precede end"}
	}
	return nil
}

// strategyFor resolves the request's strategy, defaulting to the
// planner's. Region preference is ranked by the request's kind.
func (p *Planner) strategyFor(req Request) (place.Strategy, error) {
	name := req.Strategy
	if name == "" {
		name = p.strategy
	}
	if name == place.NameRegionPreferential {
		return place.NewRegionPreferentialFor(req.Kind), nil
	}
	if name == place.NameGrid && p.gridRows > 0 && p.gridCols > 0 {
		return place.NewGrid(p.gridRows, p.gridCols), nil
	}
	return place.ForName(name)
}

// record appends the entry to the batch plan. Only placements enter
// the planner's history; failed ids are left unrecorded so a later
// batch can retry them.
func (p *Planner) record(out *Plan, entry Entry) {
	out.Entries = append(out.Entries, entry)
	if entry.Status == StatusPlaced {
		stored := entry
		p.entries[entry.ID] = &stored
	}
}
