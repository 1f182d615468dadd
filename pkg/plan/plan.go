package plan

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sceneplan/sceneplan/pkg/errors"
	"github.com/sceneplan/sceneplan/pkg/place"
	"github.com/sceneplan/sceneplan/pkg/track"
)

// =============================================================================
// Status - Per-Object Terminal States
// =============================================================================

// Status is a request's terminal state in the plan.
type Status string

const (
	// StatusPlaced marks a registered, conflict-free placement.
	StatusPlaced Status = "placed"

	// StatusFailed marks a request that was rejected or exhausted every
	// configured strategy. Failed objects are never registered.
	StatusFailed Status = "failed"

	// StatusRemoved marks a placement withdrawn by explicit caller
	// instruction after it was placed.
	StatusRemoved Status = "removed"
)

// =============================================================================
// Entry - Per-Object Outcome
// =============================================================================

// Failure carries the typed reason a request could not be placed.
type Failure struct {
	Code        errors.Code `json:"code" bson:"code"`
	Message     string      `json:"message,omitempty" bson:"message,omitempty"`
	ConflictIDs []string    `json:"conflict_ids,omitempty" bson:"conflict_ids,omitempty"`
}

// failureFrom converts a placement error into its serializable form.
func failureFrom(err error) *Failure {
	f := &Failure{
		Code:    errors.GetCode(err),
		Message: errors.UserMessage(err),
	}
	if ids := errors.ConflictIDs(err); ids != nil {
		f.ConflictIDs = ids
		f.Message = ""
	}
	if f.Code == "" {
		f.Code = errors.ErrCodeInternal
	}
	return f
}

// Entry is one object's outcome. Geometry fields are meaningful only
// when Status is placed or removed.
type Entry struct {
	ID     string     `json:"id" bson:"id"`
	Kind   track.Kind `json:"kind" bson:"kind"`
	Status Status     `json:"status" bson:"status"`

	X      float64      `json:"x,omitempty" bson:"x,omitempty"`
	Y      float64      `json:"y,omitempty" bson:"y,omitempty"`
	Width  float64      `json:"width,omitempty" bson:"width,omitempty"`
	Height float64      `json:"height,omitempty" bson:"height,omitempty"`
	Window track.Window `json:"time_window" bson:"time_window"`
	Region string       `json:"region,omitempty" bson:"region,omitempty"`

	// Strategy names the search algorithm that produced the position.
	// Empty for explicit positions.
	Strategy place.Name `json:"strategy_used,omitempty" bson:"strategy_used,omitempty"`

	// Reason is set only for failed entries.
	Reason *Failure `json:"reason,omitempty" bson:"reason,omitempty"`
}

// =============================================================================
// Plan - Batch Outcome
// =============================================================================

// Plan is the planner's output: every per-object outcome for a batch,
// in processing order, plus the canvas parameters the batch ran under.
type Plan struct {
	CanvasWidth  float64 `json:"canvas_width" bson:"canvas_width"`
	CanvasHeight float64 `json:"canvas_height" bson:"canvas_height"`
	Margin       float64 `json:"margin" bson:"margin"`
	Entries      []Entry `json:"entries" bson:"entries"`
}

// Entry returns the outcome for an id.
func (p *Plan) Entry(id string) (*Entry, bool) {
	for i := range p.Entries {
		if p.Entries[i].ID == id {
			return &p.Entries[i], true
		}
	}
	return nil, false
}

// Placed returns every placed entry, in processing order.
func (p *Plan) Placed() []Entry { return p.withStatus(StatusPlaced) }

// Failed returns every failed entry, in processing order.
func (p *Plan) Failed() []Entry { return p.withStatus(StatusFailed) }

func (p *Plan) withStatus(s Status) []Entry {
	var out []Entry
	for _, e := range p.Entries {
		if e.Status == s {
			out = append(out, e)
		}
	}
	return out
}

// =============================================================================
// Serialization
// =============================================================================

// MarshalPlan encodes a plan as indented JSON.
func MarshalPlan(p *Plan) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// UnmarshalPlan decodes a plan from JSON bytes.
func UnmarshalPlan(data []byte) (*Plan, error) {
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return &p, nil
}

// ReadPlan decodes a plan from r.
func ReadPlan(r io.Reader) (*Plan, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return UnmarshalPlan(data)
}

// ReadPlanFile loads a plan from a JSON file.
func ReadPlanFile(path string) (*Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadPlan(f)
}

// WritePlanFile writes a plan to a JSON file.
func WritePlanFile(p *Plan, path string) error {
	data, err := MarshalPlan(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// ReadRequests decodes a request batch from r.
func ReadRequests(r io.Reader) ([]Request, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var reqs []Request
	if err := json.Unmarshal(data, &reqs); err != nil {
		return nil, fmt.Errorf("decode requests: %w", err)
	}
	return reqs, nil
}

// ReadRequestsFile loads a request batch from a JSON file.
func ReadRequestsFile(path string) ([]Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRequests(f)
}

// MarshalRequests encodes a request batch as indented JSON.
func MarshalRequests(reqs []Request) ([]byte, error) {
	return json.MarshalIndent(reqs, "", "  ")
}
