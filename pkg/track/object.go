package track

import (
	"github.com/sceneplan/sceneplan/pkg/errors"
	"github.com/sceneplan/sceneplan/pkg/geometry"
)

// =============================================================================
// Kind - Object Category Tags
// =============================================================================

// Kind tags a tracked object's category. Kinds drive strategy region
// preferences and planner priority only; the collision rules are the
// same for every kind.
type Kind string

// Known object kinds.
const (
	KindTitle    Kind = "title"
	KindText     Kind = "text"
	KindEquation Kind = "equation"
	KindShape    Kind = "shape"
	KindDiagram  Kind = "diagram"
	KindLabel    Kind = "label"
	KindImage    Kind = "image"
)

// Kinds lists every known kind.
func Kinds() []Kind {
	return []Kind{KindTitle, KindText, KindEquation, KindShape, KindDiagram, KindLabel, KindImage}
}

// ParseKind validates a wire string as a known kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidKind, "unknown kind %q", s)
}

// =============================================================================
// Object - Placed Entity
// =============================================================================

// Object is a placed entity: a bounding box active during a time window,
// plus identifying metadata. Objects are created by Tracker.Register and
// never mutated afterwards; repositioning is remove-then-add.
type Object struct {
	ID     string
	Kind   Kind
	Box    geometry.Box
	Window Window
	Meta   map[string]any

	// seq is the registration order, used for deterministic tie-breaks.
	seq int
}

// ActiveAt reports whether the object occupies its box at instant t.
func (o *Object) ActiveAt(t float64) bool {
	return o.Window.Contains(t)
}
