// Package store persists computed plans so the HTTP API can serve
// them back by id. Two backends exist: an in-memory store for tests
// and single-process use, and a MongoDB store for deployments.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sceneplan/sceneplan/pkg/plan"
)

// StoredPlan is a persisted planning job: the input batch, the
// resulting plan, and bookkeeping.
type StoredPlan struct {
	ID        uuid.UUID      `json:"id" bson:"_id"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
	Requests  []plan.Request `json:"requests" bson:"requests"`
	Plan      *plan.Plan     `json:"plan" bson:"plan"`
}

// Store is the interface plan storage backends implement.
type Store interface {
	// Insert persists a plan record.
	Insert(ctx context.Context, p *StoredPlan) error

	// Get retrieves a plan by id. Returns nil, nil when absent.
	Get(ctx context.Context, id uuid.UUID) (*StoredPlan, error)

	// List returns the most recent records, newest first, up to limit.
	List(ctx context.Context, limit int) ([]*StoredPlan, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
