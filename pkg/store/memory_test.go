package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sceneplan/sceneplan/pkg/plan"
)

func storedPlan(createdAt time.Time) *StoredPlan {
	return &StoredPlan{
		ID:        uuid.New(),
		CreatedAt: createdAt,
		Requests:  []plan.Request{{ID: "a", Width: 1, Height: 1}},
		Plan:      &plan.Plan{CanvasWidth: 10, CanvasHeight: 10},
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close(ctx)

	p := storedPlan(time.Now())
	if err := s.Insert(ctx, p); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := s.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.ID != p.ID || len(got.Requests) != 1 {
		t.Errorf("Get = %+v", got)
	}

	missing, err := s.Get(ctx, uuid.New())
	if err != nil || missing != nil {
		t.Errorf("unknown id: got %+v, %v; want nil, nil", missing, err)
	}
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	base := time.Now()
	old := storedPlan(base.Add(-time.Hour))
	mid := storedPlan(base.Add(-time.Minute))
	newest := storedPlan(base)
	for _, p := range []*StoredPlan{old, newest, mid} {
		if err := s.Insert(ctx, p); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	got, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 || got[0].ID != newest.ID || got[2].ID != old.ID {
		t.Errorf("List order wrong: %v", got)
	}

	limited, err := s.List(ctx, 2)
	if err != nil || len(limited) != 2 {
		t.Errorf("List(2) = %d items, %v", len(limited), err)
	}
}
