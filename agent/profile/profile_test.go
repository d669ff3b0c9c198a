package profile

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "state", "business_state.json"))
	ctx := context.Background()

	if _, err := store.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on fresh store, got %v", err)
	}

	p := NewProfile()
	p.BusinessProfile["name"] = "Cloud Bakery"
	p.Metrics["mrr"] = 42000.0
	p.Priorities = []string{"hire a baker"}
	if err := store.Save(ctx, p); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.BusinessProfile["name"] != "Cloud Bakery" {
		t.Fatalf("unexpected profile: %#v", loaded.BusinessProfile)
	}
	if len(loaded.Priorities) != 1 || loaded.Priorities[0] != "hire a baker" {
		t.Fatalf("unexpected priorities: %v", loaded.Priorities)
	}
}

func TestFileStoreRejectsNil(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "business_state.json"))
	if err := store.Save(context.Background(), nil); !errors.Is(err, ErrNilProfile) {
		t.Fatalf("expected ErrNilProfile, got %v", err)
	}
}

func TestAddDecisionKeepsNewestFirstAndBounded(t *testing.T) {
	t.Parallel()

	p := NewProfile()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < maxRecentDecisions+10; i++ {
		p.AddDecision(fmt.Sprintf("decision-%d", i), base.Add(time.Duration(i)*time.Minute))
	}

	if len(p.RecentDecisions) != maxRecentDecisions {
		t.Fatalf("expected %d decisions, got %d", maxRecentDecisions, len(p.RecentDecisions))
	}
	if p.RecentDecisions[0].Summary != fmt.Sprintf("decision-%d", maxRecentDecisions+9) {
		t.Fatalf("newest decision must be first, got %s", p.RecentDecisions[0].Summary)
	}
	last := p.RecentDecisions[len(p.RecentDecisions)-1]
	if last.Summary != "decision-10" {
		t.Fatalf("oldest surviving decision wrong: %s", last.Summary)
	}
	if !p.LastUpdated.Equal(base.Add(time.Duration(maxRecentDecisions+9) * time.Minute)) {
		t.Fatalf("LastUpdated not advanced: %v", p.LastUpdated)
	}
}
