package store

import (
	"context"
	"errors"
	"testing"

	"stackup/internal/engine"
)

func newGame(id string, version int64) *engine.GameState {
	return &engine.GameState{
		ID:              id,
		Difficulty:      engine.DifficultyNormal,
		Status:          engine.StatusPlaying,
		CurrentTurn:     1,
		Cash:            10_000_000,
		Trust:           50,
		MaxUserCapacity: 10_000,
		Version:         version,
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Create(ctx, newGame("g1", 1)); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := s.Get(ctx, "g1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "g1" || got.Version != 1 {
		t.Fatalf("unexpected state: %+v", got)
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, engine.ErrGameNotFound) {
		t.Fatalf("get: got %v want ErrGameNotFound", err)
	}
	if err := s.Update(ctx, newGame("missing", 2)); !errors.Is(err, engine.ErrGameNotFound) {
		t.Fatalf("update: got %v want ErrGameNotFound", err)
	}
}

func TestMemoryStoreVersionCheck(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if err := s.Create(ctx, newGame("g1", 1)); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.Update(ctx, newGame("g1", 2)); err != nil {
		t.Fatalf("in-order update: %v", err)
	}
	if err := s.Update(ctx, newGame("g1", 2)); !errors.Is(err, engine.ErrConcurrentModification) {
		t.Fatalf("stale update: got %v want ErrConcurrentModification", err)
	}
	if err := s.Update(ctx, newGame("g1", 5)); !errors.Is(err, engine.ErrConcurrentModification) {
		t.Fatalf("skipped version: got %v want ErrConcurrentModification", err)
	}
}

func TestMemoryStoreClonesState(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	g := newGame("g1", 1)
	g.Infrastructure = []string{"RDS"}
	if err := s.Create(ctx, g); err != nil {
		t.Fatalf("create: %v", err)
	}
	g.Infrastructure[0] = "mutated"
	g.Trust = 0

	got, err := s.Get(ctx, "g1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Infrastructure[0] != "RDS" || got.Trust != 50 {
		t.Fatalf("stored state shares memory with caller: %+v", got)
	}

	got.Trust = 99
	again, _ := s.Get(ctx, "g1")
	if again.Trust != 50 {
		t.Fatalf("Get must return a copy")
	}
}

func TestMemoryHistoryFiltersByGame(t *testing.T) {
	h := NewMemoryHistory()
	ctx := context.Background()

	_ = h.Append(ctx, engine.TransitionRecord{GameID: "a", Turn: 1, Kind: "choice"})
	_ = h.Append(ctx, engine.TransitionRecord{GameID: "b", Turn: 1, Kind: "choice"})
	_ = h.Append(ctx, engine.TransitionRecord{GameID: "a", Turn: 1, Kind: "event"})

	recs := h.Records("a")
	if len(recs) != 2 {
		t.Fatalf("records: got %d want 2", len(recs))
	}
	if recs[1].Kind != "event" {
		t.Fatalf("order not preserved: %+v", recs)
	}
}
