// Package store provides the in-memory GameStore and HistorySink used when
// no database is configured. Postgres-backed implementations live in the
// postgres subpackage.
package store

import (
	"context"
	"sync"

	"stackup/internal/engine"
)

// MemoryStore keeps game state in a map. Get and Update copy state so
// callers never share the stored aggregate.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[string]*engine.GameState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{games: make(map[string]*engine.GameState)}
}

func (s *MemoryStore) Create(_ context.Context, g *engine.GameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = g.Clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return nil, engine.ErrGameNotFound
	}
	return g.Clone(), nil
}

// Update applies an optimistic version check: the incoming state must be
// exactly one version ahead of the stored one.
func (s *MemoryStore) Update(_ context.Context, g *engine.GameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.games[g.ID]
	if !ok {
		return engine.ErrGameNotFound
	}
	if g.Version != cur.Version+1 {
		return engine.ErrConcurrentModification
	}
	s.games[g.ID] = g.Clone()
	return nil
}

// MemoryHistory buffers transition records, mostly for tests and the
// simulator.
type MemoryHistory struct {
	mu   sync.Mutex
	recs []engine.TransitionRecord
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{}
}

func (h *MemoryHistory) Append(_ context.Context, rec engine.TransitionRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recs = append(h.recs, rec)
	return nil
}

func (h *MemoryHistory) Records(gameID string) []engine.TransitionRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]engine.TransitionRecord, 0, len(h.recs))
	for _, r := range h.recs {
		if r.GameID == gameID {
			out = append(out, r)
		}
	}
	return out
}
