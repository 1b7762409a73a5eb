// Package postgres persists games and transition history in Postgres via
// pgx. State is stored as one JSONB document per game with an optimistic
// version column.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"stackup/internal/engine"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the tables if they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS games (
			id         TEXT PRIMARY KEY,
			version    BIGINT NOT NULL,
			state      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS game_transitions (
			id         TEXT PRIMARY KEY,
			game_id    TEXT NOT NULL,
			turn       INT NOT NULL,
			kind       TEXT NOT NULL,
			record     JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS game_transitions_game_idx
			ON game_transitions (game_id, created_at);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *Store) Create(ctx context.Context, g *engine.GameState) error {
	body, err := json.Marshal(g)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO games (id, version, state, updated_at)
		VALUES ($1, $2, $3, $4)
	`, g.ID, g.Version, body, g.UpdatedAt)
	return err
}

func (s *Store) Get(ctx context.Context, id string) (*engine.GameState, error) {
	var body []byte
	err := s.db.QueryRow(ctx, `SELECT state FROM games WHERE id = $1`, id).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, engine.ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	var g engine.GameState
	if err := json.Unmarshal(body, &g); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", id, err)
	}
	return &g, nil
}

// Update writes the new state only when the stored version is exactly one
// behind, surfacing lost races as concurrent modification.
func (s *Store) Update(ctx context.Context, g *engine.GameState) error {
	body, err := json.Marshal(g)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE games
		SET version = $2, state = $3, updated_at = $4
		WHERE id = $1 AND version = $2 - 1
	`, g.ID, g.Version, body, g.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM games WHERE id = $1)`, g.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return engine.ErrGameNotFound
		}
		return engine.ErrConcurrentModification
	}
	return nil
}

// History appends transition records to game_transitions.
type History struct {
	db *pgxpool.Pool
}

func NewHistory(db *pgxpool.Pool) *History {
	return &History{db: db}
}

func (h *History) Append(ctx context.Context, rec engine.TransitionRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = h.db.Exec(ctx, `
		INSERT INTO game_transitions (id, game_id, turn, kind, record, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.ID, rec.GameID, rec.Turn, rec.Kind, body, rec.At)
	return err
}
