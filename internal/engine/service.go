package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"stackup/internal/catalog"

	"github.com/google/uuid"
)

// GameStore is the persistence boundary. Implementations return
// ErrGameNotFound for unknown ids and ErrConcurrentModification when an
// Update carries a stale version.
type GameStore interface {
	Create(ctx context.Context, g *GameState) error
	Get(ctx context.Context, id string) (*GameState, error)
	Update(ctx context.Context, g *GameState) error
}

// TransitionRecord is one append-only history entry per resolved
// transition.
type TransitionRecord struct {
	ID        string    `json:"id"`
	GameID    string    `json:"game_id"`
	Turn      int       `json:"turn"`
	Kind      string    `json:"kind"`
	ChoiceIDs []string  `json:"choice_ids"`
	Status    Status    `json:"status"`
	Users     int64     `json:"users"`
	Cash      int64     `json:"cash"`
	Trust     int       `json:"trust"`
	At        time.Time `json:"at"`
}

// HistorySink receives transition records. The engine treats it as
// fire-and-forget: a sink failure is logged, never surfaced.
type HistorySink interface {
	Append(ctx context.Context, rec TransitionRecord) error
}

type noopHistory struct{}

func (noopHistory) Append(context.Context, TransitionRecord) error { return nil }

// Service owns game lifecycle and serializes transitions per game. A
// second submission arriving while one is in flight for the same game
// fails fast instead of queueing.
type Service struct {
	cat     *catalog.Catalog
	store   GameStore
	history HistorySink
	log     *slog.Logger
	rng     RandomSource

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(cat *catalog.Catalog, store GameStore, history HistorySink, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if history == nil {
		history = noopHistory{}
	}
	s := &Service{
		cat:     cat,
		store:   store,
		history: history,
		log:     logger,
		rng:     DefaultRNG(),
		locks:   make(map[string]*sync.Mutex),
	}
	s.auditContent()
	return s
}

// SetRNG overrides the seed source for new games. Used by the simulator
// and tests.
func (s *Service) SetRNG(r RandomSource) { s.rng = r }

func (s *Service) Catalog() *catalog.Catalog { return s.cat }

// auditContent flags content references the engine would silently ignore:
// infrastructure ids with no capacity contribution and unknown staff roles.
func (s *Service) auditContent() {
	check := func(where string, infra []string) {
		for _, id := range infra {
			if !KnownInfra(id) {
				s.log.Warn("catalog references unknown infrastructure", "where", where, "infra", id)
			}
		}
	}
	for n := 1; n <= s.cat.MaxTurn(); n++ {
		t, ok := s.cat.Turn(n)
		if !ok {
			continue
		}
		for _, ch := range t.Choices {
			check(ch.ID, ch.AddInfrastructure)
			if ch.HiresStaff != "" {
				switch StaffRole(ch.HiresStaff) {
				case RoleDeveloper, RoleDesigner, RolePlanner:
				default:
					s.log.Warn("catalog references unknown staff role", "choice", ch.ID, "role", ch.HiresStaff)
				}
			}
		}
	}
	for _, e := range s.cat.Events() {
		for _, ec := range e.Choices {
			check(e.ID+"/"+ec.ID, ec.AddInfrastructure)
			check(e.ID+"/"+ec.ID, ec.RequiresInfrastructure)
		}
	}
}

func (s *Service) lockFor(gameID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[gameID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[gameID] = l
	}
	return l
}

func (s *Service) releaseLock(gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, gameID)
}

// StartGame creates a fresh game on turn 1 with the difficulty's baseline
// resources. A non-nil seed fixes the event draw sequence.
func (s *Service) StartGame(ctx context.Context, difficulty Difficulty, seed *uint64) (*GameState, error) {
	cfg, ok := difficultyConfigs[difficulty]
	if !ok {
		return nil, ErrInvalidDifficulty
	}
	eventSeed := s.rng.Uint64()
	if seed != nil {
		eventSeed = *seed
	}
	now := time.Now().UTC()
	g := &GameState{
		ID:              uuid.NewString(),
		Difficulty:      difficulty,
		Status:          StatusPlaying,
		CurrentTurn:     1,
		Cash:            cfg.StartingCash,
		Trust:           cfg.StartingTrust,
		MaxUserCapacity: cfg.BaseCapacity,
		EventSeed:       eventSeed,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Create(ctx, g); err != nil {
		return nil, err
	}
	s.log.Info("game started", "game_id", g.ID, "difficulty", difficulty)
	return g.Clone(), nil
}

func (s *Service) GetState(ctx context.Context, gameID string) (*GameState, error) {
	return s.store.Get(ctx, gameID)
}

// SubmitChoice resolves one turn. Two choice ids are allowed only with a
// Developer on staff; effects of both sum into one atomic transition.
func (s *Service) SubmitChoice(ctx context.Context, gameID string, choiceIDs []string) (*GameState, error) {
	lock := s.lockFor(gameID)
	if !lock.TryLock() {
		return nil, ErrConcurrentModification
	}
	defer lock.Unlock()

	g, err := s.store.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.Status.Terminal() {
		return nil, ErrGameAlreadyTerminal
	}
	if g.PendingEvent != nil {
		return nil, ErrEventPending
	}
	if len(choiceIDs) == 0 {
		return nil, ErrNoChoice
	}
	if len(choiceIDs) > maxChoicesFor(g) {
		return nil, ErrTooManyChoices
	}

	choices := make([]*catalog.Choice, 0, len(choiceIDs))
	seen := make(map[string]bool, len(choiceIDs))
	for _, id := range choiceIDs {
		if seen[id] {
			return nil, ErrInvalidChoice
		}
		seen[id] = true
		ch, ok := s.cat.Choice(id)
		if !ok {
			return nil, ErrInvalidChoice
		}
		if ch.Turn != g.CurrentTurn {
			return nil, ErrInvalidChoice
		}
		choices = append(choices, ch)
	}

	cfg := difficultyConfigs[g.Difficulty]
	next := g.Clone()
	owningTurn := next.CurrentTurn

	applyTransition(next, cfg, sumChoiceEffects(choices))
	advanceTurn(next, cfg, choices)
	evaluateProgress(next, cfg, owningTurn >= cfg.MaxTurns)
	if !next.Status.Terminal() {
		maybeTriggerEvent(next, s.cat)
	}

	return s.commit(ctx, next, TransitionRecord{
		GameID:    gameID,
		Turn:      owningTurn,
		Kind:      "choice",
		ChoiceIDs: choiceIDs,
	})
}

// SubmitEventChoice answers the pending event. Exactly one choice; the
// Developer allowance never applies to events.
func (s *Service) SubmitEventChoice(ctx context.Context, gameID, choiceID string) (*GameState, error) {
	lock := s.lockFor(gameID)
	if !lock.TryLock() {
		return nil, ErrConcurrentModification
	}
	defer lock.Unlock()

	g, err := s.store.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.Status.Terminal() {
		return nil, ErrGameAlreadyTerminal
	}
	if g.PendingEvent == nil {
		return nil, ErrNoEventPending
	}
	ev, ok := s.cat.Event(g.PendingEvent.EventID)
	if !ok {
		return nil, ErrUnknownContent
	}
	var ec *catalog.EventChoice
	for i := range ev.Choices {
		if ev.Choices[i].ID == choiceID {
			ec = &ev.Choices[i]
			break
		}
	}
	if ec == nil || !eventChoiceAvailable(g, ec) {
		return nil, ErrInvalidEventChoice
	}

	cfg := difficultyConfigs[g.Difficulty]
	next := g.Clone()
	depth := next.PendingEvent.ChainDepth
	next.PendingEvent = nil

	applyTransition(next, cfg, eventChoiceEffect(ec))
	if ec.ChainsTo != "" && depth < maxChainDepth {
		fireEvent(next, ec.ChainsTo, depth+1)
	}
	evaluateProgress(next, cfg, false)
	if next.Status.Terminal() {
		next.PendingEvent = nil
	}

	return s.commit(ctx, next, TransitionRecord{
		GameID:    gameID,
		Turn:      next.CurrentTurn,
		Kind:      "event",
		ChoiceIDs: []string{choiceID},
	})
}

func (s *Service) commit(ctx context.Context, next *GameState, rec TransitionRecord) (*GameState, error) {
	next.Version++
	next.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, next); err != nil {
		return nil, err
	}

	rec.ID = uuid.NewString()
	rec.Status = next.Status
	rec.Users = next.Users
	rec.Cash = next.Cash
	rec.Trust = next.Trust
	rec.At = next.UpdatedAt
	if err := s.history.Append(ctx, rec); err != nil {
		s.log.Warn("history append failed", "game_id", next.ID, "err", err)
	}

	if next.Status.Terminal() {
		s.releaseLock(next.ID)
		s.log.Info("game finished", "game_id", next.ID, "status", next.Status, "turn", rec.Turn)
	}
	return next.Clone(), nil
}
