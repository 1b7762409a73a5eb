package engine_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"stackup/internal/catalog"
	"stackup/internal/engine"
	"stackup/internal/store"
)

const quietCatalog = `
turns:
  - number: 1
    title: "Kickoff"
    text: "First move."
    choices:
      - id: t01_build
        text: "Build"
        effects: { users: 1000, cash: -500000, trust: 2 }
        next: 2
      - id: t01_hire_dev
        text: "Hire a developer"
        effects: { cash: -400000 }
        hires_staff: DEVELOPER
        next: 2
      - id: t01_burn
        text: "Buy a stadium"
        effects: { cash: -999999999 }
        next: 2
  - number: 2
    title: "Momentum"
    text: "Second move."
    choices:
      - id: t02_users
        text: "Growth"
        effects: { users: 500 }
        next: 3
      - id: t02_cash
        text: "Revenue"
        effects: { cash: 1000000 }
        next: 3
  - number: 3
    title: "Wrap"
    text: "Last move."
    choices:
      - id: t03_done
        text: "Done"
        effects: { trust: 1 }
`

const eventfulCatalog = `
turns:
  - number: 1
    title: "Kickoff"
    text: "First move."
    choices:
      - id: t01_go
        text: "Go"
        effects: { users: 100 }
        next: 2
  - number: 2
    title: "Next"
    text: "Second move."
    choices:
      - id: t02_go
        text: "Go"
        effects: { users: 100 }
events:
  - id: storm
    kind: CRISIS
    title: "Storm"
    text: "Something broke."
    trigger: { probability: 1.0 }
    choices:
      - id: weather
        text: "Weather it"
        effects: { trust: -2 }
      - id: chain_start
        text: "Dig deeper"
        effects: {}
        chains_to: followup
  - id: followup
    kind: CHAIN
    title: "Follow-up"
    text: "It goes deeper."
    trigger: { probability: 0 }
    choices:
      - id: continue
        text: "Keep digging"
        effects: {}
        chains_to: followup
      - id: stop
        text: "Stop"
        effects: {}
`

func newTestService(t *testing.T, content string) (*engine.Service, *store.MemoryHistory) {
	t.Helper()
	cat, err := catalog.Parse([]byte(content))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	history := store.NewMemoryHistory()
	logger := slog.New(slog.DiscardHandler)
	return engine.NewService(cat, store.NewMemoryStore(), history, logger), history
}

func startGame(t *testing.T, svc *engine.Service) *engine.GameState {
	t.Helper()
	seed := uint64(1)
	g, err := svc.StartGame(context.Background(), engine.DifficultyNormal, &seed)
	if err != nil {
		t.Fatalf("start game: %v", err)
	}
	return g
}

func TestStartGameBaseline(t *testing.T) {
	svc, _ := newTestService(t, quietCatalog)
	g := startGame(t, svc)

	if g.Status != engine.StatusPlaying {
		t.Fatalf("status: got %s", g.Status)
	}
	if g.CurrentTurn != 1 || g.Users != 0 || g.Cash != 10_000_000 || g.Trust != 50 {
		t.Fatalf("unexpected baseline: %+v", g)
	}
	if g.MaxUserCapacity != 10_000 {
		t.Fatalf("capacity: got %d want 10000", g.MaxUserCapacity)
	}
	if len(g.Infrastructure) != 0 || len(g.HiredStaff) != 0 {
		t.Fatalf("infra and staff must start empty")
	}
}

func TestStartGameRejectsUnknownDifficulty(t *testing.T) {
	svc, _ := newTestService(t, quietCatalog)
	_, err := svc.StartGame(context.Background(), engine.Difficulty("BRUTAL"), nil)
	if !errors.Is(err, engine.ErrInvalidDifficulty) {
		t.Fatalf("got %v want ErrInvalidDifficulty", err)
	}
}

func TestSubmitChoiceAdvancesTurn(t *testing.T) {
	svc, _ := newTestService(t, quietCatalog)
	g := startGame(t, svc)

	out, err := svc.SubmitChoice(context.Background(), g.ID, []string{"t01_build"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.CurrentTurn != 2 {
		t.Fatalf("turn: got %d want 2", out.CurrentTurn)
	}
	if out.Users != 1000 || out.Cash != 9_500_000 || out.Trust != 52 {
		t.Fatalf("effects not applied: %+v", out)
	}
	if out.Version != g.Version+1 {
		t.Fatalf("version: got %d want %d", out.Version, g.Version+1)
	}
}

func TestSubmitChoiceValidation(t *testing.T) {
	svc, _ := newTestService(t, quietCatalog)
	g := startGame(t, svc)
	ctx := context.Background()

	if _, err := svc.SubmitChoice(ctx, g.ID, nil); !errors.Is(err, engine.ErrNoChoice) {
		t.Fatalf("empty: got %v", err)
	}
	if _, err := svc.SubmitChoice(ctx, g.ID, []string{"nope"}); !errors.Is(err, engine.ErrInvalidChoice) {
		t.Fatalf("unknown id: got %v", err)
	}
	if _, err := svc.SubmitChoice(ctx, g.ID, []string{"t02_users"}); !errors.Is(err, engine.ErrInvalidChoice) {
		t.Fatalf("wrong turn: got %v", err)
	}
	if _, err := svc.SubmitChoice(ctx, g.ID, []string{"t01_build", "t01_hire_dev"}); !errors.Is(err, engine.ErrTooManyChoices) {
		t.Fatalf("two without developer: got %v", err)
	}
	if _, err := svc.SubmitChoice(ctx, "missing", []string{"t01_build"}); !errors.Is(err, engine.ErrGameNotFound) {
		t.Fatalf("missing game: got %v", err)
	}

	// Failed submissions must leave the stored state untouched.
	cur, err := svc.GetState(ctx, g.ID)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if cur.CurrentTurn != 1 || cur.Version != g.Version {
		t.Fatalf("state mutated by failed submissions: %+v", cur)
	}
}

func TestDeveloperEnablesTwoChoices(t *testing.T) {
	svc, _ := newTestService(t, quietCatalog)
	g := startGame(t, svc)
	ctx := context.Background()

	out, err := svc.SubmitChoice(ctx, g.ID, []string{"t01_hire_dev"})
	if err != nil {
		t.Fatalf("hire: %v", err)
	}

	out, err = svc.SubmitChoice(ctx, out.ID, []string{"t02_users", "t02_cash"})
	if err != nil {
		t.Fatalf("two choices with developer: %v", err)
	}
	if out.Users != 500 {
		t.Fatalf("users: got %d want 500", out.Users)
	}
	if out.Cash != 10_000_000-400_000+1_000_000 {
		t.Fatalf("cash: got %d", out.Cash)
	}

	if _, err := svc.SubmitChoice(ctx, g.ID, []string{"t03_done", "t03_done"}); !errors.Is(err, engine.ErrInvalidChoice) {
		t.Fatalf("duplicate ids: got %v", err)
	}
}

func TestTerminalGameIsAbsorbing(t *testing.T) {
	svc, _ := newTestService(t, quietCatalog)
	g := startGame(t, svc)
	ctx := context.Background()

	out, err := svc.SubmitChoice(ctx, g.ID, []string{"t01_burn"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.Status != engine.StatusLostBankrupt {
		t.Fatalf("got %s want %s", out.Status, engine.StatusLostBankrupt)
	}

	if _, err := svc.SubmitChoice(ctx, g.ID, []string{"t02_users"}); !errors.Is(err, engine.ErrGameAlreadyTerminal) {
		t.Fatalf("got %v want ErrGameAlreadyTerminal", err)
	}
	if _, err := svc.SubmitEventChoice(ctx, g.ID, "weather"); !errors.Is(err, engine.ErrGameAlreadyTerminal) {
		t.Fatalf("event on terminal game: got %v", err)
	}
}

func TestEventBlocksNormalChoices(t *testing.T) {
	svc, _ := newTestService(t, eventfulCatalog)
	g := startGame(t, svc)
	ctx := context.Background()

	out, err := svc.SubmitChoice(ctx, g.ID, []string{"t01_go"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.PendingEvent == nil || out.PendingEvent.EventID != "storm" {
		t.Fatalf("expected storm to fire, got %+v", out.PendingEvent)
	}

	if _, err := svc.SubmitChoice(ctx, g.ID, []string{"t02_go"}); !errors.Is(err, engine.ErrEventPending) {
		t.Fatalf("got %v want ErrEventPending", err)
	}
	if _, err := svc.SubmitEventChoice(ctx, g.ID, "nope"); !errors.Is(err, engine.ErrInvalidEventChoice) {
		t.Fatalf("got %v want ErrInvalidEventChoice", err)
	}

	out, err = svc.SubmitEventChoice(ctx, g.ID, "weather")
	if err != nil {
		t.Fatalf("resolve event: %v", err)
	}
	if out.PendingEvent != nil {
		t.Fatalf("event should be cleared")
	}
	if out.Trust != 48 {
		t.Fatalf("event effect: got trust %d want 48", out.Trust)
	}
	if out.CurrentTurn != 2 {
		t.Fatalf("events must not advance the turn, got %d", out.CurrentTurn)
	}
}

func TestEventChoiceWithoutPendingEvent(t *testing.T) {
	svc, _ := newTestService(t, quietCatalog)
	g := startGame(t, svc)

	_, err := svc.SubmitEventChoice(context.Background(), g.ID, "weather")
	if !errors.Is(err, engine.ErrNoEventPending) {
		t.Fatalf("got %v want ErrNoEventPending", err)
	}
}

func TestEventChainingAndDepthCap(t *testing.T) {
	svc, _ := newTestService(t, eventfulCatalog)
	g := startGame(t, svc)
	ctx := context.Background()

	out, err := svc.SubmitChoice(ctx, g.ID, []string{"t01_go"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	out, err = svc.SubmitEventChoice(ctx, g.ID, "chain_start")
	if err != nil {
		t.Fatalf("chain start: %v", err)
	}
	if out.PendingEvent == nil || out.PendingEvent.EventID != "followup" {
		t.Fatalf("chain should leave a pending event, got %+v", out.PendingEvent)
	}
	if out.Status != engine.StatusPlaying {
		t.Fatalf("chaining must keep the game playing, got %s", out.Status)
	}
	if _, err := svc.SubmitChoice(ctx, g.ID, []string{"t02_go"}); !errors.Is(err, engine.ErrEventPending) {
		t.Fatalf("chained event must still block choices: %v", err)
	}

	// Self-chaining runs until the depth cap drops the chain target.
	for i := 0; i < 2; i++ {
		out, err = svc.SubmitEventChoice(ctx, g.ID, "continue")
		if err != nil {
			t.Fatalf("chain hop %d: %v", i, err)
		}
		if out.PendingEvent == nil {
			t.Fatalf("hop %d: chain ended early", i)
		}
	}
	out, err = svc.SubmitEventChoice(ctx, g.ID, "continue")
	if err != nil {
		t.Fatalf("final hop: %v", err)
	}
	if out.PendingEvent != nil {
		t.Fatalf("depth cap should drop the chain, got %+v", out.PendingEvent)
	}
}

func TestHistoryRecordsTransitions(t *testing.T) {
	svc, history := newTestService(t, quietCatalog)
	g := startGame(t, svc)
	ctx := context.Background()

	if _, err := svc.SubmitChoice(ctx, g.ID, []string{"t01_build"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	recs := history.Records(g.ID)
	if len(recs) != 1 {
		t.Fatalf("records: got %d want 1", len(recs))
	}
	if recs[0].Kind != "choice" || recs[0].Turn != 1 {
		t.Fatalf("unexpected record: %+v", recs[0])
	}
}

// gatedStore blocks Get until released, to hold one transition in flight.
type gatedStore struct {
	engine.GameStore
	enter   chan struct{}
	release chan struct{}
}

func (s *gatedStore) Get(ctx context.Context, id string) (*engine.GameState, error) {
	s.enter <- struct{}{}
	<-s.release
	return s.GameStore.Get(ctx, id)
}

func TestConcurrentSubmissionFailsFast(t *testing.T) {
	cat, err := catalog.Parse([]byte(quietCatalog))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	mem := store.NewMemoryStore()
	gated := &gatedStore{GameStore: mem, enter: make(chan struct{}), release: make(chan struct{})}
	svc := engine.NewService(cat, gated, nil, slog.New(slog.DiscardHandler))

	seed := uint64(1)
	ctx := context.Background()
	g, err := svc.StartGame(ctx, engine.DifficultyNormal, &seed)
	if err != nil {
		t.Fatalf("start game: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := svc.SubmitChoice(ctx, g.ID, []string{"t01_build"})
		done <- err
	}()

	<-gated.enter // first submission holds the per-game lock inside Get

	if _, err := svc.SubmitChoice(ctx, g.ID, []string{"t01_build"}); !errors.Is(err, engine.ErrConcurrentModification) {
		t.Fatalf("got %v want ErrConcurrentModification", err)
	}

	close(gated.release)
	if err := <-done; err != nil {
		t.Fatalf("first submission: %v", err)
	}
}
