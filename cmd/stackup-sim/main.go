// stackup-sim plays batches of seeded games against the engine and prints
// the outcome distribution. It is the balance-tuning loop: change the
// catalog or the difficulty tables, re-run, compare.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"sort"
	"strings"

	"stackup/internal/catalog"
	"stackup/internal/engine"
	"stackup/internal/store"
)

func main() {
	var (
		games      = flag.Int("games", 1000, "number of games to simulate")
		seed       = flag.Uint64("seed", 1, "base seed; game i uses seed+i")
		difficulty = flag.String("difficulty", "NORMAL", "EASY, NORMAL or HARD")
		policy     = flag.String("policy", "random", "choice policy: first or random")
		catalogArg = flag.String("catalog", "", "catalog YAML path (default: embedded campaign)")
	)
	flag.Parse()

	diff, err := engine.ParseDifficulty(strings.ToUpper(*difficulty))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var cat *catalog.Catalog
	if *catalogArg != "" {
		cat, err = catalog.LoadFile(*catalogArg)
	} else {
		cat, err = catalog.LoadDefault()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Silence engine logs during bulk runs.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := engine.NewService(cat, store.NewMemoryStore(), nil, logger)

	outcomes := make(map[engine.Status]int)
	var totalTurns, totalScore int64

	ctx := context.Background()
	for i := 0; i < *games; i++ {
		gameSeed := *seed + uint64(i)
		final, err := playOne(ctx, svc, diff, gameSeed, *policy)
		if err != nil {
			fmt.Fprintf(os.Stderr, "game %d: %v\n", i, err)
			os.Exit(1)
		}
		outcomes[final.Status]++
		totalTurns += int64(final.CurrentTurn)
		totalScore += engine.Score(final, 0)
	}

	fmt.Printf("games=%d difficulty=%s policy=%s\n\n", *games, diff, *policy)
	keys := make([]string, 0, len(outcomes))
	for k := range outcomes {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		n := outcomes[engine.Status(k)]
		fmt.Printf("%-20s %6d  (%.1f%%)\n", k, n, 100*float64(n)/float64(*games))
	}
	fmt.Printf("\navg turns reached: %.1f\n", float64(totalTurns)/float64(*games))
	fmt.Printf("avg score:         %.0f\n", float64(totalScore)/float64(*games))
}

func playOne(ctx context.Context, svc *engine.Service, diff engine.Difficulty, seed uint64, policy string) (*engine.GameState, error) {
	picker := rand.New(rand.NewPCG(seed, 42))
	g, err := svc.StartGame(ctx, diff, &seed)
	if err != nil {
		return nil, err
	}

	for !g.Status.Terminal() {
		if g.PendingEvent != nil {
			choiceID, err := pickEventChoice(svc.Catalog(), g, picker, policy)
			if err != nil {
				return nil, err
			}
			g, err = svc.SubmitEventChoice(ctx, g.ID, choiceID)
			if err != nil {
				return nil, err
			}
			continue
		}

		t, ok := svc.Catalog().Turn(g.CurrentTurn)
		if !ok {
			return nil, fmt.Errorf("no content for turn %d", g.CurrentTurn)
		}
		ids := pickChoices(t, g, picker, policy)
		g, err = svc.SubmitChoice(ctx, g.ID, ids)
		if err != nil {
			return nil, err
		}
	}
	return g, nil
}

func pickChoices(t *catalog.Turn, g *engine.GameState, picker *rand.Rand, policy string) []string {
	idx := 0
	if policy == "random" {
		idx = picker.IntN(len(t.Choices))
	}
	return []string{t.Choices[idx].ID}
}

func pickEventChoice(cat *catalog.Catalog, g *engine.GameState, picker *rand.Rand, policy string) (string, error) {
	ev, ok := cat.Event(g.PendingEvent.EventID)
	if !ok {
		return "", fmt.Errorf("pending event %q not in catalog", g.PendingEvent.EventID)
	}
	available := make([]string, 0, len(ev.Choices))
	for _, ec := range ev.Choices {
		if infraMet(g, ec.RequiresInfrastructure) {
			available = append(available, ec.ID)
		}
	}
	if len(available) == 0 {
		return "", fmt.Errorf("event %q has no available choices", ev.ID)
	}
	if policy == "random" {
		return available[picker.IntN(len(available))], nil
	}
	return available[0], nil
}

func infraMet(g *engine.GameState, required []string) bool {
	for _, id := range required {
		if !g.HasInfra(id) {
			return false
		}
	}
	return true
}
