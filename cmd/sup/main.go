package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	cl "stackup/internal/cli"
	"stackup/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "sup",
		Short:        "StackUp CLI game client",
		SilenceUsage: true,
	}

	root.AddCommand(
		newStartCmd(&apiBase),
		newStateCmd(&apiBase),
		newChooseCmd(&apiBase),
		newEventCmd(&apiBase),
		newScoreCmd(&apiBase),
		newAbandonCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func newStartCmd(apiBase *string) *cobra.Command {
	var difficulty string
	var seed uint64
	var seeded bool
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a new game",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)

			var seedPtr *uint64
			if seeded {
				seedPtr = &seed
			}
			view, err := client.StartGame(ctx, strings.ToUpper(difficulty), seedPtr)
			if err != nil {
				return err
			}
			if err := cl.SaveSession(cl.Session{
				GameID:     view.State.ID,
				Difficulty: view.State.Difficulty,
			}); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Game started on %s.", view.State.Difficulty))
			renderView(view)
			return nil
		},
	}
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "NORMAL", "EASY, NORMAL or HARD")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "fix the event seed (for reproducible runs)")
	cmd.Flags().BoolVar(&seeded, "seeded", false, "use --seed instead of a random event seed")
	return cmd
}

func newStateCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the current game",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("no active game, run `sup start`: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			view, err := newClient(apiBase).State(ctx, sess.GameID)
			if err != nil {
				return err
			}
			renderView(view)
			return nil
		},
	}
}

func newChooseCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "choose <choice-id> [choice-id]",
		Short: "Submit this turn's choice (two ids with a developer on staff)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("no active game, run `sup start`: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			view, err := newClient(apiBase).SubmitChoices(ctx, sess.GameID, args)
			if err != nil {
				return err
			}
			renderView(view)
			return nil
		},
	}
}

func newEventCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "event <choice-id>",
		Short: "Answer the pending event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("no active game, run `sup start`: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			view, err := newClient(apiBase).SubmitEventChoice(ctx, sess.GameID, args[0])
			if err != nil {
				return err
			}
			renderView(view)
			return nil
		},
	}
}

func newScoreCmd(apiBase *string) *cobra.Command {
	var quizBonus int64
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Show the game's leaderboard score",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("no active game, run `sup start`: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Score(ctx, sess.GameID, quizBonus)
			if err != nil {
				return err
			}
			printInfo(fmt.Sprintf("Status: %s", out.Status))
			printSuccess(fmt.Sprintf("Score: %d", out.Score))
			return nil
		},
	}
	cmd.Flags().Int64Var(&quizBonus, "quiz-bonus", 0, "bonus points from the quiz round")
	return cmd
}

func newAbandonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "abandon",
		Short: "Forget the current game locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cl.ClearSession(); err != nil {
				return err
			}
			printSuccess("Session cleared.")
			return nil
		},
	}
}
