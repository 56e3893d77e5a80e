package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cartridge/capture/internal/config"
	"github.com/cartridge/capture/internal/match"
	"github.com/cartridge/capture/internal/sim"
	"github.com/cartridge/capture/internal/team"
	"github.com/cartridge/capture/internal/trace"
)

var (
	envFile   string
	showAgent int
)

var rootCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture-the-flag reflex agents",
	Long: `Plays capture-the-flag matches between teams of reflex agents.

Every agent scores each legal action with a hand-tuned evaluator and moves
to the best one. Teams are built from registered agent names.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvFile(envFile)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play one match and print the result",
	RunE:  runMatch,
}

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List registered agent names",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range team.Default().Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

func init() {
	cfg := config.Default()

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional file of KEY=value pairs loaded into the environment")

	f := runCmd.Flags()
	f.IntVar(&showAgent, "show-agent", -1, "List every traced move of this agent index (-1 for none)")

	// Board
	f.String("layout", cfg.Layout, "Layout file (default: built-in maze)")

	// Teams
	f.String("red-first", cfg.RedFirst, "Agent for red seat 0")
	f.String("red-second", cfg.RedSecond, "Agent for red seat 2")
	f.String("blue-first", cfg.BlueFirst, "Agent for blue seat 1")
	f.String("blue-second", cfg.BlueSecond, "Agent for blue seat 3")

	// Limits
	f.Int("max-moves", cfg.MaxMoves, "Total agent moves before the match ends")
	f.Duration("move-timeout", cfg.MoveTimeout, "Budget per move")
	f.Duration("setup-timeout", cfg.SetupTimeout, "Budget for initial setup")
	f.Int("max-warnings", cfg.MaxWarnings, "Budget overruns allowed before a team forfeits")

	// Engine and agents
	f.Int64("seed", cfg.Seed, "Random seed (0 uses the clock)")
	f.Int("sight-range", cfg.SightRange, "Distance at which opponents become visible (0 disables fog)")
	f.Int("scared-threshold", cfg.ScaredThreshold, "Scared moves below which an adjacent defender is still a threat")
	f.Int("trace-capacity", cfg.TraceCapacity, "Decisions kept in the trace (0 keeps all)")

	// Logging
	f.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	f.String("log-format", cfg.LogFormat, "Log format (console, json)")

	rootCmd.AddCommand(runCmd, agentsCmd)
}

// newViper binds every flag under its config key so CAPTURE_* environment
// variables and flags feed config.Load.
func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("CAPTURE")
	v.AutomaticEnv()

	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if bindErr := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); bindErr != nil && err == nil {
			err = bindErr
		}
	})
	return v, err
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	v, err := newViper(cmd.Flags())
	if err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := cfg.Logger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := match.New(cfg, logger)
	res, err := runner.Run(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Match failed")
		return err
	}

	w := cmd.OutOrStdout()
	printResult(w, res)
	return printTrace(ctx, w, runner.Trace, res.MatchID.String(), showAgent)
}

func printResult(w io.Writer, res *match.Result) {
	fmt.Fprint(w, res.Final.Render())
	fmt.Fprintf(w, "match %s: %s after %d moves, score %+g\n", res.MatchID, res.Winner, res.Moves, res.Score)
	if res.Forfeit != "" {
		fmt.Fprintf(w, "%s forfeited\n", res.Forfeit)
	}
}

// printTrace summarises the match's decisions and, when agent is a valid
// index, lists that agent's moves.
func printTrace(ctx context.Context, w io.Writer, store trace.Store, matchID string, agent int) error {
	stats, err := store.Stats(ctx, matchID)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "decisions: %d, budget overruns: %d, mean think time: %s\n", stats.Total, stats.Timeouts, stats.MeanElapsed)
	for i := 0; i < sim.MaxAgents; i++ {
		fmt.Fprintf(w, "  agent %d: %d moves\n", i, stats.ByAgent[i])
	}

	if agent < 0 {
		return nil
	}
	decisions, err := store.ForAgent(ctx, matchID, agent)
	if err != nil {
		return err
	}
	for _, d := range decisions {
		fmt.Fprintf(w, "  turn %d: %s %s (%g)\n", d.Turn, d.Name, d.Action, d.Score)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
