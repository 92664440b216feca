package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/flocksim/flocksim/sim/objective"
	"github.com/flocksim/flocksim/sim/sweep"
	"github.com/flocksim/flocksim/sim/trace"
)

var (
	// CLI flags for sweep
	strategy      string  // Candidate strategy
	numCandidates int     // Random candidate count
	gridLevels    int     // Grid levels per gain
	maxKCoh       float64 // Upper bound of k_coh
	maxKAli       float64 // Upper bound of k_ali
	maxKCol       float64 // Upper bound of k_col
	sweepSeed     int64   // Seed for candidate draws
	workers       int     // Parallel simulations
	objectiveExpr string  // Lua scoring expression
	resultsOut    string  // Results CSV path
	manifestOut   string  // Manifest YAML path
)

// sweepCmd searches the gain space
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Search gain vectors for maximum average coverage",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(cmd.Flags())
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := runSweep(cmd.Context(), cfg, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("Sweep failed: %v", err)
		}
	},
}

func applySweepFlags(flags *pflag.FlagSet, cfg *FileConfig) {
	s := &cfg.Sweep
	if flags.Changed("strategy") {
		s.Strategy = sweep.Strategy(strategy)
	}
	if flags.Changed("candidates") {
		s.Candidates = numCandidates
	}
	if flags.Changed("levels") {
		s.Levels = gridLevels
	}
	if flags.Changed("max-k-coh") {
		s.Bounds.Cohesion = maxKCoh
	}
	if flags.Changed("max-k-ali") {
		s.Bounds.Alignment = maxKAli
	}
	if flags.Changed("max-k-col") {
		s.Bounds.Separation = maxKCol
	}
	if flags.Changed("sweep-seed") {
		s.SweepSeed = sweepSeed
	}
	if flags.Changed("workers") {
		s.Workers = workers
	}
	if flags.Changed("objective") {
		s.Objective = objectiveExpr
	}
	if flags.Changed("out") {
		s.Out = resultsOut
	}
	if flags.Changed("manifest") {
		s.Manifest = manifestOut
	}
}

// runSweep evaluates the configured candidates and writes the results CSV and
// optional manifest.
func runSweep(ctx context.Context, cfg FileConfig, out io.Writer) error {
	env, err := cfg.environment()
	if err != nil {
		return err
	}
	n := cfg.Sweep.Candidates
	if cfg.Sweep.Strategy == sweep.StrategyGrid {
		n = cfg.Sweep.Levels
	}
	candidates, err := sweep.Generate(cfg.Sweep.Strategy, n, cfg.Sweep.Bounds, cfg.Sweep.SweepSeed)
	if err != nil {
		return err
	}
	obj, err := objective.Compile(cfg.Sweep.Objective)
	if err != nil {
		return err
	}
	defer obj.Close()

	base := cfg.runConfig(env)
	base.TraceLevel = trace.TraceLevelNone
	rep, err := sweep.Evaluate(ctx, sweep.Config{
		Base:      base,
		Seeds:     cfg.Seeds,
		Workers:   cfg.Sweep.Workers,
		Objective: obj,
	}, candidates)
	if err != nil {
		return err
	}

	path := cfg.Sweep.Out
	if path == "" {
		path = fmt.Sprintf("random_search_results_%s.csv", env.Slug())
	}
	if err := rep.SaveCSV(path); err != nil {
		return err
	}

	best := rep.Best()
	fmt.Fprintf(out, "Evaluated %d candidates x %d seeds on %q in %v\n",
		len(rep.Results), len(rep.Seeds), env.Name, rep.WallTime.Round(time.Millisecond))
	fmt.Fprintf(out, "Best (objective %s): %s\n", obj, best.Candidate.Gains)
	fmt.Fprintf(out, "Average coverage: %.2f%% (score %.4f)\n", best.Coverage.Mean, best.Score)
	fmt.Fprintf(out, "Results written to %s\n", path)

	if cfg.Sweep.Manifest != "" {
		m := sweep.NewManifest(rep)
		m.Strategy = cfg.Sweep.Strategy
		m.Bounds = cfg.Sweep.Bounds
		m.SweepSeed = cfg.Sweep.SweepSeed
		m.Environment = env.Name
		m.Steps = base.Steps
		m.NumBoids = base.Params.NumBoids
		m.Objective = obj.String()
		m.Results = path
		if err := m.Save(cfg.Sweep.Manifest); err != nil {
			return err
		}
	}
	return nil
}

// registerSweepFlags adds the sweep-only flags.
func registerSweepFlags(cmd *cobra.Command) {
	def := defaultFileConfig().Sweep
	registerCommonFlags(cmd)
	cmd.Flags().StringVar(&strategy, "strategy", string(def.Strategy), "Candidate strategy (random, grid)")
	cmd.Flags().IntVar(&numCandidates, "candidates", def.Candidates, "Number of random candidates")
	cmd.Flags().IntVar(&gridLevels, "levels", def.Levels, "Grid levels per gain (grid evaluates levels^3 candidates)")
	cmd.Flags().Float64Var(&maxKCoh, "max-k-coh", def.Bounds.Cohesion, "Upper bound of k_coh")
	cmd.Flags().Float64Var(&maxKAli, "max-k-ali", def.Bounds.Alignment, "Upper bound of k_ali")
	cmd.Flags().Float64Var(&maxKCol, "max-k-col", def.Bounds.Separation, "Upper bound of k_col")
	cmd.Flags().Int64Var(&sweepSeed, "sweep-seed", def.SweepSeed, "Seed for drawing random candidates")
	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel simulations (0 = number of CPUs)")
	cmd.Flags().StringVar(&objectiveExpr, "objective", "", "Lua expression scoring a candidate (default: mean)")
	cmd.Flags().StringVar(&resultsOut, "out", "", "Results CSV (default random_search_results_<env>.csv)")
	cmd.Flags().StringVar(&manifestOut, "manifest", "", "Write a YAML run manifest here")
}

func init() {
	registerSweepFlags(sweepCmd)
	rootCmd.AddCommand(sweepCmd)
}
