package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/flocksim/flocksim/sim"
	"github.com/flocksim/flocksim/sim/envfile"
	"github.com/flocksim/flocksim/sim/report"
	"github.com/flocksim/flocksim/sim/sweep"
	"github.com/flocksim/flocksim/sim/trace"
)

var (
	// CLI flags shared by run and sweep
	configPath  string  // YAML config file
	logLevel    string  // Log verbosity level
	envName     string  // Built-in environment name
	envFilePath string  // JSON environment file
	seeds       []int64 // Seeds every gain vector is evaluated on
	steps       int     // Frames per run
	sampleEvery int     // Frames between timeline samples
	numBoids    int     // Flock size
	boundary    string  // Boundary policy
	updateOrder string  // Update order
	traceLevel  string  // Trace level

	// CLI flags for run
	kCoh          float64 // Cohesion gain
	kAli          float64 // Alignment gain
	kCol          float64 // Separation gain
	fromResults   string  // Take gains from the best row of a sweep CSV
	uniformityLog string  // Append per-seed uniformity rows here
	timelineOut   string  // Write coverage timelines here
	heatmapDir    string  // Write heatmap PNGs here
)

// loadEnvFile is swapped in tests.
var loadEnvFile = envfile.Load

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "flocksim",
	Short: "Boids coverage simulator and gain search",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// runCmd simulates one gain vector over every seed
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the coverage simulation for one gain vector",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(cmd.Flags())
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := runSimulations(cmd.Context(), cfg, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
	},
}

// resolveConfig loads --config and applies every flag the user set on top.
func resolveConfig(flags *pflag.FlagSet) (FileConfig, error) {
	cfg, err := loadFileConfig(configPath)
	if err != nil {
		return cfg, err
	}
	applyCommonFlags(flags, &cfg)
	if flags.Lookup("k-coh") != nil {
		applyGainFlags(flags, &cfg)
	}
	if flags.Lookup("strategy") != nil {
		applySweepFlags(flags, &cfg)
	}
	return cfg, nil
}

// applyCommonFlags overrides cfg with flags that were set explicitly.
func applyCommonFlags(flags *pflag.FlagSet, cfg *FileConfig) {
	if flags.Changed("env") {
		cfg.Environment = envName
		cfg.EnvFile = ""
	}
	if flags.Changed("env-file") {
		cfg.EnvFile = envFilePath
	}
	if flags.Changed("seeds") {
		cfg.Seeds = seeds
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}
	if flags.Changed("num-boids") {
		cfg.Params.NumBoids = numBoids
	}
	if flags.Changed("boundary") {
		cfg.Params.Boundary = sim.BoundaryPolicy(boundary)
	}
	if flags.Changed("update") {
		cfg.Params.Update = sim.UpdateOrder(updateOrder)
	}
	if flags.Changed("trace-level") {
		cfg.TraceLevel = trace.TraceLevel(traceLevel)
	}
}

func applyGainFlags(flags *pflag.FlagSet, cfg *FileConfig) {
	if flags.Changed("k-coh") {
		cfg.Gains.Cohesion = kCoh
	}
	if flags.Changed("k-ali") {
		cfg.Gains.Alignment = kAli
	}
	if flags.Changed("k-col") {
		cfg.Gains.Separation = kCol
	}
}

// runSimulations runs cfg once per seed and writes the requested artifacts.
func runSimulations(ctx context.Context, cfg FileConfig, out io.Writer) error {
	if fromResults != "" {
		best, err := sweep.FindBest(fromResults)
		if err != nil {
			return err
		}
		logrus.Infof("Using gains from %s line %d (average %.2f%%)", fromResults, best.Line, best.Average)
		cfg.Gains = best.Gains
	}
	if timelineOut != "" && !cfg.TraceLevel.Enabled() {
		return fmt.Errorf("--timeline-out needs a trace level other than %q", cfg.TraceLevel)
	}
	env, err := cfg.environment()
	if err != nil {
		return err
	}
	base := cfg.runConfig(env)
	logrus.Infof("Environment %q with %d obstacles, %d boids, %d steps, %s",
		env.Name, len(env.Obstacles), base.Params.NumBoids, base.Steps, base.Gains)

	results := make([]*sim.RunResult, 0, len(cfg.Seeds))
	for _, s := range cfg.Seeds {
		rc := base
		rc.Seed = s
		res, err := sim.RunOnce(ctx, rc)
		if err != nil {
			return fmt.Errorf("seed %d: %w", s, err)
		}
		res.Print(out)
		results = append(results, res)
	}
	d := sim.CoverageDistribution(results)
	fmt.Fprintf(out, "=== %s, %s ===\n", env.Name, base.Gains)
	fmt.Fprintf(out, "Average coverage     : %.2f%% (std %.2f, min %.2f, max %.2f over %d seeds)\n",
		d.Mean, d.StdDev, d.Min, d.Max, d.Count)

	if uniformityLog != "" {
		if err := report.AppendUniformityLog(uniformityLog, env.Name, base.Params.NumBoids, results); err != nil {
			return err
		}
	}
	if timelineOut != "" {
		if err := report.WriteTimeline(timelineOut, results); err != nil {
			return err
		}
	}
	if heatmapDir != "" {
		paths, err := report.WriteHeatmaps(heatmapDir, env, base.Arena, results)
		if err != nil {
			return err
		}
		logrus.Infof("Wrote heatmaps: %s", strings.Join(paths, ", "))
	}
	return nil
}

// Execute runs the CLI root command. SIGINT cancels in-flight runs.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// registerCommonFlags adds the flags run and sweep share.
func registerCommonFlags(cmd *cobra.Command) {
	def := defaultFileConfig()
	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file; flags given explicitly override it")
	cmd.Flags().StringVar(&envName, "env", def.Environment, "Built-in environment ("+strings.Join(sim.EnvironmentNames(), ", ")+")")
	cmd.Flags().StringVar(&envFilePath, "env-file", "", "JSON environment file (overrides --env)")
	cmd.Flags().Int64SliceVar(&seeds, "seeds", def.Seeds, "Comma-separated seeds every gain vector is evaluated on")
	cmd.Flags().IntVar(&steps, "steps", def.Steps, "Frames per run")
	cmd.Flags().IntVar(&sampleEvery, "sample-every", def.SampleEvery, "Frames between coverage samples")
	cmd.Flags().IntVar(&numBoids, "num-boids", def.Params.NumBoids, "Number of boids")
	cmd.Flags().StringVar(&boundary, "boundary", string(def.Params.Boundary), "Boundary policy (clamp, wrap, none)")
	cmd.Flags().StringVar(&updateOrder, "update", string(def.Params.Update), "Update order (sequential, synchronous)")
	cmd.Flags().StringVar(&traceLevel, "trace-level", string(def.TraceLevel), "Trace level (none, timeline, flock)")
}

// registerRunFlags adds the run-only flags.
func registerRunFlags(cmd *cobra.Command) {
	registerCommonFlags(cmd)
	cmd.Flags().Float64Var(&kCoh, "k-coh", 0, "Cohesion gain")
	cmd.Flags().Float64Var(&kAli, "k-ali", 0, "Alignment gain")
	cmd.Flags().Float64Var(&kCol, "k-col", 0, "Separation gain")
	cmd.Flags().StringVar(&fromResults, "from-results", "", "Use the best gains from a sweep results CSV")
	cmd.Flags().StringVar(&uniformityLog, "uniformity-log", "", "Append per-seed uniformity metrics to this CSV")
	cmd.Flags().StringVar(&timelineOut, "timeline-out", "", "Write coverage timelines to this CSV")
	cmd.Flags().StringVar(&heatmapDir, "heatmap-dir", "", "Write per-seed heatmap PNGs into this directory")
	cmd.MarkFlagsMutuallyExclusive("from-results", "k-coh")
	cmd.MarkFlagsMutuallyExclusive("from-results", "k-ali")
	cmd.MarkFlagsMutuallyExclusive("from-results", "k-col")
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	registerRunFlags(runCmd)

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
