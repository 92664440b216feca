package sim

import (
	"fmt"
	"io"
	"time"

	"github.com/flocksim/flocksim/sim/trace"
)

// RunResult aggregates the outcome of one simulation run for reporting.
type RunResult struct {
	Seed            int64
	Gains           Gains
	Steps           int
	Visited         int     // distinct pixels visited
	CoveragePct     float64 // Visited / arena pixels * 100
	FreeCoveragePct float64 // Visited / obstacle-free pixels * 100
	Uniformity      Uniformity
	Trace           *trace.SimulationTrace // nil if trace level is "none"
	Grid            *CoverageGrid          // visit counts for heatmaps
	WallTime        time.Duration
}

// Summary summarizes the run's trace. Safe when tracing was disabled.
func (r *RunResult) Summary() *trace.TraceSummary {
	return trace.Summarize(r.Trace)
}

// Print writes a human-readable block for the run.
func (r *RunResult) Print(w io.Writer) {
	fmt.Fprintf(w, "=== Seed %d ===\n", r.Seed)
	fmt.Fprintf(w, "Steps                : %d\n", r.Steps)
	fmt.Fprintf(w, "Visited pixels       : %d\n", r.Visited)
	fmt.Fprintf(w, "Coverage             : %.2f%%\n", r.CoveragePct)
	fmt.Fprintf(w, "Free-area coverage   : %.2f%%\n", r.FreeCoveragePct)
	fmt.Fprintf(w, "Uniformity           : Var %.2f, Mean %.2f, Std %.2f, CV %.2f\n",
		r.Uniformity.Variance, r.Uniformity.Mean, r.Uniformity.StdDev, r.Uniformity.CV)
	if r.Trace != nil {
		s := r.Summary()
		fmt.Fprintf(w, "Gain per sample      : %.3f%%\n", s.MeanGainPerSample)
		for _, m := range trace.Milestones {
			if step := s.StepsToMilestone[int(m)]; step >= 0 {
				fmt.Fprintf(w, "Reached %2.0f%%          : step %d\n", m, step)
			} else {
				fmt.Fprintf(w, "Reached %2.0f%%          : never\n", m)
			}
		}
		if len(r.Trace.Flock) > 0 {
			fmt.Fprintf(w, "Mean polarization    : %.3f\n", s.MeanPolarization)
			fmt.Fprintf(w, "Mean spread          : %.1f px\n", s.MeanSpread)
		}
	}
	fmt.Fprintf(w, "Wall time            : %v\n", r.WallTime.Round(time.Millisecond))
}
