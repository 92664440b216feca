// Package report writes run artifacts: the uniformity log, coverage
// timelines and per-seed heatmap images.
package report

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/flocksim/flocksim/sim"
)

// UniformityHeader is the header row of the uniformity log.
var UniformityHeader = []string{"environment", "num_boids", "seed", "variance", "mean", "std_dev", "normalized"}

// round4 formats v rounded to 4 decimal places without trailing zeros.
func round4(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', -1, 64)
}

// AppendUniformityLog appends one row per result to the CSV at path. The
// header is written only when the file is new or empty.
func AppendUniformityLog(path, env string, numBoids int, results []*sim.RunResult) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening uniformity log: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat uniformity log: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		_ = w.Write(UniformityHeader)
	}
	for _, r := range results {
		u := r.Uniformity
		_ = w.Write([]string{
			env,
			strconv.Itoa(numBoids),
			strconv.FormatInt(r.Seed, 10),
			round4(u.Variance),
			round4(u.Mean),
			round4(u.StdDev),
			round4(u.CV),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("writing uniformity log %s: %w", path, err)
	}
	return f.Close()
}

// WriteTimeline writes the coverage samples of every result as
// seed,step,visited,percent. Every result must have been traced.
func WriteTimeline(path string, results []*sim.RunResult) error {
	for _, r := range results {
		if r.Trace == nil {
			return fmt.Errorf("seed %d has no trace; run with a timeline trace level", r.Seed)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating timeline: %w", err)
	}
	w := csv.NewWriter(f)
	_ = w.Write([]string{"seed", "step", "visited", "percent"})
	for _, r := range results {
		for _, s := range r.Trace.Samples {
			_ = w.Write([]string{
				strconv.FormatInt(r.Seed, 10),
				strconv.Itoa(s.Step),
				strconv.Itoa(s.Visited),
				round4(s.Percent),
			})
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("writing timeline %s: %w", path, err)
	}
	return f.Close()
}
