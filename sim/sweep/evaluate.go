package sweep

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/flocksim/flocksim/sim"
	"github.com/flocksim/flocksim/sim/objective"
	"github.com/flocksim/flocksim/sim/trace"
)

// Config describes how candidates are evaluated.
type Config struct {
	Base      sim.RunConfig        // gains, seed and trace level are overridden per job
	Seeds     []int64              // defaults to DefaultSeeds
	Workers   int                  // <= 0 means runtime.NumCPU()
	Objective *objective.Objective // nil scores by mean
}

type job struct {
	candidate int // index into the deduplicated candidate list
	seed      int64
}

// Evaluate runs every (candidate, seed) pair and aggregates the results.
// The first failing job cancels the remaining ones and its error is returned.
func Evaluate(ctx context.Context, cfg Config, candidates []Candidate) (*Report, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no candidates to evaluate")
	}
	seeds := cfg.Seeds
	if len(seeds) == 0 {
		seeds = DefaultSeeds
	}
	seeds = sortedUnique(seeds)
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	base := cfg.Base
	base.TraceLevel = trace.TraceLevelNone
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("base run config: %w", err)
	}

	unique := dedupe(candidates)
	report := &Report{
		RunID:   uuid.NewString(),
		Seeds:   seeds,
		Workers: workers,
	}
	log := logrus.WithField("sweep", report.RunID)
	if dropped := len(candidates) - len(unique); dropped > 0 {
		log.Debugf("skipping %d duplicate candidates", dropped)
	}

	jobs := make([]job, 0, len(unique)*len(seeds))
	for ci := range unique {
		for _, s := range seeds {
			jobs = append(jobs, job{candidate: ci, seed: s})
		}
	}
	coverage := make([]float64, len(jobs))

	log.WithField("jobs", len(jobs)).Infof("evaluating %d candidates x %d seeds on %d workers", len(unique), len(seeds), workers)
	start := time.Now()
	step := max(1, len(jobs)/10)
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, j := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			rc := base
			rc.Gains = unique[j.candidate].Gains
			rc.Seed = j.seed
			res, err := sim.RunOnce(gctx, rc)
			if err != nil {
				return fmt.Errorf("candidate %d (%s) seed %d: %w", unique[j.candidate].Index, rc.Gains, j.seed, err)
			}
			coverage[i] = res.CoveragePct
			if n := done.Add(1); n%int64(step) == 0 || n == int64(len(jobs)) {
				log.WithFields(logrus.Fields{"done": n, "jobs": len(jobs)}).
					Infof("progress %.0f%%", float64(n)/float64(len(jobs))*100)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := report.aggregate(unique, coverage, cfg.Objective); err != nil {
		return nil, err
	}
	report.WallTime = time.Since(start)
	best := report.Best()
	log.Infof("best candidate %d: %s average %.2f%% in %v", best.Candidate.Index, best.Candidate.Gains, best.Coverage.Mean, report.WallTime.Round(time.Millisecond))
	return report, nil
}

// dedupe drops candidates whose gains repeat an earlier one.
func dedupe(candidates []Candidate) []Candidate {
	seen := make(map[uint64]bool, len(candidates))
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		k := gainsKey(c.Gains)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	return out
}

func sortedUnique(seeds []int64) []int64 {
	out := append([]int64(nil), seeds...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	n := 0
	for i, s := range out {
		if i == 0 || s != out[n-1] {
			out[n] = s
			n++
		}
	}
	return out[:n]
}
