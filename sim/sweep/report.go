package sweep

import (
	"fmt"
	"time"

	"github.com/flocksim/flocksim/sim"
	"github.com/flocksim/flocksim/sim/objective"
)

// CandidateResult is the aggregated outcome of one candidate over all seeds.
type CandidateResult struct {
	Candidate Candidate
	PerSeed   []float64 // coverage %, in Report.Seeds order
	Coverage  sim.Distribution
	Score     float64
}

// Report is the outcome of a sweep.
type Report struct {
	RunID    string
	Seeds    []int64 // ascending
	Workers  int
	Results  []CandidateResult // candidate order
	BestIdx  int               // index into Results
	WallTime time.Duration
}

// Best returns the highest-scoring result. Ties go to the earliest candidate.
func (r *Report) Best() CandidateResult {
	return r.Results[r.BestIdx]
}

// aggregate folds per-job coverage (candidate-major, seed-minor) into Results.
func (r *Report) aggregate(candidates []Candidate, coverage []float64, obj *objective.Objective) error {
	ns := len(r.Seeds)
	r.Results = make([]CandidateResult, len(candidates))
	for ci, c := range candidates {
		per := coverage[ci*ns : (ci+1)*ns : (ci+1)*ns]
		res := CandidateResult{
			Candidate: c,
			PerSeed:   append([]float64(nil), per...),
			Coverage:  sim.NewDistribution(per),
		}
		res.Score = res.Coverage.Mean
		if obj != nil {
			score, err := obj.Evaluate(res.Coverage, c.Gains)
			if err != nil {
				return fmt.Errorf("scoring candidate %d: %w", c.Index, err)
			}
			res.Score = score
		}
		r.Results[ci] = res
		if res.Score > r.Results[r.BestIdx].Score {
			r.BestIdx = ci
		}
	}
	return nil
}
