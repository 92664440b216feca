// Package sweep searches the gain space for the vector that maximises
// coverage averaged over a fixed set of seeds.
//
// A sweep is a list of Candidates, each evaluated once per seed. Jobs run in
// parallel on a bounded errgroup; every job owns its Simulator, so runs share
// nothing but read-only configuration. Results are stored by job index and
// aggregated in candidate order, so a Report does not depend on the worker
// count or on completion order.
package sweep

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/flocksim/flocksim/sim"
)

// Strategy selects how candidates are drawn.
type Strategy string

const (
	StrategyRandom Strategy = "random"
	StrategyGrid   Strategy = "grid"
)

// DefaultSeeds are the seeds every candidate is evaluated on.
var DefaultSeeds = []int64{27, 729, 4913}

// Candidate is one gain vector under evaluation.
type Candidate struct {
	Index int
	Gains sim.Gains
}

// Bounds are the inclusive upper limits of each gain; lower limits are 0.
type Bounds struct {
	Cohesion   float64 `yaml:"max_k_coh"`
	Alignment  float64 `yaml:"max_k_ali"`
	Separation float64 `yaml:"max_k_col"`
}

// DefaultBounds returns the classic search ranges.
func DefaultBounds() Bounds {
	return Bounds{Cohesion: 0.5, Alignment: 0.1, Separation: 0.5}
}

// Validate checks that every bound is finite and non-negative.
func (b Bounds) Validate() error {
	return sim.Gains{Cohesion: b.Cohesion, Alignment: b.Alignment, Separation: b.Separation}.Validate()
}

// RandomCandidates draws n gain vectors uniformly within b. The draws come
// from the sweep subsystem of seed, so the list is reproducible.
func RandomCandidates(n int, b Bounds, seed int64) ([]Candidate, error) {
	if n <= 0 {
		return nil, fmt.Errorf("candidate count must be positive, got %d", n)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("bounds: %w", err)
	}
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(seed)).ForSubsystem(sim.SubsystemSweep)
	out := make([]Candidate, n)
	for i := range out {
		out[i] = Candidate{Index: i, Gains: sim.Gains{
			Cohesion:   rng.Float64() * b.Cohesion,
			Alignment:  rng.Float64() * b.Alignment,
			Separation: rng.Float64() * b.Separation,
		}}
	}
	return out, nil
}

// GridCandidates spaces levels values linearly over [0, max] for each gain and
// returns all levels³ combinations, k_coh varying slowest.
func GridCandidates(levels int, b Bounds) ([]Candidate, error) {
	if levels < 2 {
		return nil, fmt.Errorf("grid levels must be at least 2, got %d", levels)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("bounds: %w", err)
	}
	axis := func(hi float64) []float64 {
		vals := make([]float64, levels)
		for i := range vals {
			vals[i] = hi * float64(i) / float64(levels-1)
		}
		return vals
	}
	coh, ali, col := axis(b.Cohesion), axis(b.Alignment), axis(b.Separation)
	out := make([]Candidate, 0, levels*levels*levels)
	for _, c := range coh {
		for _, a := range ali {
			for _, s := range col {
				out = append(out, Candidate{Index: len(out), Gains: sim.Gains{Cohesion: c, Alignment: a, Separation: s}})
			}
		}
	}
	return out, nil
}

// Generate dispatches on strategy. n is the candidate count for random and the
// per-gain level count for grid.
func Generate(strategy Strategy, n int, b Bounds, seed int64) ([]Candidate, error) {
	switch strategy {
	case StrategyRandom, "":
		return RandomCandidates(n, b, seed)
	case StrategyGrid:
		return GridCandidates(n, b)
	default:
		return nil, fmt.Errorf("unknown strategy %q; valid: random, grid", strategy)
	}
}

// gainsKey hashes the exact bit patterns of a gain vector.
func gainsKey(g sim.Gains) uint64 {
	var buf [24]byte
	for i, v := range g.Array() {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return xxhash.Sum64(buf[:])
}
