package sim

import (
	"math"
	"sort"
)

// Distribution captures statistical summary of a metric across seeds.
type Distribution struct {
	Mean   float64
	StdDev float64 // sample standard deviation (n-1), 0 for a single value
	P50    float64
	P95    float64
	Min    float64
	Max    float64
	Count  int
}

// NewDistribution computes a Distribution from raw values.
// Returns zero-value Distribution for empty input.
func NewDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	var std float64
	if len(sorted) > 1 {
		ss := 0.0
		for _, v := range sorted {
			ss += (v - mean) * (v - mean)
		}
		std = math.Sqrt(ss / float64(len(sorted)-1))
	}

	return Distribution{
		Mean:   mean,
		StdDev: std,
		P50:    percentile(sorted, 50),
		P95:    percentile(sorted, 95),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Count:  len(sorted),
	}
}

// percentile interpolates linearly between the closest ranks.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100.0 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// CoverageDistribution summarizes CoveragePct over a set of runs.
func CoverageDistribution(results []*RunResult) Distribution {
	values := make([]float64, len(results))
	for i, r := range results {
		values[i] = r.CoveragePct
	}
	return NewDistribution(values)
}
