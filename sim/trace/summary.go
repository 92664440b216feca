package trace

// Milestones are the coverage percentages whose first-reached step is reported.
var Milestones = []float64{25, 50, 75}

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	Samples           int
	FinalPercent      float64
	MeanGainPerSample float64     // average coverage percentage gained between consecutive samples
	StepsToMilestone  map[int]int // milestone percent → first sampled step reaching it, -1 if never
	MeanPolarization  float64
	MeanSpread        float64
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		StepsToMilestone: make(map[int]int, len(Milestones)),
	}
	for _, m := range Milestones {
		summary.StepsToMilestone[int(m)] = -1
	}
	if st == nil {
		return summary
	}

	summary.Samples = len(st.Samples)
	if n := len(st.Samples); n > 0 {
		first, last := st.Samples[0], st.Samples[n-1]
		summary.FinalPercent = last.Percent
		if n > 1 {
			summary.MeanGainPerSample = (last.Percent - first.Percent) / float64(n-1)
		}
		for _, s := range st.Samples {
			for _, m := range Milestones {
				if summary.StepsToMilestone[int(m)] < 0 && s.Percent >= m {
					summary.StepsToMilestone[int(m)] = s.Step
				}
			}
		}
	}

	if len(st.Flock) > 0 {
		var pol, spread float64
		for _, r := range st.Flock {
			pol += r.Polarization
			spread += r.Spread
		}
		summary.MeanPolarization = pol / float64(len(st.Flock))
		summary.MeanSpread = spread / float64(len(st.Flock))
	}

	return summary
}
